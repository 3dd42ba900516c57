package httpserver

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// Route is one GET endpoint. The same table drives dispatch and the
// catalog advertised by /api/status.
type Route struct {
	Pattern string
	Handler http.HandlerFunc
}

func (h *Handlers) Routes() []Route {
	return []Route{
		// pages
		{"/", h.homePage},
		{"/warp-hall", h.warpHallPage},
		{"/the-mall", h.mallPage},
		{"/the-mall/map", h.mallMapPage},
		{"/about", h.aboutPage},
		{"/stall/warp-hall/{stallNumber}", h.warpHallStallPage},
		{"/stall/the-mall/{streetName}/{stallNumber}", h.mallStallPage},

		// api
		{"/api/home", h.apiHome},
		{"/api/warp-hall", h.apiWarpHall},
		{"/api/the-mall", h.apiMall},
		{"/api/reviews/{location}/*", h.apiReviews},
		{"/api/status", h.apiStatus},
		{"/health", h.health},
	}
}

// Catalog lists the patterns of routes, in table order.
func Catalog(routes []Route) []string {
	out := make([]string, 0, len(routes))
	for _, rt := range routes {
		out = append(out, rt.Pattern)
	}
	return out
}

func (s *Server) MountRoutes(h *Handlers) {
	routes := h.Routes()
	h.catalog = Catalog(routes)
	for _, rt := range routes {
		s.mux.Get(rt.Pattern, rt.Handler)
	}
	s.mux.NotFound(h.notFoundPage)
}

// pathParam returns a decoded URL parameter. chi matches on RawPath when
// the request carries one, in which case params are still escaped.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
