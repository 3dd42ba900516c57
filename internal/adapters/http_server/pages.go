package httpserver

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"furryville_index/internal/domain"
)

// page renders into a buffer first so a template failure can still
// become a clean 500.
func (h *Handlers) page(w http.ResponseWriter, status int, name string, data PageData) {
	var buf bytes.Buffer
	if err := h.Pages.Render(&buf, name, data); err != nil {
		log.Error().Err(err).Str("page", name).Msg("render page failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("page", name).Msg("write page failed")
	}
}

func (h *Handlers) notFoundPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, http.StatusNotFound, "not_found", PageData{
		Title:   "Page Not Found",
		Message: "The page you are looking for does not exist.",
	})
}

func (h *Handlers) errorPage(w http.ResponseWriter, err error) {
	msg := "Unable to load stall data."
	if errors.Is(err, domain.ErrStoreUnavailable) {
		msg = "Unable to connect to the database."
	}
	h.page(w, http.StatusInternalServerError, "error", PageData{Title: "Something Went Wrong", Message: msg})
}

// lookupFailed maps a point-lookup error to a page.
func (h *Handlers) lookupFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		h.notFoundPage(w, r)
		return
	}
	h.errorPage(w, err)
}

func (h *Handlers) homePage(w http.ResponseWriter, r *http.Request) {
	h.page(w, http.StatusOK, "home", PageData{Title: "Furryville Index", Message: "Find a shop in Furryville."})
}

func (h *Handlers) aboutPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, http.StatusOK, "about", PageData{Title: "About"})
}

func (h *Handlers) mallMapPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, http.StatusOK, "mall_map", PageData{Title: "The Mall Map"})
}

func (h *Handlers) warpHallPage(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.D.WarpHallStalls(r.Context())
	if err != nil {
		h.errorPage(w, err)
		return
	}
	h.page(w, http.StatusOK, "warp_hall", PageData{
		Title:              "Warp Hall",
		WarpStalls:         stalls,
		WarpHallStallPages: h.WarpHallStallPages,
	})
}

func (h *Handlers) mallPage(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.D.MallStalls(r.Context())
	if err != nil {
		h.errorPage(w, err)
		return
	}
	h.page(w, http.StatusOK, "the_mall", PageData{Title: "The Mall", MallStalls: stalls})
}

func (h *Handlers) warpHallStallPage(w http.ResponseWriter, r *http.Request) {
	if !h.WarpHallStallPages {
		h.notFoundPage(w, r)
		return
	}
	n, err := domain.ParseStallNumber(pathParam(r, "stallNumber"))
	if err != nil {
		h.notFoundPage(w, r)
		return
	}
	stall, err := h.D.WarpHallStall(r.Context(), n)
	if err != nil {
		h.lookupFailed(w, r, err)
		return
	}
	h.page(w, http.StatusOK, "warp_hall_stall", PageData{
		Title:     "Warp Hall Stall " + stall.StallNumber.String(),
		WarpStall: &stall,
	})
}

func (h *Handlers) mallStallPage(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParseMallKey(pathParam(r, "streetName"), pathParam(r, "stallNumber"))
	if err != nil {
		h.notFoundPage(w, r)
		return
	}
	stall, reviews, err := h.D.MallStallDetail(r.Context(), key)
	if err != nil {
		h.lookupFailed(w, r, err)
		return
	}
	h.page(w, http.StatusOK, "mall_stall", PageData{
		Title:     stall.StallName,
		MallStall: &stall,
		Reviews:   reviews,
	})
}
