package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"furryville_index/internal/adapters/observability"
	"furryville_index/internal/app"
	"furryville_index/internal/domain"
)

const apiVersion = "1.0.0"

type Handlers struct {
	D     *app.Directory
	Pages *Renderer

	// WarpHallStallPages mirrors the startup flag; when false every
	// Warp Hall detail page is a 404.
	WarpHallStallPages bool

	catalog []string
}

type shopsResponse[T any] struct {
	Shops []T `json:"shops"`
	Count int `json:"count"`
}

type reviewsResponse struct {
	Location      domain.Location `json:"location"`
	Reviews       []domain.Review `json:"reviews"`
	Count         int             `json:"count"`
	AverageRating float64         `json:"average_rating"`
	Message       string          `json:"message,omitempty"`
}

type statusResponse struct {
	APIVersion     string             `json:"api_version"`
	Endpoints      []string           `json:"endpoints"`
	DatabaseStatus domain.StoreStatus `json:"database_status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// storeErrorMessage is the client-facing text for a store-side failure.
// Driver errors stay in the server log.
func storeErrorMessage(err error) string {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return "Database connection failed"
	}
	return "Database query failed"
}

// writeStoreError answers 500 with an empty collection under key.
func writeStoreError(w http.ResponseWriter, key string, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error": storeErrorMessage(err),
		key:     []struct{}{},
	})
}

func (h *Handlers) apiHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Furryville Index API",
		"status":  "running",
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": observability.ServiceName,
	})
}

func (h *Handlers) apiStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		APIVersion:     apiVersion,
		Endpoints:      h.catalog,
		DatabaseStatus: h.D.Status(r.Context()),
	})
}

func (h *Handlers) apiWarpHall(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.D.WarpHallStalls(r.Context())
	if err != nil {
		writeStoreError(w, "shops", err)
		return
	}
	writeJSON(w, http.StatusOK, shopsResponse[domain.WarpHallStall]{Shops: stalls, Count: len(stalls)})
}

func (h *Handlers) apiMall(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.D.MallStalls(r.Context())
	if err != nil {
		writeStoreError(w, "shops", err)
		return
	}
	writeJSON(w, http.StatusOK, shopsResponse[domain.MallStall]{Shops: stalls, Count: len(stalls)})
}

func (h *Handlers) apiReviews(w http.ResponseWriter, r *http.Request) {
	loc := domain.Location(pathParam(r, "location"))
	out, err := h.D.Reviews(r.Context(), loc, pathParam(r, "*"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reviewsResponse{
			Location:      loc,
			Reviews:       out.Reviews,
			Count:         out.Count,
			AverageRating: out.AverageRating,
		})
	case errors.Is(err, domain.ErrUnsupported):
		writeJSON(w, http.StatusOK, reviewsResponse{
			Location: loc,
			Reviews:  []domain.Review{},
			Message:  "Reviews are not available for this location",
		})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid stall identifier"})
	default:
		writeStoreError(w, "reviews", err)
	}
}
