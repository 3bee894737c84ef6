// Package discover serves the public discovery feeds.
package discover

import (
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/core/discover"
)

// Handler handles discover feed retrieval
type Handler struct {
	service discover.Service
}

// NewHandler creates a new discover handler
func NewHandler(service discover.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleGetPopular handles GET /discover/popular?timeframe=week&page=&limit=
// Public endpoint - no authentication required
func (h *Handler) HandleGetPopular(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	response, err := h.service.GetPopular(r.Context(), discover.GetPopularRequest{
		Timeframe: discover.Timeframe(r.URL.Query().Get("timeframe")),
		Page:      page,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, response)
}

// HandleGetRecent handles GET /discover/recent?page=&limit=
func (h *Handler) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	response, err := h.service.GetRecent(r.Context(), discover.GetRecentRequest{Page: page})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, response)
}
