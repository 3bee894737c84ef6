// Package timeline serves the personalized feed endpoints.
package timeline

import (
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/timeline"
)

// Handler handles feed and timeline retrieval
type Handler struct {
	service timeline.Service
}

// NewHandler creates a new timeline handler
func NewHandler(service timeline.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleGetFeed handles GET /feed?page=&limit=
// Publications by the user and the user's friends, newest first.
// Requires authentication.
func (h *Handler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	response, err := h.service.GetFeed(r.Context(), timeline.GetFeedRequest{
		UserID: middleware.GetUserID(r),
		Page:   page,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, response)
}

// HandleGetTimeline handles GET /timeline?friendIds=a,b&page=&limit=
// Requires authentication.
func (h *Handler) HandleGetTimeline(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	response, err := h.service.GetTimeline(r.Context(), timeline.GetTimelineRequest{
		UserID:    middleware.GetUserID(r),
		FriendIDs: timeline.ParseFriendIDs(r.URL.Query().Get("friendIds")),
		Page:      page,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, response)
}
