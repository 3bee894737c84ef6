package publication

import (
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
)

// HandleLike handles POST /publications/{id}/like
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.service.LikePublication(r.Context(), publicationID(r), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleUnlike handles DELETE /publications/{id}/like
func (h *Handler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.service.UnlikePublication(r.Context(), publicationID(r), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleHasLiked handles GET /publications/{id}/like for the current user
func (h *Handler) HandleHasLiked(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	liked, err := h.service.HasUserLiked(r.Context(), publicationID(r), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"publicationId": publicationID(r),
		"hasLiked":      liked,
	})
}

// HandleGetLikes handles GET /publications/{id}/likes
func (h *Handler) HandleGetLikes(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	result, err := h.service.GetLikes(r.Context(), publicationID(r), middleware.GetUserID(r), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}
