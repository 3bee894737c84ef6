package publication

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// HandleGetComments handles GET /publications/{id}/comments?hierarchical=&parentId=
func (h *Handler) HandleGetComments(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	q := r.URL.Query()
	req := publications.GetCommentsRequest{
		PublicationID: publicationID(r),
		ViewerID:      middleware.GetUserID(r),
		ParentID:      q.Get("parentId"),
		Page:          page,
	}
	if v := q.Get("hierarchical"); v != "" {
		if req.Hierarchical, err = strconv.ParseBool(v); err != nil {
			handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "hierarchical must be true or false")
			return
		}
	}

	result, err := h.service.GetComments(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleAddComment handles POST /publications/{id}/comments
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req publications.AddCommentRequest
	if err := handlers.DecodeJSON(w, r, addCommentSchema, &req); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}
	req.PublicationID = publicationID(r)
	req.AuthorID = userID

	result, err := h.service.AddComment(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, result)
}

// HandleEditComment handles PATCH /publications/{id}/comments/{commentId}
func (h *Handler) HandleEditComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req publications.EditCommentRequest
	if err := handlers.DecodeJSON(w, r, editCommentSchema, &req); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}
	req.PublicationID = publicationID(r)
	req.CommentID = chi.URLParam(r, "commentId")
	req.UserID = userID

	result, err := h.service.EditComment(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleDeleteComment handles DELETE /publications/{id}/comments/{commentId}
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.service.DeleteComment(r.Context(), publicationID(r), chi.URLParam(r, "commentId"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleHideComment handles POST /publications/{id}/comments/{commentId}/hide
func (h *Handler) HandleHideComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.service.HideComment(r.Context(), publicationID(r), chi.URLParam(r, "commentId"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}
