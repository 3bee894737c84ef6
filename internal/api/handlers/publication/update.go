package publication

import (
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// HandleUpdate handles PATCH /publications/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req publications.UpdatePublicationRequest
	if err := handlers.DecodeJSON(w, r, updateSchema, &req); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}
	req.PublicationID = publicationID(r)
	req.UserID = userID

	view, err := h.service.UpdatePublication(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}

// HandleArchive handles POST /publications/{id}/archive
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.ArchivePublication(r.Context(), publicationID(r), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /publications/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePublication(r.Context(), publicationID(r), userID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
