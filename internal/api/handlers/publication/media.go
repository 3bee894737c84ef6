package publication

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// HandleAddMedia handles POST /publications/{id}/media (multipart)
func (h *Handler) HandleAddMedia(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !isMultipart(r) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "expected multipart/form-data with files")
		return
	}

	_, files, cleanup, err := h.parseMultipart(w, r)
	defer cleanup()
	if err != nil {
		writeUploadError(w, err)
		return
	}

	view, err := h.service.AddMedia(r.Context(), publications.AddMediaRequest{
		PublicationID: publicationID(r),
		UserID:        userID,
		Files:         files,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}

// HandleRemoveMedia handles DELETE /publications/{id}/media/{mediaId}
func (h *Handler) HandleRemoveMedia(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.RemoveMedia(r.Context(), publicationID(r), chi.URLParam(r, "mediaId"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}
