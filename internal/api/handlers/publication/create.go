package publication

import (
	"errors"
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// HandleCreate handles POST /publications.
// The body is JSON, or multipart with text, visibility and files.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req publications.CreatePublicationRequest
	if isMultipart(r) {
		values, files, cleanup, err := h.parseMultipart(w, r)
		defer cleanup()
		if err != nil {
			writeUploadError(w, err)
			return
		}
		req.Text = values["text"]
		req.Visibility = values["visibility"]
		req.Files = files
	} else if err := handlers.DecodeJSON(w, r, createSchema, &req); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}
	req.AuthorID = userID

	view, err := h.service.CreatePublication(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, view)
}

func writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errUploadTooLarge):
		handlers.WriteError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", err.Error())
	case errs.KindOf(err) != errs.KindUnknown:
		handlers.WriteServiceError(w, err, "parse upload")
	default:
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	}
}
