// Package publication serves the /publications endpoints.
package publication

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/media"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// Handler serves publication endpoints
type Handler struct {
	service publications.Service
	limits  media.Limits
}

// NewHandler creates a publication handler. limits bound multipart uploads.
func NewHandler(service publications.Service, limits media.Limits) *Handler {
	return &Handler{
		service: service,
		limits:  limits,
	}
}

// requireUser returns the authenticated user or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthenticationRequired", "User must be authenticated")
		return "", false
	}
	return userID, true
}

func publicationID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
