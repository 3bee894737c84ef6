// Package profile serves the /profiles endpoints.
package profile

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
)

// Handler serves profile endpoints
type Handler struct {
	service profiles.Service
}

// NewHandler creates a profile handler
func NewHandler(service profiles.Service) *Handler {
	return &Handler{service: service}
}

var createSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"username": {"type": "string", "minLength": 3, "maxLength": 30},
		"bio": {"type": "string"},
		"interests": {"type": "array", "items": {"type": "string"}, "maxItems": 20}
	},
	"required": ["username"],
	"additionalProperties": false
}`)

var updateSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"username": {"type": "string", "minLength": 3, "maxLength": 30},
		"bio": {"type": "string"}
	},
	"minProperties": 1,
	"additionalProperties": false
}`)

var interestsSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"interests": {"type": "array", "items": {"type": "string"}, "maxItems": 20}
	},
	"required": ["interests"],
	"additionalProperties": false
}`)

var friendSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {"friendId": {"type": "string", "minLength": 1}},
	"required": ["friendId"],
	"additionalProperties": false
}`)

var blockSchema = handlers.MustCompileSchema(`{
	"type": "object",
	"properties": {"blockedUserId": {"type": "string", "minLength": 1}},
	"required": ["blockedUserId"],
	"additionalProperties": false
}`)

// requireOwner returns the authenticated user when it matches {userId}.
// It writes 401 without a user and 403 for anyone else.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthenticationRequired", "User must be authenticated")
		return "", false
	}
	if chi.URLParam(r, "userId") != userID {
		handlers.WriteServiceError(w, profiles.ErrNotAuthorized, "profile owner check")
		return "", false
	}
	return userID, true
}

// handleServiceError maps profile service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	handlers.WriteServiceError(w, err, "profile service")
}

func parseLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return profiles.DefaultSuggestionLimit, nil
	}
	return strconv.Atoi(v)
}
