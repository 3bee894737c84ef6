package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
)

// HandleCreate handles POST /profiles. The profile id is the authenticated user.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthenticationRequired", "User must be authenticated")
		return
	}

	var req profiles.CreateProfileRequest
	if err := handlers.DecodeJSON(w, r, createSchema, &req); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}
	req.UserID = userID

	view, err := h.service.CreateProfile(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /profiles/{userId}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}

// HandleGetByUsername handles GET /profiles/username/{username}
func (h *Handler) HandleGetByUsername(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetProfileByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}

// HandleUsernameAvailable handles GET /profiles/username/{username}/available
func (h *Handler) HandleUsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	available, err := h.service.IsUsernameAvailable(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"username":  username,
		"available": available,
	})
}

// HandleUpdate handles PUT /profiles/{userId}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req profiles.UpdateProfileRequest
	if err := handlers.DecodeJSON(w, r, updateSchema, &req); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}
	req.UserID = userID

	view, err := h.service.UpdateProfile(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}

// HandleUpdateInterests handles PUT /profiles/{userId}/interests
func (h *Handler) HandleUpdateInterests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var body struct {
		Interests []string `json:"interests"`
	}
	if err := handlers.DecodeJSON(w, r, interestsSchema, &body); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}

	view, err := h.service.UpdateInterests(r.Context(), userID, body.Interests)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}

// HandleSearch handles GET /profiles/search?q=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	result, err := h.service.SearchProfiles(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleStats handles GET /profiles/{userId}/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetProfileStats(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, stats)
}

// HandleSuggestions handles GET /profiles/{userId}/suggestions?limit=
func (h *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r)
	if err != nil || limit < 1 {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "limit must be a positive integer")
		return
	}

	suggestions, err := h.service.GetFriendSuggestions(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
