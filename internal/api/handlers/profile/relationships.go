package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
)

// HandleGetFriends handles GET /profiles/{userId}/friends
func (h *Handler) HandleGetFriends(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	result, err := h.service.GetFriends(r.Context(), chi.URLParam(r, "userId"), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleAddFriend handles POST /profiles/{userId}/friends {"friendId": "..."}
func (h *Handler) HandleAddFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var body struct {
		FriendID string `json:"friendId"`
	}
	if err := handlers.DecodeJSON(w, r, friendSchema, &body); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}

	result, err := h.service.AddFriend(r.Context(), userID, body.FriendID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleRemoveFriend handles DELETE /profiles/{userId}/friends/{friendId}
func (h *Handler) HandleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	result, err := h.service.RemoveFriend(r.Context(), userID, chi.URLParam(r, "friendId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleGetBlocked handles GET /profiles/{userId}/blocked-users
func (h *Handler) HandleGetBlocked(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	result, err := h.service.GetBlockedUsers(r.Context(), userID, page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleBlock handles POST /profiles/{userId}/blocked-users {"blockedUserId": "..."}
func (h *Handler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var body struct {
		BlockedUserID string `json:"blockedUserId"`
	}
	if err := handlers.DecodeJSON(w, r, blockSchema, &body); err != nil {
		handlers.WriteDecodeError(w, err)
		return
	}

	result, err := h.service.BlockUser(r.Context(), userID, body.BlockedUserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleUnblock handles DELETE /profiles/{userId}/blocked-users/{blockedId}
func (h *Handler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	result, err := h.service.UnblockUser(r.Context(), userID, chi.URLParam(r, "blockedId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}
