package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers/profile"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
)

// RegisterProfileRoutes registers profile and relationship endpoints.
// Owner-only routes answer 403 when the path user is not the caller.
func RegisterProfileRoutes(
	r chi.Router,
	service profiles.Service,
	authMiddleware *middleware.JWTAuthMiddleware,
	limiter *Limiter,
) {
	h := profile.NewHandler(service)

	// Friend and block mutations share one budget
	relationLimit := limiter.Per(10, time.Hour)

	r.With(authMiddleware.RequireAuth).Post("/profiles", h.HandleCreate)
	r.Get("/profiles/search", h.HandleSearch)
	r.Get("/profiles/username/{username}", h.HandleGetByUsername)
	r.Get("/profiles/username/{username}/available", h.HandleUsernameAvailable)

	r.Get("/profiles/{userId}", h.HandleGet)
	r.With(authMiddleware.RequireAuth).Put("/profiles/{userId}", h.HandleUpdate)
	r.With(authMiddleware.RequireAuth).Put("/profiles/{userId}/interests", h.HandleUpdateInterests)
	r.Get("/profiles/{userId}/stats", h.HandleStats)
	r.With(authMiddleware.RequireAuth).Get("/profiles/{userId}/suggestions", h.HandleSuggestions)

	r.Get("/profiles/{userId}/friends", h.HandleGetFriends)
	r.With(authMiddleware.RequireAuth, relationLimit).Post("/profiles/{userId}/friends", h.HandleAddFriend)
	r.With(authMiddleware.RequireAuth, relationLimit).Delete("/profiles/{userId}/friends/{friendId}", h.HandleRemoveFriend)

	r.With(authMiddleware.RequireAuth).Get("/profiles/{userId}/blocked-users", h.HandleGetBlocked)
	r.With(authMiddleware.RequireAuth, relationLimit).Post("/profiles/{userId}/blocked-users", h.HandleBlock)
	r.With(authMiddleware.RequireAuth, relationLimit).Delete("/profiles/{userId}/blocked-users/{blockedId}", h.HandleUnblock)
}
