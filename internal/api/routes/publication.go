package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers/publication"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/media"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// RegisterPublicationRoutes registers publication endpoints, including the
// per-author listings under /profiles/{userId}
func RegisterPublicationRoutes(
	r chi.Router,
	service publications.Service,
	limits media.Limits,
	authMiddleware *middleware.JWTAuthMiddleware,
	limiter *Limiter,
) {
	h := publication.NewHandler(service, limits)

	// Like and unlike share one budget
	likeLimit := limiter.Per(50, 5*time.Minute)

	// Reads; anonymous viewers only see public publications
	r.With(authMiddleware.OptionalAuth).Get("/publications", h.HandleList)
	r.With(authMiddleware.OptionalAuth, limiter.Per(20, time.Minute)).Get("/publications/search", h.HandleSearch)
	r.With(authMiddleware.OptionalAuth).Get("/publications/{id}", h.HandleGet)
	r.With(authMiddleware.OptionalAuth).Get("/publications/{id}/likes", h.HandleGetLikes)
	r.With(authMiddleware.OptionalAuth).Get("/publications/{id}/stats", h.HandleStats)
	r.With(authMiddleware.OptionalAuth).Get("/publications/{id}/comments", h.HandleGetComments)

	// Writes; the rate limiter runs after auth so it keys by user
	r.With(authMiddleware.RequireAuth, limiter.Per(20, time.Hour)).Post("/publications", h.HandleCreate)
	r.With(authMiddleware.RequireAuth).Patch("/publications/{id}", h.HandleUpdate)
	r.With(authMiddleware.RequireAuth).Post("/publications/{id}/archive", h.HandleArchive)
	r.With(authMiddleware.RequireAuth).Delete("/publications/{id}", h.HandleDelete)

	r.With(authMiddleware.RequireAuth).Get("/publications/{id}/like", h.HandleHasLiked)
	r.With(authMiddleware.RequireAuth, likeLimit).Post("/publications/{id}/like", h.HandleLike)
	r.With(authMiddleware.RequireAuth, likeLimit).Delete("/publications/{id}/like", h.HandleUnlike)

	r.With(authMiddleware.RequireAuth, limiter.Per(30, 10*time.Minute)).Post("/publications/{id}/comments", h.HandleAddComment)
	r.With(authMiddleware.RequireAuth).Patch("/publications/{id}/comments/{commentId}", h.HandleEditComment)
	r.With(authMiddleware.RequireAuth).Delete("/publications/{id}/comments/{commentId}", h.HandleDeleteComment)
	r.With(authMiddleware.RequireAuth).Post("/publications/{id}/comments/{commentId}/hide", h.HandleHideComment)

	r.With(authMiddleware.RequireAuth).Post("/publications/{id}/media", h.HandleAddMedia)
	r.With(authMiddleware.RequireAuth).Delete("/publications/{id}/media/{mediaId}", h.HandleRemoveMedia)

	// Per-author views
	r.With(authMiddleware.OptionalAuth).Get("/profiles/{userId}/publications", h.HandleListByAuthor)
	r.Get("/profiles/{userId}/publications/stats", h.HandleAuthorStats)
	r.With(authMiddleware.OptionalAuth).Get("/profiles/{userId}/liked", h.HandleLikedByUser)
}
