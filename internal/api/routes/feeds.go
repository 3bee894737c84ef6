package routes

import (
	"github.com/go-chi/chi/v5"

	discoverHandlers "github.com/wilber023/poust-microservicio/internal/api/handlers/discover"
	timelineHandlers "github.com/wilber023/poust-microservicio/internal/api/handlers/timeline"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/discover"
	"github.com/wilber023/poust-microservicio/internal/core/timeline"
)

// RegisterTimelineRoutes registers the personal feed endpoints.
// Both require authentication.
func RegisterTimelineRoutes(r chi.Router, service timeline.Service, authMiddleware *middleware.JWTAuthMiddleware) {
	h := timelineHandlers.NewHandler(service)

	r.With(authMiddleware.RequireAuth).Get("/feed", h.HandleGetFeed)
	r.With(authMiddleware.RequireAuth).Get("/timeline", h.HandleGetTimeline)
}

// RegisterDiscoverRoutes registers the public discovery feeds
func RegisterDiscoverRoutes(r chi.Router, service discover.Service) {
	h := discoverHandlers.NewHandler(service)

	r.Get("/discover/popular", h.HandleGetPopular)
	r.Get("/discover/recent", h.HandleGetRecent)
}
