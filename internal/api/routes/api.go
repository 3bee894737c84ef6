package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/discover"
	"github.com/wilber023/poust-microservicio/internal/core/media"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
	"github.com/wilber023/poust-microservicio/internal/core/timeline"
)

// APIPrefix is where every versioned endpoint is mounted
const APIPrefix = "/api/v1"

// Services groups what the API routes are built from
type Services struct {
	Publications publications.Service
	Profiles     profiles.Service
	Timeline     timeline.Service
	Discover     discover.Service
	MediaLimits  media.Limits
}

// RegisterAPIRoutes mounts every /api/v1 endpoint behind the general
// limit of 100 requests per 15 minutes per client
func RegisterAPIRoutes(r chi.Router, svc Services, authMiddleware *middleware.JWTAuthMiddleware, limiter *Limiter) {
	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(limiter.Per(100, 15*time.Minute))

		RegisterPublicationRoutes(r, svc.Publications, svc.MediaLimits, authMiddleware, limiter)
		RegisterProfileRoutes(r, svc.Profiles, authMiddleware, limiter)
		RegisterTimelineRoutes(r, svc.Timeline, authMiddleware)
		RegisterDiscoverRoutes(r, svc.Discover)
	})
}
