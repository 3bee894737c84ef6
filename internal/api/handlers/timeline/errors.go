package timeline

import (
	"errors"
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/core/timeline"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, timeline.ErrUnauthorized) {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthenticationRequired", "User must be authenticated")
		return
	}
	handlers.WriteServiceError(w, err, "timeline service")
}
