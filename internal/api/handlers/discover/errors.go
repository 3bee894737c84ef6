package discover

import (
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	handlers.WriteServiceError(w, err, "discover service")
}
