package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standardized JSON error response
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{
		Error:   errorType,
		Message: message,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation, errs.KindInvariant:
		return http.StatusBadRequest
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindUnimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError maps a service error to an HTTP response. Kinded errors
// carry their message to the client; anything else is logged and hidden.
func WriteServiceError(w http.ResponseWriter, err error, op string) {
	kind := errs.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %s: %v", op, err)
		WriteError(w, status, "InternalServerError", "An internal error occurred")
		return
	}
	WriteError(w, status, kind.String(), err.Error())
}
