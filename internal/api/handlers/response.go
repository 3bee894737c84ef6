package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// WriteJSON encodes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent
		log.Printf("Failed to encode response: %v", err)
	}
}
