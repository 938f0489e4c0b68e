package handlers

import (
	"encoding/json"
	"net/http"
)

// JSONMessage sends a JSON response with a single "message" field. Used for
// both success envelopes and domain failures (conflict, unauthorized,
// forbidden, not found, missing fields).
func JSONMessage(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// JSONError sends a 500-class JSON response with a single "error" field
// carrying the underlying error text.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
