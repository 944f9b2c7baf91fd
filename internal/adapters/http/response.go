package http

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"message": message})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"message": message})
}

// writeFieldError attributes a failure to one input field so clients can
// highlight the offending form control.
func writeFieldError(w http.ResponseWriter, statusCode int, message, field string) {
	writeJSON(w, statusCode, map[string]any{"message": message, "field": field})
}

// writeDuplicateError is the uniqueness-conflict body; the error key lets
// clients distinguish a taken identifier from a validation failure on the
// same field.
func writeDuplicateError(w http.ResponseWriter, message, field string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"message": message,
		"field":   field,
		"error":   "duplicate",
	})
}

// writeExpired marks an expired-but-otherwise-valid access token so clients
// know to attempt a refresh instead of forcing re-login.
func writeExpired(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"message": "Token expired",
		"expired": true,
	})
}
