package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrMessageInternal is what clients see on 500s. Details stay in the log.
const ErrMessageInternal = "internal server error"

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONError responds with a single "error" message.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// JSONValidationError responds with an error message plus per-field details.
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message, Fields: fields})
}
