// Package handlers provides the HTTP handlers for the Inkpad API.
package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body for every failed request. Validation
// failures additionally carry the full list of violated rules. No stack
// traces or internal identifiers are ever exposed.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONOK writes a 200 OK JSON response.
func WriteJSONOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteJSONCreated writes a 201 Created JSON response.
func WriteJSONCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// BadRequest writes a 400 response with a single message.
func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: message})
}

// ValidationFailed writes a 400 response carrying every violated rule.
func ValidationFailed(w http.ResponseWriter, errs []string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized writes a 401 response with a single message.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Message: message})
}

// NotFound writes a 404 response with a single message.
func NotFound(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusNotFound, ErrorResponse{Message: message})
}

// InternalServerError writes a 500 response with a single message.
func InternalServerError(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: message})
}
