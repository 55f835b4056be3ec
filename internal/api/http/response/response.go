// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/dtroode/authkeeper/internal/model"
)

// FieldError is the wire form of a field failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope is the body of every API response.
type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// JSON writes env with the given status.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// Success writes a successful envelope.
func Success(w http.ResponseWriter, status int, data any, message string) {
	JSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// Error writes a failed envelope.
func Error(w http.ResponseWriter, status int, message string, errs ...FieldError) {
	JSON(w, status, Envelope{Success: false, Message: message, Errors: errs})
}

// Fields converts validation failures to their wire form.
func Fields(fields []model.FieldError) []FieldError {
	out := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}
