// Package response writes the {success, data, error} envelope used by every
// route except the chat turn, which carries its own envelope.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Response is the envelope of every non-chat route
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// JSON wraps data in the envelope; success follows the status class
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{Success: status >= 200 && status < 300, Data: data})
}

// Error sends a failed envelope. message may be a string or a field map.
func Error(w http.ResponseWriter, status int, message any) {
	write(w, status, Response{Error: message})
}

// Raw sends v as the whole body
func Raw(w http.ResponseWriter, status int, v any) {
	write(w, status, v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func OK(w http.ResponseWriter, data any)      { JSON(w, http.StatusOK, data) }
func Created(w http.ResponseWriter, data any) { JSON(w, http.StatusCreated, data) }

func BadRequest(w http.ResponseWriter, message any)   { Error(w, http.StatusBadRequest, message) }
func Unauthorized(w http.ResponseWriter, message any) { Error(w, http.StatusUnauthorized, message) }
func Forbidden(w http.ResponseWriter, message any)    { Error(w, http.StatusForbidden, message) }
func NotFound(w http.ResponseWriter, message any)     { Error(w, http.StatusNotFound, message) }
func Conflict(w http.ResponseWriter, message any)     { Error(w, http.StatusConflict, message) }

// TooManyRequests is sent when the caller's rate limit window is spent
func TooManyRequests(w http.ResponseWriter, message any) {
	Error(w, http.StatusTooManyRequests, message)
}

// ServiceUnavailable is sent by readiness checks when a backend is down
func ServiceUnavailable(w http.ResponseWriter, message any) {
	Error(w, http.StatusServiceUnavailable, message)
}

func InternalError(w http.ResponseWriter, message any) {
	Error(w, http.StatusInternalServerError, message)
}
