// Package response writes the JSON envelope shared by every Ayoo endpoint:
//
//	{"status":422,"message":"Validation failed","errors":{"lat":"..."}}
//
// Handlers go through *ctx.Context; middleware, which has no Context, calls
// these functions directly.
package response

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Data: data})
}

// Error writes an envelope with only a message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: status, Message: message})
}

// Validation writes a 422 with per-field messages.
func Validation(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fields,
	})
}

// Unauthorized writes a 401; an empty message means "Unauthorized".
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, orDefault(message, "Unauthorized"))
}

// Forbidden writes a 403; an empty message means "Forbidden".
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, orDefault(message, "Forbidden"))
}

// NotFound writes a 404; an empty message means "Not found".
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, orDefault(message, "Not found"))
}

// TooManyRequests writes a 429 with Retry-After in whole seconds.
func TooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	}
	Error(w, http.StatusTooManyRequests, "Too Many Requests")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
