// Package response writes the JSON bodies shared by middleware and
// handlers that run outside pkg/ctx.
package response

import (
	"encoding/json"
	"net/http"
)

// Body is the JSON shape used by the order API: {"status":"error","message":...}.
type Body struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func JSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Error sends {"status":"error","message":message}.
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, Body{Status: "error", Message: message})
}

func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too many attempts, try again later")
}
