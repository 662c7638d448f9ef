package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform failure envelope. Every failure keeps the
// same {success:false, message} shape so callers can branch on success
// without inspecting status codes.
type ErrorResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Valid         *bool  `json:"valid,omitempty"`         // token verification outcome
	RemainingTime int    `json:"remainingTime,omitempty"` // minutes until the login window resets
	RetryAfter    int    `json:"retryAfter,omitempty"`    // seconds until the general limit resets
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log encoding errors but don't expose them to the client
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error envelope with the given status code
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message})
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// WriteUnauthorizedInvalid writes a 401 with an explicit valid:false marker,
// used by the token verification endpoint
func WriteUnauthorizedInvalid(w http.ResponseWriter, message string) {
	valid := false
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Message: message, Valid: &valid})
}

func WriteMethodNotAllowed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusMethodNotAllowed, message)
}

// WriteRateLimited writes a 429 for the login limiter, reporting the minutes
// remaining until the attempt window resets
func WriteRateLimited(w http.ResponseWriter, message string, remainingMinutes int) {
	WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Message:       message,
		RemainingTime: remainingMinutes,
	})
}

// WriteTooManyRequests writes a 429 for the general API limiter, reporting
// the seconds remaining until the window resets
func WriteTooManyRequests(w http.ResponseWriter, message string, retryAfterSeconds int) {
	WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Message:    message,
		RetryAfter: retryAfterSeconds,
	})
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
