package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMethodNotAllowed  = errors.New("method not allowed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInternalServer    = errors.New("internal server error")

	// Token validation errors. Both map to 401, but the user-facing
	// message differs so clients can prompt for re-login vs retry.
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenRevoked   = errors.New("token has been revoked")
)
