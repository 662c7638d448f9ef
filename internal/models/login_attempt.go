package models

import "time"

// LoginAttempt is an immutable record of a single login attempt.
// Attempts are kept in a bounded in-memory log, oldest evicted first.
type LoginAttempt struct {
	Timestamp     time.Time `json:"timestamp"`
	ClientID      string    `json:"client_id"`
	Username      string    `json:"username"`
	Success       bool      `json:"success"`
	AttemptNumber int       `json:"attempt_number"`
}
