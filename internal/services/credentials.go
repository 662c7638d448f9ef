package services

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks a supplied username/password against the single
// configured pair. When a bcrypt hash is configured it takes precedence over
// the plain password.
type CredentialVerifier struct {
	username     string
	password     string
	passwordHash string
}

// NewCredentialVerifier creates a verifier for the configured credential pair
func NewCredentialVerifier(username, password, passwordHash string) *CredentialVerifier {
	return &CredentialVerifier{
		username:     username,
		password:     password,
		passwordHash: passwordHash,
	}
}

// Verify reports whether the supplied pair matches the configured one.
// Both comparisons always run so unknown-username and wrong-password take
// the same path; callers must also never distinguish them in responses.
func (v *CredentialVerifier) Verify(username, password string) bool {
	userOK := constantTimeEqual(username, v.username)

	var passOK bool
	if v.passwordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(v.passwordHash), []byte(password)) == nil
	} else {
		passOK = constantTimeEqual(password, v.password)
	}

	return userOK && passOK
}

// constantTimeEqual compares two strings without leaking the match position.
// Hashing first lets ConstantTimeCompare work on unequal-length inputs.
func constantTimeEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
