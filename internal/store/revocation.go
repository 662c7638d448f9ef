package store

import (
	"sync"
	"time"
)

// RevocationStore is an in-memory denylist of revoked token IDs. Entries
// carry the token's natural expiry so the sweeper can drop them once the
// token would have died anyway.
type RevocationStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	revoked map[string]time.Time // jti -> token expiry
}

// NewRevocationStore creates an empty revocation store
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// SetTimeFunc overrides the clock, for tests
func (s *RevocationStore) SetTimeFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Revoke marks a token ID as revoked until its natural expiry.
// Revoking an already-revoked token is a no-op.
func (s *RevocationStore) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[jti]; !ok {
		s.revoked[jti] = expiresAt
	}
}

// IsRevoked reports whether a token ID has been revoked
func (s *RevocationStore) IsRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[jti]
	return ok
}

// SweepExpired removes entries for tokens that are past their natural
// expiry. Returns the number of entries removed.
func (s *RevocationStore) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for jti, expiresAt := range s.revoked {
		if now.After(expiresAt) {
			delete(s.revoked, jti)
			removed++
		}
	}
	return removed
}

// Size returns the number of live revocation entries
func (s *RevocationStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revoked)
}
