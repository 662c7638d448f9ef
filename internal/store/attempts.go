package store

import (
	"sync"
	"time"

	"github.com/adityarw/portal-auth/internal/models"
)

// AttemptLogCapacity bounds the in-memory login log; oldest entries are
// evicted first.
const AttemptLogCapacity = 1000

// AttemptResult is the outcome of a rate limit check
type AttemptResult struct {
	Allowed    bool
	Remaining  int           // attempts left in the current window
	Attempt    int           // this attempt's number within the window
	RetryAfter time.Duration // time until the window resets, set when denied
}

// attemptRecord tracks attempts for one client key within a fixed window.
// At most one live record exists per key.
type attemptRecord struct {
	count       int
	windowStart time.Time
}

// AttemptStore is the strict login rate limiter: a per-key fixed-window
// attempt counter plus a bounded log of login attempts. All state is
// process-local and lost on restart.
type AttemptStore struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	records     map[string]*attemptRecord
	log         []models.LoginAttempt
}

// NewAttemptStore creates an AttemptStore allowing maxAttempts per window
func NewAttemptStore(maxAttempts int, window time.Duration) *AttemptStore {
	return &AttemptStore{
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		records:     make(map[string]*attemptRecord),
	}
}

// SetTimeFunc overrides the clock, for tests that need to cross the window
func (s *AttemptStore) SetTimeFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CheckAndConsume atomically checks the limit for key and, when allowed,
// consumes one attempt. Two concurrent callers can never both take the last
// slot; the read-modify-write runs under the store lock.
func (s *AttemptStore) CheckAndConsume(key string) AttemptResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	rec, ok := s.records[key]
	if !ok || now.Sub(rec.windowStart) > s.window {
		// No record or window expired: start a fresh window
		s.records[key] = &attemptRecord{count: 1, windowStart: now}
		return AttemptResult{
			Allowed:   true,
			Remaining: s.maxAttempts - 1,
			Attempt:   1,
		}
	}

	if rec.count >= s.maxAttempts {
		retryAfter := rec.windowStart.Add(s.window).Sub(now)
		return AttemptResult{
			Allowed:    false,
			Remaining:  0,
			Attempt:    rec.count,
			RetryAfter: retryAfter,
		}
	}

	rec.count++
	return AttemptResult{
		Allowed:   true,
		Remaining: s.maxAttempts - rec.count,
		Attempt:   rec.count,
	}
}

// Reset clears the attempt record for key. Called on successful login, so a
// run of near-limit failures followed by a success grants a full fresh
// window.
func (s *AttemptStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

// Record appends a login attempt to the bounded log
func (s *AttemptStore) Record(clientID, username string, success bool, attemptNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.LoginAttempt{
		Timestamp:     s.now(),
		ClientID:      clientID,
		Username:      username,
		Success:       success,
		AttemptNumber: attemptNumber,
	}

	s.log = append(s.log, entry)
	if len(s.log) > AttemptLogCapacity {
		s.log = s.log[len(s.log)-AttemptLogCapacity:]
	}
}

// Recent returns up to n most recent login attempts, newest last
func (s *AttemptStore) Recent(n int) []models.LoginAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.log) {
		n = len(s.log)
	}
	out := make([]models.LoginAttempt, n)
	copy(out, s.log[len(s.log)-n:])
	return out
}

// SweepIdle removes records whose window has already expired, so the key map
// does not grow without bound over long uptimes. Returns the number of
// records removed.
func (s *AttemptStore) SweepIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, rec := range s.records {
		if now.Sub(rec.windowStart) > s.window {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of live attempt records
func (s *AttemptStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
