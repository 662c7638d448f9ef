// Package session implements the client side of the portal's token
// lifecycle: it holds the current token pair and expiry timestamps in a
// Store, attaches the access token to outgoing requests, transparently
// retries once after a 401 by refreshing, and clears the session when the
// locally recorded expiry passes.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Storage keys, matching what the front end persists
const (
	keyAuthToken       = "authToken"
	keyRefreshToken    = "refreshToken"
	keySessionExpires  = "sessionExpires"
	keyRememberExpires = "rememberMeExpires"
	keyLoginTime       = "loginTime"
)

// Defaults mirroring the server's token lifetimes
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultRememberTTL = 7 * 24 * time.Hour
)

// ErrLoginFailed is returned when the server rejects the credentials
var ErrLoginFailed = errors.New("login failed")

// ErrNotAuthenticated is returned when an operation needs a live session
var ErrNotAuthenticated = errors.New("not authenticated")

// Config configures a Controller
type Config struct {
	BaseURL    string
	HTTPClient *http.Client  // defaults to http.DefaultClient
	Store      Store         // defaults to an in-memory store
	SessionTTL time.Duration // local absolute session timeout
	OnExpire   func()        // called after the session is cleared by timeout or refresh failure
}

// Controller manages the client-side session state machine:
// Anonymous -> (login success) -> Authenticated -> (expiry | logout |
// refresh failure) -> Anonymous.
//
// Clearing and refreshing are serialized through the controller lock and a
// generation counter, so a timer-triggered clear racing an in-flight
// refresh always leaves the session cleared.
type Controller struct {
	mu         sync.Mutex
	client     *http.Client
	baseURL    string
	store      Store
	sessionTTL time.Duration
	onExpire   func()
	now        func() time.Time
	timer      *time.Timer
	generation uint64
}

// New creates a session Controller
func New(cfg Config) *Controller {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	st := cfg.Store
	if st == nil {
		st = NewMemoryStore()
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	c := &Controller{
		client:     client,
		baseURL:    cfg.BaseURL,
		store:      st,
		sessionTTL: ttl,
		onExpire:   cfg.OnExpire,
		now:        time.Now,
	}

	// Restore the expiry guard for a session persisted by a previous run
	if c.store.Get(keyAuthToken) != "" {
		c.mu.Lock()
		c.scheduleExpiryLocked()
		c.mu.Unlock()
	}

	return c
}

// SetTimeFunc overrides the clock, for tests
func (c *Controller) SetTimeFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type loginResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	Token        string  `json:"token"`
	RefreshToken *string `json:"refreshToken"`
	ExpiresIn    int     `json:"expiresIn"`
}

type refreshResponse struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// Login authenticates against the portal and stores the session state.
// With rememberMe the refresh token is kept for transparent renewal.
func (c *Controller) Login(ctx context.Context, username, password string, rememberMe bool) error {
	body, err := json.Marshal(map[string]interface{}{
		"username":   username,
		"password":   password,
		"rememberMe": rememberMe,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("decoding login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !lr.Success {
		return fmt.Errorf("%w: %s", ErrLoginFailed, lr.Message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.store.Set(keyAuthToken, lr.Token)
	c.store.Set(keySessionExpires, formatMillis(now.Add(c.sessionTTL)))
	c.store.Set(keyLoginTime, formatMillis(now))

	if rememberMe && lr.RefreshToken != nil {
		c.store.Set(keyRefreshToken, *lr.RefreshToken)
		c.store.Set(keyRememberExpires, formatMillis(now.Add(DefaultRememberTTL)))
	}

	c.scheduleExpiryLocked()
	return nil
}

// Logout tells the server to revoke the session, then clears local state.
// Already-anonymous logout still succeeds.
func (c *Controller) Logout(ctx context.Context) error {
	token := c.store.Get(keyAuthToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
	if err == nil {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if resp, derr := c.client.Do(req); derr == nil {
			resp.Body.Close()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	return nil
}

// IsAuthenticated reports whether a live session exists. The local expiry is
// authoritative: once it has passed the session is cleared even if the
// underlying token signature would still verify.
func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store.Get(keyAuthToken) == "" {
		return false
	}

	if expires, ok := parseMillis(c.store.Get(keySessionExpires)); ok && c.now().After(expires) {
		c.clearLocked()
		return false
	}

	return true
}

// CheckAuth is IsAuthenticated with the composable's name, kept for parity
// with the front-end API surface
func (c *Controller) CheckAuth(ctx context.Context) bool {
	return c.IsAuthenticated()
}

// Token returns the current access token, or empty when anonymous
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(keyAuthToken)
}

// refresh exchanges the stored refresh token for a new pair. The generation
// captured before the network call detects a concurrent clear; a stale
// refresh result is discarded so clearing always wins.
func (c *Controller) refresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.store.Get(keyRefreshToken)
	gen := c.generation
	c.mu.Unlock()

	if refreshToken == "" {
		return ErrNotAuthenticated
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var rr refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !rr.Success {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		// Session was cleared while the refresh was in flight
		return ErrNotAuthenticated
	}

	now := c.now()
	c.store.Set(keyAuthToken, rr.Token)
	c.store.Set(keyRefreshToken, rr.RefreshToken)
	c.store.Set(keySessionExpires, formatMillis(now.Add(c.sessionTTL)))
	c.scheduleExpiryLocked()
	return nil
}

// expire clears the session when the local timer fires. A bumped generation
// means a newer login or refresh already replaced the session this timer
// was guarding.
func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return
	}
	c.clearLocked()
	onExpire := c.onExpire
	c.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}

// clearSession clears local state after a failed refresh and notifies
func (c *Controller) clearSession() {
	c.mu.Lock()
	c.clearLocked()
	onExpire := c.onExpire
	c.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}

// clearLocked wipes all session state. Idempotent; callers hold c.mu.
func (c *Controller) clearLocked() {
	c.generation++

	c.store.Delete(keyAuthToken)
	c.store.Delete(keyRefreshToken)
	c.store.Delete(keySessionExpires)
	c.store.Delete(keyRememberExpires)
	c.store.Delete(keyLoginTime)

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// scheduleExpiryLocked (re)arms the absolute-timeout guard for the current
// session generation. Callers hold c.mu.
func (c *Controller) scheduleExpiryLocked() {
	c.generation++
	gen := c.generation

	if c.timer != nil {
		c.timer.Stop()
	}

	var d time.Duration
	if expires, ok := parseMillis(c.store.Get(keySessionExpires)); ok {
		d = expires.Sub(c.now())
	}
	if d < 0 {
		d = 0
	}

	c.timer = time.AfterFunc(d, func() { c.expire(gen) })
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
