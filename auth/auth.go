// Package auth implements session issuance, password hashing, and TTL
// expiry for the engine's optional ownership layer, per spec §4.2.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/sqlengine/errkind"
)

// DefaultTTL is the session lifetime used when Authenticator is
// constructed without an explicit override.
const DefaultTTL = 24 * time.Hour

// Authenticator owns the process-lifetime session map. There is no
// cross-process invalidation: a restart discards every session.
type Authenticator struct {
	ttl      time.Duration
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

// New creates an Authenticator with the given session TTL. A zero ttl
// falls back to DefaultTTL.
func New(ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Authenticator{
		ttl:      ttl,
		sessions: map[string]Session{},
		now:      time.Now,
	}
}

// HashPassword returns the hex-encoded SHA-256 digest of plaintext's UTF-8
// bytes. Deterministic and unsalted: a documented limitation (spec §9),
// not a defect to be "fixed" without changing the authenticator's
// interface contract.
func HashPassword(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// CreateSession mints a fresh UUID-v4 token for (userID, username) and
// stores it with an expiry of now+TTL in UTC.
func (a *Authenticator) CreateSession(userID int64, username string) string {
	token := uuid.NewString()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[token] = Session{
		UserID:   userID,
		Username: username,
		Expiry:   a.now().UTC().Add(a.ttl),
	}
	return token
}

// Validate looks up token, evicting and failing on an expired session and
// failing on a missing one. Both failures are a single **auth** error.
func (a *Authenticator) Validate(token string) (Session, error) {
	if token == "" {
		return Session{}, errkind.New(errkind.Auth, "missing session token")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	sess, ok := a.sessions[token]
	if !ok {
		return Session{}, errkind.New(errkind.Auth, "unknown session token")
	}
	if sess.expired(a.now().UTC()) {
		delete(a.sessions, token)
		return Session{}, errkind.New(errkind.Auth, "session expired")
	}
	return sess, nil
}

// Logout removes token from the session map; a missing token is a no-op.
func (a *Authenticator) Logout(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, token)
}
