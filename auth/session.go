package auth

import "time"

// Session is the in-memory record created on successful login, per spec
// §3. Sessions live only in memory; tokens do not survive process
// restart.
type Session struct {
	UserID   int64
	Username string
	Expiry   time.Time
}

// expired reports whether s is past its expiry at instant now.
func (s Session) expired(now time.Time) bool {
	return !s.Expiry.After(now)
}
