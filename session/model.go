package session

import "time"

// DeviceInfo carries the request metadata captured at login. Browser, OS and
// Device are parsed from the raw user-agent string; all fields may be empty.
type DeviceInfo struct {
	UserAgent string
	IP        string
	Browser   string
	OS        string
	Device    string
}

// Session is one authenticated device's login. A session with a non-zero
// RevokedAt is dead: it never appears in active listings and refresh attempts
// against it fail.
//
// Current is computed per request against the caller's own session id. It is
// never persisted; stores must not write it.
type Session struct {
	ID        string
	UserID    string
	Device    DeviceInfo
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt time.Time

	Current bool
}

// Revoked reports whether the session has been soft-revoked.
func (s *Session) Revoked() bool {
	return s != nil && !s.RevokedAt.IsZero()
}

// Expired reports whether the session's expiry has passed at t.
func (s *Session) Expired(t time.Time) bool {
	return s == nil || !s.ExpiresAt.After(t)
}
