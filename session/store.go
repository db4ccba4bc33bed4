package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store implementations when a session id misses.
var ErrNotFound = errors.New("session not found")

// Store persists session rows. Implementations must apply Revoke and Extend
// atomically against the current row state: Extend must not resurrect or
// prolong a row that a concurrent Revoke already marked, which is what makes
// a racing revoke win over a refresh.
type Store interface {
	// Save inserts a new session row.
	Save(ctx context.Context, s *Session) error
	// Get returns the session with the given id, revoked or not.
	Get(ctx context.Context, sessionID string) (*Session, error)
	// ListActive returns the user's unrevoked sessions, newest first.
	ListActive(ctx context.Context, userID string) ([]*Session, error)
	// ListRevoked returns the user's revoked sessions, most recently
	// revoked first.
	ListRevoked(ctx context.Context, userID string) ([]*Session, error)
	// Revoke sets RevokedAt on a live session owned by userID. Revoking an
	// already-revoked session is a no-op success.
	Revoke(ctx context.Context, userID, sessionID string, at time.Time) error
	// RevokeAllExcept revokes every live session of the user except
	// keepID. An empty keepID revokes everything.
	RevokeAllExcept(ctx context.Context, userID, keepID string, at time.Time) error
	// Extend advances ExpiresAt on the session if and only if it is still
	// unrevoked. Returns false when the row was revoked or missing.
	Extend(ctx context.Context, sessionID string, expiresAt time.Time) (bool, error)
	// DeleteRevoked hard-deletes the user's revoked sessions, sparing
	// exceptID. Live rows are never touched.
	DeleteRevoked(ctx context.Context, userID, exceptID string) error
}
