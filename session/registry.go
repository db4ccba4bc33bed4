package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Registry errors. ErrForbidden and ErrCurrentSession are ownership rules,
// not lookup misses: a cross-user probe must not read as a plain not-found.
var (
	ErrForbidden      = errors.New("session does not belong to user")
	ErrCurrentSession = errors.New("cannot revoke current session")
)

// Config holds the registry's lifetime policy.
type Config struct {
	// Lifetime is the expiry horizon of a new session. Default 30 days.
	Lifetime time.Duration
	// RefreshWindow is how close to expiry a session must be before a
	// refresh call extends it (and rotates the refresh token). Default 24h.
	RefreshWindow time.Duration
	// Extension is how far past now an extension pushes the expiry. The
	// engine sets it to the refresh-token lifetime so a rotated token and
	// its session expire together. Defaults to Lifetime.
	Extension time.Duration
}

// Registry applies the session lifecycle rules over a Store.
type Registry struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// NewRegistry creates a Registry. Zero config fields fall back to 30 days
// lifetime and a 24 hour refresh window.
func NewRegistry(store Store, cfg Config) *Registry {
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = 30 * 24 * time.Hour
	}
	if cfg.RefreshWindow <= 0 {
		cfg.RefreshWindow = 24 * time.Hour
	}
	if cfg.Extension <= 0 {
		cfg.Extension = cfg.Lifetime
	}
	return &Registry{store: store, cfg: cfg, now: time.Now}
}

// Create opens a new session for the user with the given device metadata.
func (r *Registry) Create(ctx context.Context, userID string, device DeviceInfo) (*Session, error) {
	now := r.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Device:    device,
		CreatedAt: now,
		ExpiresAt: now.Add(r.cfg.Lifetime),
	}
	if err := r.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Active returns the user's live sessions, newest first, marking the one
// matching currentSessionID as current.
func (r *Registry) Active(ctx context.Context, userID, currentSessionID string) ([]*Session, error) {
	sessions, err := r.store.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		s.Current = s.ID == currentSessionID
	}
	return sessions, nil
}

// ByID returns one session of the user. A session owned by someone else
// returns ErrForbidden rather than ErrNotFound.
func (r *Registry) ByID(ctx context.Context, userID, sessionID, currentSessionID string) (*Session, error) {
	s, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, ErrForbidden
	}
	s.Current = s.ID == currentSessionID
	return s, nil
}

// Get returns a session by id with no ownership check. Used by the refresh
// flow, where the session id comes from a verified token, not the caller.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Session, error) {
	return r.store.Get(ctx, sessionID)
}

// Revoke soft-revokes one session of the user. The caller's own session is
// refused: logout is the dedicated path for that.
func (r *Registry) Revoke(ctx context.Context, userID, sessionID, requesterSessionID string) error {
	if sessionID == requesterSessionID {
		return ErrCurrentSession
	}
	s, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.UserID != userID {
		return ErrForbidden
	}
	return r.store.Revoke(ctx, userID, sessionID, r.now())
}

// Logout soft-revokes the caller's own session by id.
func (r *Registry) Logout(ctx context.Context, sessionID string) error {
	s, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	return r.store.Revoke(ctx, s.UserID, s.ID, r.now())
}

// RevokeAllExcept revokes every live session of the user except keepID.
// Password reset passes an empty keepID: all sessions die.
func (r *Registry) RevokeAllExcept(ctx context.Context, userID, keepID string) error {
	return r.store.RevokeAllExcept(ctx, userID, keepID, r.now())
}

// ExtendIfNearExpiry advances the session's expiry by the configured
// extension when it is within the refresh window, and reports whether it
// did. The store refuses the extension if a concurrent revoke landed first.
func (r *Registry) ExtendIfNearExpiry(ctx context.Context, s *Session) (bool, error) {
	now := r.now()
	if s.ExpiresAt.Sub(now) > r.cfg.RefreshWindow {
		return false, nil
	}
	newExpiry := now.Add(r.cfg.Extension)
	ok, err := r.store.Extend(ctx, s.ID, newExpiry)
	if err != nil {
		return false, err
	}
	if ok {
		s.ExpiresAt = newExpiry
	}
	return ok, nil
}

// History returns the user's revoked sessions, most recently revoked first.
func (r *Registry) History(ctx context.Context, userID string) ([]*Session, error) {
	return r.store.ListRevoked(ctx, userID)
}

// ClearHistory hard-deletes the user's revoked sessions, sparing exceptID.
func (r *Registry) ClearHistory(ctx context.Context, userID, exceptID string) error {
	return r.store.DeleteRevoked(ctx, userID, exceptID)
}
