package secureauth

import (
	"context"
	"errors"

	"github.com/secureauth-io/secureauth/session"
)

func mapSessionErr(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return ErrSessionNotFound
	case errors.Is(err, session.ErrForbidden):
		return ErrSessionForbidden
	case errors.Is(err, session.ErrCurrentSession):
		return ErrCurrentSession
	}
	return err
}

// Sessions lists the user's live sessions, newest first, with the caller's
// own session flagged as current.
func (e *Engine) Sessions(ctx context.Context, userID, currentSessionID string) ([]*session.Session, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	sessions, err := e.sessions.Active(ctx, userID, currentSessionID)
	if err != nil {
		return nil, mapSessionErr(err)
	}
	return sessions, nil
}

// SessionByID returns one of the user's sessions. A session belonging to a
// different user comes back as ErrSessionForbidden, not ErrSessionNotFound.
func (e *Engine) SessionByID(ctx context.Context, userID, sessionID, currentSessionID string) (*session.Session, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	s, err := e.sessions.ByID(ctx, userID, sessionID, currentSessionID)
	if err != nil {
		return nil, mapSessionErr(err)
	}
	return s, nil
}

// RevokeSession soft-revokes one of the user's other sessions. Revoking the
// caller's own session is refused with ErrCurrentSession; Logout is the path
// for that.
func (e *Engine) RevokeSession(ctx context.Context, userID, sessionID, currentSessionID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if err := e.sessions.Revoke(ctx, userID, sessionID, currentSessionID); err != nil {
		return mapSessionErr(err)
	}
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditEventSessionRevoked, true, userID, sessionID, nil, nil)
	return nil
}

// Logout soft-revokes the caller's own session. The session id comes from
// the verified access token; an empty id means the caller never presented
// one and is rejected with ErrSessionRequired.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if sessionID == "" {
		return ErrSessionRequired
	}
	if err := e.sessions.Logout(ctx, sessionID); err != nil {
		return mapSessionErr(err)
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", sessionID, nil, nil)
	return nil
}

// LogoutAll revokes every live session of the user except the caller's own.
func (e *Engine) LogoutAll(ctx context.Context, userID, currentSessionID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if currentSessionID == "" {
		return ErrSessionRequired
	}
	if err := e.sessions.RevokeAllExcept(ctx, userID, currentSessionID); err != nil {
		return mapSessionErr(err)
	}
	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, userID, currentSessionID, nil, nil)
	return nil
}

// SessionHistory returns the user's revoked sessions, most recently revoked
// first.
func (e *Engine) SessionHistory(ctx context.Context, userID string) ([]*session.Session, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	sessions, err := e.sessions.History(ctx, userID)
	if err != nil {
		return nil, mapSessionErr(err)
	}
	return sessions, nil
}

// ClearSessionHistory hard-deletes the user's revoked sessions.
func (e *Engine) ClearSessionHistory(ctx context.Context, userID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if err := e.sessions.ClearHistory(ctx, userID, ""); err != nil {
		return mapSessionErr(err)
	}
	return nil
}
