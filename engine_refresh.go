package secureauth

import (
	"context"
	"errors"
	"time"

	"github.com/secureauth-io/secureauth/jwt"
	"github.com/secureauth-io/secureauth/session"
)

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is rotated only when the session sat close enough to
// expiry to be extended; outside that window RefreshToken comes back empty
// and the client keeps using the one it has.
//
// Every failure mode the caller can trigger — bad token, unknown session,
// revoked, expired — collapses into ErrUnauthorized.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}

	res := e.codec.Verify(refreshToken, jwt.KindRefresh)
	if !res.Valid {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", res.Err, nil)
		return TokenPair{}, ErrUnauthorized
	}

	sess, err := e.sessions.Get(ctx, res.Payload.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, "", res.Payload.SessionID, err, nil)
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	if sess.Revoked() || sess.Expired(time.Now()) {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, sess.UserID, sess.ID, nil, nil)
		return TokenPair{}, ErrUnauthorized
	}

	extended, err := e.sessions.ExtendIfNearExpiry(ctx, sess)
	if err != nil {
		return TokenPair{}, err
	}

	// A revoke racing this refresh must win: re-read the session as the
	// last step before minting. The store already refuses to extend a
	// revoked row, but a revoke landing after the check above and before
	// signing would otherwise still get tokens.
	current, err := e.sessions.Get(ctx, sess.ID)
	if err != nil {
		return TokenPair{}, ErrUnauthorized
	}
	if current.Revoked() || current.Expired(time.Now()) {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, sess.UserID, sess.ID, nil, nil)
		return TokenPair{}, ErrUnauthorized
	}

	access, err := e.codec.SignAccess(sess.UserID, sess.ID)
	if err != nil {
		return TokenPair{}, err
	}

	pair := TokenPair{AccessToken: access}
	if extended {
		refresh, err := e.codec.SignRefresh(sess.ID)
		if err != nil {
			return TokenPair{}, err
		}
		pair.RefreshToken = refresh
		e.metricInc(MetricRefreshRotated)
		e.emitAudit(ctx, auditEventRefreshRotated, true, sess.UserID, sess.ID, nil, nil)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, sess.UserID, sess.ID, nil, nil)

	return pair, nil
}
