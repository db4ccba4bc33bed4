package secureauth

import (
	"context"
	"errors"
	"time"

	"github.com/secureauth-io/secureauth/session"
)

// Login verifies credentials and opens a session. Unknown email and wrong
// password are indistinguishable to the caller: both return
// ErrInvalidCredentials, and the password hasher runs even for unknown
// emails so the two paths cost the same.
//
// When the user has MFA enabled the result carries MFARequired and an
// MFAChallenge instead of tokens; VerifyMFALogin completes the pair.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.IP != "" {
		ctx = WithClientIP(ctx, req.IP)
	}

	user, err := e.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a hash verification so the timing matches the
			// wrong-password path.
			_, _ = e.passwords.Verify(req.Password, e.decoyHash)
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := e.passwords.Verify(req.Password, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, "", ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	device := e.deviceFromRequest(ctx, req.UserAgent, req.IP)
	sess, err := e.sessions.Create(ctx, user.ID, device)
	if err != nil {
		return nil, err
	}

	if user.MFA.Enabled {
		challenge, err := e.mfaChallenges.Create(ctx, user.ID, sess.ID)
		if err != nil {
			return nil, err
		}
		e.metricInc(MetricLoginMFARequired)
		e.emitAudit(ctx, auditEventLoginMFARequired, true, user.ID, sess.ID, nil, nil)
		return &LoginResult{
			User:         user.Redacted(),
			MFARequired:  true,
			MFAChallenge: challenge,
			Session:      sess,
		}, nil
	}

	pair, err := e.mintPair(user.ID, sess.ID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, sess.ID, nil, func() map[string]string {
		return map[string]string{"browser": device.Browser, "os": device.OS}
	})

	return &LoginResult{
		User:         user.Redacted(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Session:      sess,
	}, nil
}

// VerifyMFALogin completes a login parked behind an MFA challenge. The
// challenge is single-use: a correct code consumes it, and exhausting the
// attempt budget destroys it. On success the tokens are bound to the exact
// session the original Login call created.
func (e *Engine) VerifyMFALogin(ctx context.Context, challengeID, code string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	record, err := e.mfaChallenges.Get(ctx, challengeID)
	if err != nil {
		if errors.Is(err, errChallengeNotFound) {
			e.metricInc(MetricMFALoginFailure)
			e.emitAudit(ctx, auditEventMFALoginFailure, false, "", "", ErrMFAChallengeInvalid, nil)
			return nil, ErrMFAChallengeInvalid
		}
		return nil, err
	}

	user, err := e.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrMFAChallengeInvalid
		}
		return nil, err
	}
	if !user.MFA.Enabled || user.MFA.Secret == "" {
		// MFA was revoked between login and verification.
		_ = e.mfaChallenges.Consume(ctx, challengeID)
		return nil, ErrMFAChallengeInvalid
	}

	ok, err := e.totp.VerifyCode(user.MFA.Secret, code, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		e.metricInc(MetricMFALoginFailure)
		e.emitAudit(ctx, auditEventMFALoginFailure, false, user.ID, record.SessionID, ErrMFAInvalidCode, nil)
		if err := e.mfaChallenges.Fail(ctx, challengeID); err != nil {
			if errors.Is(err, errChallengeRetry) {
				return nil, ErrMFAAttemptsExceeded
			}
			return nil, err
		}
		return nil, ErrMFAInvalidCode
	}

	if err := e.mfaChallenges.Consume(ctx, challengeID); err != nil {
		return nil, err
	}

	// The session may have been revoked while the challenge was pending; a
	// revoked or expired session must never produce tokens.
	sess, err := e.sessions.Get(ctx, record.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if sess.Revoked() || sess.Expired(time.Now()) {
		return nil, ErrUnauthorized
	}

	pair, err := e.mintPair(user.ID, sess.ID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricMFALoginSuccess)
	e.emitAudit(ctx, auditEventMFALoginSuccess, true, user.ID, sess.ID, nil, nil)

	return &LoginResult{
		User:         user.Redacted(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Session:      sess,
	}, nil
}

// mintPair signs a fresh access and refresh token for the session.
func (e *Engine) mintPair(userID, sessionID string) (TokenPair, error) {
	access, err := e.codec.SignAccess(userID, sessionID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.codec.SignRefresh(sessionID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
