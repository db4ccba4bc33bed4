package secureauth

import (
	"context"
	"time"
)

// BeginMFAEnrollment generates (or re-serves) the user's pending TOTP secret
// and the otpauth:// URI to render as a QR code. Calling it again before
// confirmation returns the same secret, so an interrupted enrollment can be
// resumed without invalidating an authenticator the user already scanned.
func (e *Engine) BeginMFAEnrollment(ctx context.Context, userID string) (*MFAEnrollment, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MFA.Enabled {
		return nil, ErrMFAAlreadyEnabled
	}

	secret := user.MFA.Secret
	if secret == "" {
		secret, err = e.totp.GenerateSecret()
		if err != nil {
			return nil, err
		}
		if err := e.users.UpdateMFA(ctx, userID, MFASettings{Secret: secret}); err != nil {
			return nil, err
		}
		e.metricInc(MetricMFAEnrollStarted)
		e.emitAudit(ctx, auditEventMFAEnrollStarted, true, userID, "", nil, nil)
	}

	return &MFAEnrollment{
		Secret:        secret,
		EnrollmentURI: e.totp.EnrollmentURI(secret, user.Email),
	}, nil
}

// ConfirmMFAEnrollment proves the user's authenticator produces correct
// codes and flips MFA on. Every other session of the user is revoked at that
// moment: devices logged in before the second factor existed do not get to
// keep their access. A wrong code leaves the pending secret in place for
// another attempt.
func (e *Engine) ConfirmMFAEnrollment(ctx context.Context, userID, code, currentSessionID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.MFA.Enabled {
		return ErrMFAAlreadyEnabled
	}
	if user.MFA.Secret == "" {
		return ErrMFANotEnrolled
	}

	ok, err := e.totp.VerifyCode(user.MFA.Secret, code, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrMFAInvalidCode
	}

	if err := e.users.UpdateMFA(ctx, userID, MFASettings{Enabled: true, Secret: user.MFA.Secret}); err != nil {
		return err
	}

	if err := e.sessions.RevokeAllExcept(ctx, userID, currentSessionID); err != nil {
		return err
	}

	e.metricInc(MetricMFAEnabled)
	e.emitAudit(ctx, auditEventMFAEnabled, true, userID, currentSessionID, nil, nil)

	return nil
}

// RevokeMFA turns MFA off and discards the secret. Safe to call whatever
// state the user is in: disabled stays disabled, a pending enrollment is
// abandoned.
func (e *Engine) RevokeMFA(ctx context.Context, userID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.MFA.Enabled && user.MFA.Secret == "" {
		return nil
	}

	if err := e.users.UpdateMFA(ctx, userID, MFASettings{}); err != nil {
		return err
	}

	if user.MFA.Enabled {
		e.metricInc(MetricMFARevoked)
		e.emitAudit(ctx, auditEventMFARevoked, true, userID, "", nil, nil)
	}

	return nil
}
