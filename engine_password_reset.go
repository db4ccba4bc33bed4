package secureauth

import (
	"context"
	"errors"
)

// ForgotPassword issues a password-reset code and emails the reset link.
// An unknown email returns ErrUserNotFound; issuance is capped per user
// inside the lookback window and the mailer is a hard dependency here.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	count, err := e.codes.CountRecent(ctx, user.ID, CodePasswordReset)
	if err != nil {
		return err
	}
	if count >= e.config.Verification.MaxAttempts {
		e.metricInc(MetricPasswordResetRateLimited)
		e.emitAudit(ctx, auditEventPasswordResetRateLimited, false, user.ID, "", ErrTooManyRequests, nil)
		return ErrTooManyRequests
	}

	code, err := e.codes.Issue(ctx, user.ID, CodePasswordReset)
	if err != nil {
		return err
	}

	if e.mailer == nil {
		return ErrMailDelivery
	}
	msg := resetPasswordTemplate(e.config.Mail.AppOrigin, code.Code, code.ExpiresAt)
	msg.To = user.Email
	if err := e.mailer.Send(ctx, msg); err != nil {
		e.metricInc(MetricMailFailure)
		e.emitAudit(ctx, auditEventMailFailure, false, user.ID, "", err, nil)
		return ErrMailDelivery
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, user.ID, "", nil, nil)

	return nil
}

// ResetPassword redeems a reset code, replaces the user's password hash, and
// revokes every session the user has. The device that performed the reset
// holds no session either: the user logs in again with the new password.
func (e *Engine) ResetPassword(ctx context.Context, code, newPassword, confirmPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	if len(newPassword) < e.config.Password.MinLength {
		return ErrPasswordPolicy
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	userID, err := e.codes.Consume(ctx, code, CodePasswordReset)
	if err != nil {
		if errors.Is(err, errVerificationInvalid) {
			e.metricInc(MetricPasswordResetFailure)
			e.emitAudit(ctx, auditEventPasswordResetFailure, false, "", "", ErrCodeInvalid, nil)
			return ErrCodeInvalid
		}
		return err
	}

	hash, err := e.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := e.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	if err := e.sessions.RevokeAllExcept(ctx, userID, ""); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordResetSuccess, true, userID, "", nil, nil)

	return nil
}
