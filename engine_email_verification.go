package secureauth

import (
	"context"
	"errors"
)

// VerifyEmail redeems an email-verification code and marks the owning user's
// email as verified. The code is destroyed on first match whatever happens
// afterwards, so a replay can never succeed.
func (e *Engine) VerifyEmail(ctx context.Context, code string) (*User, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	userID, err := e.codes.Consume(ctx, code, CodeEmailVerification)
	if err != nil {
		if errors.Is(err, errVerificationInvalid) {
			e.metricInc(MetricEmailVerificationFailure)
			e.emitAudit(ctx, auditEventEmailVerifyFailure, false, "", "", ErrCodeInvalid, nil)
			return nil, ErrCodeInvalid
		}
		return nil, err
	}

	if err := e.users.SetEmailVerified(ctx, userID); err != nil {
		return nil, err
	}

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricEmailVerificationSuccess)
	e.emitAudit(ctx, auditEventEmailVerified, true, userID, "", nil, nil)

	return user.Redacted(), nil
}

// ResendVerification issues a fresh verification code and emails it. Already
// verified accounts are a silent no-op. Unlike registration, mail delivery
// here is the whole point of the call, so a mailer failure is returned as
// ErrMailDelivery.
func (e *Engine) ResendVerification(ctx context.Context, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}

	count, err := e.codes.CountRecent(ctx, user.ID, CodeEmailVerification)
	if err != nil {
		return err
	}
	if count >= e.config.Verification.MaxAttempts {
		return ErrTooManyRequests
	}

	code, err := e.codes.Issue(ctx, user.ID, CodeEmailVerification)
	if err != nil {
		return err
	}
	e.metricInc(MetricEmailVerificationIssued)
	e.emitAudit(ctx, auditEventVerificationIssued, true, user.ID, "", nil, nil)

	if e.mailer == nil {
		return ErrMailDelivery
	}
	msg := verifyEmailTemplate(e.config.Mail.AppOrigin, code.Code)
	msg.To = user.Email
	if err := e.mailer.Send(ctx, msg); err != nil {
		e.metricInc(MetricMailFailure)
		e.emitAudit(ctx, auditEventMailFailure, false, user.ID, "", err, nil)
		return ErrMailDelivery
	}

	return nil
}
