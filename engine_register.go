package secureauth

import (
	"context"
	"errors"
	"log"
)

// Register creates a user with a freshly hashed password, issues an
// email-verification code, and dispatches the verification email.
//
// Mail delivery is best-effort here: a mailer failure is audited and logged
// but does not fail the registration, because the user row already exists and
// ResendVerification can recover. The code-issuance step is likewise
// tolerated: on failure the outcome is "user exists, no code issued", which
// ResendVerification also repairs. Duplicate email returns ErrEmailExists,
// which makes a retried registration safe.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.IP != "" {
		ctx = WithClientIP(ctx, req.IP)
	}

	if len(req.Password) < e.config.Password.MinLength {
		return nil, ErrPasswordPolicy
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if _, err := e.users.GetByEmail(ctx, req.Email); err == nil {
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", "", ErrEmailExists, func() map[string]string {
			return map[string]string{"email": req.Email}
		})
		return nil, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := e.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := newUser(req.Email, req.Username, hash)
	if err := e.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", "", err, nil)
			return nil, ErrEmailExists
		}
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", "", err, nil)
		return nil, err
	}

	code, err := e.codes.Issue(ctx, user.ID, CodeEmailVerification)
	if err != nil {
		// User exists but holds no code; ResendVerification recovers.
		log.Print("secureauth: verification code issuance failed after registration")
		e.emitAudit(ctx, auditEventRegisterSuccess, true, user.ID, "", err, func() map[string]string {
			return map[string]string{"verification_code": "not_issued"}
		})
		return user.Redacted(), nil
	}
	e.metricInc(MetricEmailVerificationIssued)
	e.emitAudit(ctx, auditEventVerificationIssued, true, user.ID, "", nil, nil)

	e.sendMailBestEffort(ctx, user, verifyEmailTemplate(e.config.Mail.AppOrigin, code.Code))

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, user.ID, "", nil, nil)

	return user.Redacted(), nil
}

// sendMailBestEffort delivers an email without failing the calling flow.
func (e *Engine) sendMailBestEffort(ctx context.Context, user *User, email Email) {
	if e.mailer == nil {
		return
	}
	email.To = user.Email
	if err := e.mailer.Send(ctx, email); err != nil {
		log.Print("secureauth: mail delivery failed")
		e.metricInc(MetricMailFailure)
		e.emitAudit(ctx, auditEventMailFailure, false, user.ID, "", err, func() map[string]string {
			return map[string]string{"subject": email.Subject}
		})
	}
}
