package secureauth

import (
	"context"
	"time"
)

const (
	auditEventRegisterSuccess          = "register_success"
	auditEventRegisterDuplicate        = "register_duplicate"
	auditEventRegisterFailure          = "register_failure"
	auditEventLoginSuccess             = "login_success"
	auditEventLoginFailure             = "login_failure"
	auditEventLoginMFARequired         = "login_mfa_required"
	auditEventMFALoginSuccess          = "mfa_login_success"
	auditEventMFALoginFailure          = "mfa_login_failure"
	auditEventRefreshSuccess           = "refresh_success"
	auditEventRefreshRotated           = "refresh_rotated"
	auditEventRefreshInvalid           = "refresh_invalid"
	auditEventEmailVerified            = "email_verified"
	auditEventEmailVerifyFailure       = "email_verify_failure"
	auditEventVerificationIssued       = "verification_code_issued"
	auditEventPasswordResetRequest     = "password_reset_request"
	auditEventPasswordResetSuccess     = "password_reset_success"
	auditEventPasswordResetFailure     = "password_reset_failure"
	auditEventPasswordResetRateLimited = "password_reset_rate_limited"
	auditEventSessionRevoked           = "session_revoked"
	auditEventLogout                   = "logout"
	auditEventLogoutAll                = "logout_all"
	auditEventMFAEnrollStarted         = "mfa_enroll_started"
	auditEventMFAEnabled               = "mfa_enabled"
	auditEventMFARevoked               = "mfa_revoked"
	auditEventMailFailure              = "mail_failure"
)

// emitAudit builds and dispatches one event. The metadata callback is only
// invoked when auditing is enabled, keeping map allocation off the hot path.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, sessionID string, cause error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
