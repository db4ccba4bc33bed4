package secureauth

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or half-built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidCredentials covers both unknown-email and wrong-password
	// login failures. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password provided")
	// ErrUserNotFound is returned when a user lookup by id or email misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned by Register when the email is taken.
	ErrEmailExists = errors.New("user already exists with this email")
	// ErrUnauthorized is returned for missing, invalid, or expired tokens and
	// for refresh attempts against dead sessions. Terminal: re-login.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPasswordPolicy is returned when a new password fails the length policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordMismatch is returned by Register when the confirmation does
	// not match the password.
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrCodeInvalid covers every verification-code failure: unknown,
	// expired, already consumed, wrong type. One message, no oracle.
	ErrCodeInvalid = errors.New("invalid or expired verification code")
	// ErrTooManyRequests is returned when code issuance hits the per-user
	// rate limit. Distinct from ErrCodeInvalid by design.
	ErrTooManyRequests = errors.New("too many requests, try again later")
	// ErrMailDelivery wraps a mailer failure on flows where the email is the
	// point of the operation (forgot-password, resend-verification).
	ErrMailDelivery = errors.New("failed to send email")
	// ErrSessionNotFound is returned when a session lookup misses.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionForbidden is returned when a session exists but belongs to a
	// different user than the requester.
	ErrSessionForbidden = errors.New("session does not belong to user")
	// ErrCurrentSession is returned when a caller tries to revoke the session
	// it is calling from. Logout is the dedicated path for that.
	ErrCurrentSession = errors.New("cannot revoke current session")
	// ErrSessionRequired is returned by Logout when no session id was
	// extracted from the access token. A request-shape error, not an auth one.
	ErrSessionRequired = errors.New("session id required")
	// ErrMFAAlreadyEnabled is returned when enrollment is requested or
	// confirmed on an account that already has MFA enabled.
	ErrMFAAlreadyEnabled = errors.New("mfa already enabled")
	// ErrMFANotEnrolled is returned when ConfirmMFAEnrollment runs without a
	// pending secret. An account can never become enabled secretless.
	ErrMFANotEnrolled = errors.New("mfa enrollment not started")
	// ErrMFANotEnabled is returned when an MFA operation requires an enabled
	// second factor and the account has none.
	ErrMFANotEnabled = errors.New("mfa not enabled")
	// ErrMFAInvalidCode is returned when a TOTP code fails verification.
	ErrMFAInvalidCode = errors.New("invalid mfa code")
	// ErrMFAChallengeInvalid is returned when a login challenge is unknown,
	// expired, or already consumed.
	ErrMFAChallengeInvalid = errors.New("mfa challenge invalid or expired")
	// ErrMFAAttemptsExceeded is returned when a login challenge burns through
	// its attempt budget. The challenge is destroyed.
	ErrMFAAttemptsExceeded = errors.New("mfa challenge attempts exceeded")
	// ErrStoreUnavailable wraps infrastructure failures from the code and
	// challenge stores.
	ErrStoreUnavailable = errors.New("verification backend unavailable")
)
