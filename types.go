package secureauth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/secureauth-io/secureauth/session"
)

// MFASettings is the second-factor state embedded in a User. The legal
// states are Disabled (no secret), PendingEnrollment (secret, not enabled)
// and Enabled (secret and flag). Enabled with an empty secret is illegal and
// the engine refuses to produce it.
type MFASettings struct {
	Enabled bool
	Secret  string
}

// Pending reports whether enrollment has started but not been confirmed.
func (m MFASettings) Pending() bool {
	return !m.Enabled && m.Secret != ""
}

// User is the identity record owned by the host's credential store.
type User struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  string
	EmailVerified bool
	MFA           MFASettings
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func newUser(email, username, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Redacted returns a copy safe for any external representation: the password
// hash and the MFA secret are stripped. Every user value the engine returns
// has passed through this.
func (u *User) Redacted() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	cp.MFA.Secret = ""
	return &cp
}

// UserStore is the credential-store collaborator the host application must
// implement. Email matching is exact and case-sensitive; hosts wanting
// case-insensitive uniqueness normalize before calling.
type UserStore interface {
	// GetByEmail returns the user with the given email or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID returns the user with the given id or ErrUserNotFound.
	GetByID(ctx context.Context, id string) (*User, error)
	// Create persists a new user. A duplicate email returns ErrEmailExists.
	Create(ctx context.Context, u *User) error
	// UpdatePasswordHash replaces the stored hash. It must not touch any
	// other field.
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	// SetEmailVerified marks the user's email as verified.
	SetEmailVerified(ctx context.Context, userID string) error
	// UpdateMFA replaces the user's MFA settings in one write.
	UpdateMFA(ctx context.Context, userID string, mfa MFASettings) error
}

// Email is an outbound message handed to the Mailer collaborator.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers outbound email. The engine treats delivery as best-effort
// on registration and as a hard dependency on forgot-password and
// resend-verification; see the flow documentation.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// CodeType distinguishes the two verification-code kinds.
type CodeType uint8

const (
	// CodeEmailVerification proves control of an email address.
	CodeEmailVerification CodeType = iota + 1
	// CodePasswordReset authorizes a password reset.
	CodePasswordReset
)

// VerificationCode is the issued single-use secret. The plaintext Code is
// returned once at issuance and only its hash is stored.
type VerificationCode struct {
	ID        string
	UserID    string
	Code      string
	Type      CodeType
	ExpiresAt time.Time
}

// RegisterRequest is the input to Engine.Register.
type RegisterRequest struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
	UserAgent       string
	IP              string
}

// LoginRequest is the input to Engine.Login.
type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IP        string
}

// TokenPair is the minted bearer pair. RefreshToken is empty on a refresh
// call that did not rotate.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned by Login and VerifyMFALogin. When MFARequired is
// true no tokens are present and the client must complete the MFA step with
// MFAChallenge before a pair is issued.
type LoginResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
	MFARequired  bool
	MFAChallenge string
	Session      *session.Session
}

// MFAEnrollment is returned by BeginMFAEnrollment: the base32 secret plus
// the otpauth:// URI to render as a QR code.
type MFAEnrollment struct {
	Secret        string
	EnrollmentURI string
}

// AccessInfo is the verified content of an access token.
type AccessInfo struct {
	UserID    string
	SessionID string
}
