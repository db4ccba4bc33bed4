package secureauth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/secureauth-io/secureauth/password"
)

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the token codec. Expiries use the <integer><unit>
// grammar with unit m, h, or d ("15m", "1h", "30d"); an invalid string is a
// Validate-time fatal, never a runtime error.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessExpiry  string
	RefreshExpiry string
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures session lifetime and the rotation window.
type SessionConfig struct {
	// Lifetime is the expiry horizon of a new session.
	Lifetime time.Duration
	// RefreshWindow is how close to expiry a refresh call extends the
	// session and rotates the refresh token.
	RefreshWindow time.Duration
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig configures the single-use code registry.
type VerificationConfig struct {
	// EmailTTL is the lifetime of an email-verification code.
	EmailTTL time.Duration
	// ResetTTL is the lifetime of a password-reset code.
	ResetTTL time.Duration
	// MaxAttempts caps issuance per user and type inside Lookback.
	MaxAttempts int
	// Lookback is the rate-limit window.
	Lookback time.Duration
}

/*
====================================
MFA CONFIG
====================================
*/

// MFAConfig configures TOTP verification and the login challenge.
type MFAConfig struct {
	Issuer    string
	Digits    int
	Period    int
	Algorithm string
	// Skew is the tolerated time-step drift on either side. It is applied
	// exactly as configured, never silently wider.
	Skew int
	// ChallengeTTL bounds how long a pending MFA login stays redeemable.
	ChallengeTTL time.Duration
	// ChallengeAttempts bounds wrong-code retries per challenge.
	ChallengeAttempts int
}

/*
====================================
AMBIENT CONFIG
====================================
*/

// MailConfig carries what the engine needs to compose emails. Delivery
// itself belongs to the Mailer collaborator.
type MailConfig struct {
	// AppOrigin is the base URL embedded in verification and reset links.
	AppOrigin string
}

// AuditConfig configures the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// PasswordConfig wraps the argon2id cost parameters plus the engine-level
// minimum length policy.
type PasswordConfig struct {
	password.Config
	MinLength int
}

// Config is the engine's complete configuration. It is constructed once and
// injected through the Builder; nothing reads ambient global state.
type Config struct {
	JWT          JWTConfig
	Session      SessionConfig
	Verification VerificationConfig
	MFA          MFAConfig
	Password     PasswordConfig
	Mail         MailConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// DefaultConfig returns the documented defaults: 15m/30d tokens, 30-day
// sessions with a 1-day rotation window, 45m/1h code TTLs with a 2-per-3m
// issuance cap, and RFC 6238 TOTP at 6 digits, 30s period, skew 1.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessExpiry:  "15m",
			RefreshExpiry: "30d",
			Issuer:        "secureauth",
		},
		Session: SessionConfig{
			Lifetime:      30 * 24 * time.Hour,
			RefreshWindow: 24 * time.Hour,
		},
		Verification: VerificationConfig{
			EmailTTL:    45 * time.Minute,
			ResetTTL:    time.Hour,
			MaxAttempts: 2,
			Lookback:    3 * time.Minute,
		},
		MFA: MFAConfig{
			Issuer:            "secureauth",
			Digits:            6,
			Period:            30,
			Algorithm:         "SHA1",
			Skew:              1,
			ChallengeTTL:      5 * time.Minute,
			ChallengeAttempts: 5,
		},
		Password: PasswordConfig{
			Config:    password.DefaultConfig(),
			MinLength: 8,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

var expiryPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

// ParseExpiry converts an expiry string of the form <integer><unit> with
// unit m (minutes), h (hours) or d (days) into a duration.
func ParseExpiry(s string) (time.Duration, error) {
	m := expiryPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf(`invalid expiry %q: use "15m", "1h", or "2d"`, s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid expiry %q: value must be a positive integer", s)
	}
	switch m[2] {
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid expiry unit in %q", s)
}

// Validate checks the config for construction-time errors. Builder.Build
// calls it; a failed validation never produces a partially working engine.
func (c *Config) Validate() error {
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("config: JWT access and refresh secrets are required")
	}
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("config: JWT access and refresh secrets must differ")
	}
	if _, err := ParseExpiry(c.JWT.AccessExpiry); err != nil {
		return fmt.Errorf("config: access expiry: %w", err)
	}
	if _, err := ParseExpiry(c.JWT.RefreshExpiry); err != nil {
		return fmt.Errorf("config: refresh expiry: %w", err)
	}
	if c.Session.Lifetime <= 0 || c.Session.RefreshWindow <= 0 {
		return errors.New("config: session lifetime and refresh window must be positive")
	}
	if c.Session.RefreshWindow >= c.Session.Lifetime {
		return errors.New("config: refresh window must be shorter than session lifetime")
	}
	if c.Verification.EmailTTL <= 0 || c.Verification.ResetTTL <= 0 {
		return errors.New("config: verification TTLs must be positive")
	}
	if c.Verification.MaxAttempts < 1 {
		return errors.New("config: verification max attempts must be at least 1")
	}
	if c.Verification.Lookback <= 0 {
		return errors.New("config: verification lookback must be positive")
	}
	if c.MFA.Digits < 6 || c.MFA.Digits > 8 {
		return errors.New("config: mfa digits must be between 6 and 8")
	}
	if c.MFA.Period <= 0 {
		return errors.New("config: mfa period must be positive")
	}
	if c.MFA.Skew < 0 || c.MFA.Skew > 2 {
		return errors.New("config: mfa skew must be between 0 and 2")
	}
	if c.MFA.ChallengeTTL <= 0 || c.MFA.ChallengeAttempts < 1 {
		return errors.New("config: mfa challenge ttl and attempts must be positive")
	}
	if c.Password.MinLength < 6 {
		return errors.New("config: password minimum length must be at least 6")
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneConfig(c Config) Config {
	cp := c
	cp.JWT.AccessSecret = cloneBytes(c.JWT.AccessSecret)
	cp.JWT.RefreshSecret = cloneBytes(c.JWT.RefreshSecret)
	return cp
}
