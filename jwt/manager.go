package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind selects which token type to sign or verify.
type Kind int

const (
	// KindAccess is the short-lived request-authorizing token.
	KindAccess Kind = iota
	// KindRefresh is the long-lived token used solely to mint new pairs.
	KindRefresh
)

// Audience is the fixed audience claim embedded in every token.
const Audience = "user"

// Config holds the codec's secrets and lifetimes. Both secrets are required
// and must differ; the TTLs must be positive.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Manager signs and verifies tokens. Immutable after NewManager.
type Manager struct {
	config Config
}

// Payload is the verified content of a token. SessionID is set for both
// kinds; UserID only for access tokens.
type Payload struct {
	UserID    string
	SessionID string
}

// Result is the tagged outcome of Verify. When Valid is false, Payload is
// zero and Err holds the opaque cause for audit logging only — callers must
// branch on Valid, never on Err.
type Result struct {
	Payload Payload
	Valid   bool
	Err     error
}

type accessClaims struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and builds a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwt: both token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("jwt: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwt: token TTLs must be positive")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: invalid leeway")
	}
	return &Manager{config: cfg}, nil
}

func (m *Manager) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    m.config.Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// SignAccess mints an access token for a user's session.
func (m *Manager) SignAccess(userID, sessionID string) (string, error) {
	if m == nil {
		return "", errors.New("jwt: manager not initialized")
	}
	claims := accessClaims{
		UserID:           userID,
		SessionID:        sessionID,
		RegisteredClaims: m.registered(m.config.AccessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.AccessSecret)
}

// SignRefresh mints a refresh token carrying only the session id.
func (m *Manager) SignRefresh(sessionID string) (string, error) {
	if m == nil {
		return "", errors.New("jwt: manager not initialized")
	}
	claims := refreshClaims{
		SessionID:        sessionID,
		RegisteredClaims: m.registered(m.config.RefreshTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.RefreshSecret)
}

// Verify checks a token against the secret for its kind. It never returns an
// error to the caller: every cryptographic, structural, audience, or expiry
// failure collapses into Result{Valid: false}.
func (m *Manager) Verify(token string, kind Kind) Result {
	if m == nil {
		return Result{Err: errors.New("jwt: manager not initialized")}
	}

	var (
		secret []byte
		claims jwt.Claims
	)
	switch kind {
	case KindAccess:
		secret = m.config.AccessSecret
		claims = &accessClaims{}
	case KindRefresh:
		secret = m.config.RefreshSecret
		claims = &refreshClaims{}
	default:
		return Result{Err: fmt.Errorf("jwt: unknown token kind %d", kind)}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("jwt: token invalid")
		}
		return Result{Err: err}
	}

	switch c := claims.(type) {
	case *accessClaims:
		if c.UserID == "" || c.SessionID == "" {
			return Result{Err: errors.New("jwt: access token missing subject claims")}
		}
		return Result{Payload: Payload{UserID: c.UserID, SessionID: c.SessionID}, Valid: true}
	case *refreshClaims:
		if c.SessionID == "" {
			return Result{Err: errors.New("jwt: refresh token missing session claim")}
		}
		return Result{Payload: Payload{SessionID: c.SessionID}, Valid: true}
	}
	return Result{Err: errors.New("jwt: unreachable claim type")}
}
