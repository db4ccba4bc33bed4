package secureauth

import (
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/secureauth-io/secureauth/jwt"
	"github.com/secureauth-io/secureauth/password"
	"github.com/secureauth-io/secureauth/session"
)

// Builder assembles an Engine. Construction is allocation-only; no I/O
// happens until Build, and the resulting Engine is immutable.
type Builder struct {
	config Config
	redis  *redis.Client

	userStore    UserStore
	sessionStore session.Store
	mailer       Mailer
	auditSink    AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing verification codes, issuance
// counters, and MFA login challenges.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the credential-store collaborator.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

// WithSessionStore sets the session persistence backend.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.sessionStore = store
	return b
}

// WithMailer sets the outbound mail collaborator. Optional; without it the
// engine composes emails and discards them, which registration tolerates but
// forgot-password reports as ErrMailDelivery.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithAuditSink sets the audit event receiver.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires every component once, and returns
// the ready Engine. A Builder can build at most one Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.userStore == nil {
		return nil, errors.New("user store required")
	}
	if b.sessionStore == nil {
		return nil, errors.New("session store required")
	}

	// Expiry strings were validated above; ParseExpiry cannot fail here.
	accessTTL, _ := ParseExpiry(cfg.JWT.AccessExpiry)
	refreshTTL, _ := ParseExpiry(cfg.JWT.RefreshExpiry)

	codec, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cloneBytes(cfg.JWT.AccessSecret),
		RefreshSecret: cloneBytes(cfg.JWT.RefreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.New(cfg.Password.Config)
	if err != nil {
		return nil, err
	}

	// A throwaway hash verified against on unknown-email logins, so the
	// unknown-email and wrong-password paths cost the same.
	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:        cfg,
		users:         b.userStore,
		mailer:        b.mailer,
		sessions: session.NewRegistry(b.sessionStore, session.Config{
			Lifetime:      cfg.Session.Lifetime,
			RefreshWindow: cfg.Session.RefreshWindow,
			// Extension tracks the refresh-token lifetime, not the
			// session lifetime: a rotated token and the session it
			// belongs to must expire together.
			Extension: refreshTTL,
		}),
		codec:         codec,
		codes:         newVerificationStore(b.redis, cfg.Verification),
		mfaChallenges: newMFAChallengeStore(b.redis, cfg.MFA),
		totp:          newTOTPManager(cfg.MFA),
		passwords:     hasher,
		decoyHash:     decoy,
		audit:         newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:       NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}
