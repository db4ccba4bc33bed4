package secureauth

import (
	"context"
	"time"

	"github.com/secureauth-io/secureauth/internal"
	"github.com/secureauth-io/secureauth/jwt"
	"github.com/secureauth-io/secureauth/password"
	"github.com/secureauth-io/secureauth/session"
)

// Engine composes the credential store, session registry, token codec,
// verification codes, and MFA into the authentication flows. Configure it
// through [Builder]; all methods are safe for concurrent use afterwards.
type Engine struct {
	config        Config
	users         UserStore
	mailer        Mailer
	sessions      *session.Registry
	codec         *jwt.Manager
	codes         *verificationStore
	mfaChallenges *mfaChallengeStore
	totp          *totpManager
	passwords     *password.Hasher
	decoyHash     string
	audit         *auditDispatcher
	metrics       *Metrics
}

func (e *Engine) ready() bool {
	return e != nil && e.users != nil && e.sessions != nil && e.codec != nil &&
		e.codes != nil && e.totp != nil && e.passwords != nil
}

// Close drains and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a deep copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// ValidateAccess soft-verifies an access token and returns its subject. Any
// failure — malformed, tampered, expired, wrong kind — is ErrUnauthorized.
// Verification is stateless: it does not consult the session store, so a
// revoked session's access token stays valid until its own short expiry.
func (e *Engine) ValidateAccess(token string) (AccessInfo, error) {
	if e == nil || e.codec == nil {
		return AccessInfo{}, ErrEngineNotReady
	}
	res := e.codec.Verify(token, jwt.KindAccess)
	if !res.Valid {
		return AccessInfo{}, ErrUnauthorized
	}
	return AccessInfo{UserID: res.Payload.UserID, SessionID: res.Payload.SessionID}, nil
}

// ValidateAccessStrict verifies the token like ValidateAccess and then
// consults the session store: a revoked or expired session fails immediately
// instead of riding out the access token's remaining lifetime. Costs one
// store read per call.
func (e *Engine) ValidateAccessStrict(ctx context.Context, token string) (AccessInfo, error) {
	info, err := e.ValidateAccess(token)
	if err != nil {
		return AccessInfo{}, err
	}
	sess, err := e.sessions.Get(ctx, info.SessionID)
	if err != nil {
		return AccessInfo{}, ErrUnauthorized
	}
	if sess.Revoked() || sess.Expired(time.Now()) {
		return AccessInfo{}, ErrUnauthorized
	}
	return info, nil
}

// deviceFromRequest parses login metadata; the raw user agent and IP fall
// back to context values when the request left them empty.
func (e *Engine) deviceFromRequest(ctx context.Context, userAgent, ip string) session.DeviceInfo {
	if userAgent == "" {
		userAgent = userAgentFromContext(ctx)
	}
	if ip == "" {
		ip = clientIPFromContext(ctx)
	}
	parsed := parseDevice(userAgent)
	parsed.IP = ip
	return parsed
}

func parseDevice(rawUA string) session.DeviceInfo {
	d := internal.ParseUserAgent(rawUA)
	return session.DeviceInfo{
		UserAgent: rawUA,
		Browser:   d.Browser,
		OS:        d.OS,
		Device:    d.Device,
	}
}
