package secureauth

import internalmetrics "github.com/secureauth-io/secureauth/internal/metrics"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricRegisterSuccess          = internalmetrics.MetricRegisterSuccess
	MetricRegisterDuplicate        = internalmetrics.MetricRegisterDuplicate
	MetricLoginSuccess             = internalmetrics.MetricLoginSuccess
	MetricLoginFailure             = internalmetrics.MetricLoginFailure
	MetricLoginMFARequired         = internalmetrics.MetricLoginMFARequired
	MetricMFALoginSuccess          = internalmetrics.MetricMFALoginSuccess
	MetricMFALoginFailure          = internalmetrics.MetricMFALoginFailure
	MetricRefreshSuccess           = internalmetrics.MetricRefreshSuccess
	MetricRefreshRotated           = internalmetrics.MetricRefreshRotated
	MetricRefreshFailure           = internalmetrics.MetricRefreshFailure
	MetricEmailVerificationIssued  = internalmetrics.MetricEmailVerificationIssued
	MetricEmailVerificationSuccess = internalmetrics.MetricEmailVerificationSuccess
	MetricEmailVerificationFailure = internalmetrics.MetricEmailVerificationFailure
	MetricPasswordResetRequest     = internalmetrics.MetricPasswordResetRequest
	MetricPasswordResetSuccess     = internalmetrics.MetricPasswordResetSuccess
	MetricPasswordResetFailure     = internalmetrics.MetricPasswordResetFailure
	MetricPasswordResetRateLimited = internalmetrics.MetricPasswordResetRateLimited
	MetricSessionRevoked           = internalmetrics.MetricSessionRevoked
	MetricLogout                   = internalmetrics.MetricLogout
	MetricLogoutAll                = internalmetrics.MetricLogoutAll
	MetricMFAEnrollStarted         = internalmetrics.MetricMFAEnrollStarted
	MetricMFAEnabled               = internalmetrics.MetricMFAEnabled
	MetricMFARevoked               = internalmetrics.MetricMFARevoked
	MetricMailFailure              = internalmetrics.MetricMailFailure
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a Metrics instance configured by cfg. When Enabled is
// false all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
