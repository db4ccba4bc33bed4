// Package metrics provides allocation-free in-process counters for the
// engine. Counters are plain atomics; Snapshot deep-copies them for export.
package metrics

import "sync/atomic"

// MetricID identifies one counter.
type MetricID uint8

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterDuplicate
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginMFARequired
	MetricMFALoginSuccess
	MetricMFALoginFailure
	MetricRefreshSuccess
	MetricRefreshRotated
	MetricRefreshFailure
	MetricEmailVerificationIssued
	MetricEmailVerificationSuccess
	MetricEmailVerificationFailure
	MetricPasswordResetRequest
	MetricPasswordResetSuccess
	MetricPasswordResetFailure
	MetricPasswordResetRateLimited
	MetricSessionRevoked
	MetricLogout
	MetricLogoutAll
	MetricMFAEnrollStarted
	MetricMFAEnabled
	MetricMFARevoked
	MetricMailFailure

	MetricIDCount
)

// Config controls whether counting happens at all.
type Config struct {
	Enabled bool
}

// Metrics holds the counter array. A nil or disabled Metrics is a no-op.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all non-zero counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New creates a Metrics instance. When cfg.Enabled is false every operation
// is a no-op.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of one counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot deep-copies all counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := m.counters[id].Load(); v > 0 {
			snap.Counters[id] = v
		}
	}
	return snap
}
