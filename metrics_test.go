package secureauth

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)
	if got := m.Get(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled metrics counted: %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", snap)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Get(MetricRefreshSuccess); got != 8000 {
		t.Fatalf("counter = %d, want 8000", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricRefreshSuccess] != 8000 {
		t.Fatalf("snapshot = %d, want 8000", snap.Counters[MetricRefreshSuccess])
	}
	if _, ok := snap.Counters[MetricLoginSuccess]; ok {
		t.Fatal("zero counters must not appear in snapshots")
	}
}

func TestEngineCountsFlows(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.register(t, "alice@example.com", "correct-horse-battery")
	env.login(t, "alice@example.com", "correct-horse-battery")

	_, err := env.engine.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password-here",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected login failure, got %v", err)
	}

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricRegisterSuccess] != 1 {
		t.Fatalf("register counter = %d", snap.Counters[MetricRegisterSuccess])
	}
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("login success counter = %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("login failure counter = %d", snap.Counters[MetricLoginFailure])
	}
}
