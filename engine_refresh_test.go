package secureauth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRefreshMintsAccessWithoutRotation(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.register(t, "alice@example.com", "correct-horse-battery")
	login := env.login(t, "alice@example.com", "correct-horse-battery")

	pair, err := env.engine.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("expected a new access token")
	}
	if pair.RefreshToken != "" {
		t.Fatal("a fresh session must not rotate its refresh token")
	}

	info, err := env.engine.ValidateAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("refreshed access token invalid: %v", err)
	}
	if info.SessionID != login.Session.ID {
		t.Fatal("refreshed token bound to a different session")
	}
}

func TestRefreshNearExpiryExtendsAndRotates(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.register(t, "alice@example.com", "correct-horse-battery")
	login := env.login(t, "alice@example.com", "correct-horse-battery")

	// Pull the session inside the rotation window.
	sess := *login.Session
	sess.ExpiresAt = time.Now().Add(time.Hour)
	if err := env.store.Save(context.Background(), &sess); err != nil {
		t.Fatalf("store save: %v", err)
	}

	pair, err := env.engine.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if pair.RefreshToken == "" {
		t.Fatal("near-expiry refresh must rotate the refresh token")
	}

	stored, err := env.store.Get(context.Background(), login.Session.ID)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if !stored.ExpiresAt.After(time.Now().Add(24 * time.Hour)) {
		t.Fatalf("session expiry was not extended: %v", stored.ExpiresAt)
	}

	// The rotated token works too.
	if _, err := env.engine.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("rotated refresh token rejected: %v", err)
	}
}

func TestRefreshExtensionFollowsRefreshLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.RefreshExpiry = "2d"
	env := newTestEnv(t, cfg)
	env.register(t, "alice@example.com", "correct-horse-battery")
	login := env.login(t, "alice@example.com", "correct-horse-battery")

	sess := *login.Session
	sess.ExpiresAt = time.Now().Add(time.Hour)
	if err := env.store.Save(context.Background(), &sess); err != nil {
		t.Fatalf("store save: %v", err)
	}

	if _, err := env.engine.Refresh(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	// The session is extended by the refresh-token lifetime, not the 30d
	// session lifetime, so the rotated token and the session expire
	// together.
	stored, err := env.store.Get(context.Background(), login.Session.ID)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	remaining := time.Until(stored.ExpiresAt)
	if remaining > 48*time.Hour || remaining < 47*time.Hour {
		t.Fatalf("session extended by %v, want about 48h", remaining)
	}
}

func TestRefreshRejectsRevokedSession(t *testing.T) {
	env := newTestEnv(t, testConfig())
	user := env.register(t, "alice@example.com", "correct-horse-battery")
	login := env.login(t, "alice@example.com", "correct-horse-battery")

	if err := env.engine.sessions.RevokeAllExcept(context.Background(), user.ID, ""); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	_, err := env.engine.Refresh(context.Background(), login.RefreshToken)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for revoked session, got %v", err)
	}
}

func TestRefreshRejectsGarbageAndWrongKind(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.register(t, "alice@example.com", "correct-horse-battery")
	login := env.login(t, "alice@example.com", "correct-horse-battery")

	if _, err := env.engine.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("garbage token: expected ErrUnauthorized, got %v", err)
	}

	// Access tokens are signed with a different secret and must not pass as
	// refresh tokens.
	if _, err := env.engine.Refresh(context.Background(), login.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("access-as-refresh: expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateAccessRejectsRefreshToken(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.register(t, "alice@example.com", "correct-horse-battery")
	login := env.login(t, "alice@example.com", "correct-horse-battery")

	if _, err := env.engine.ValidateAccess(login.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh-as-access: expected ErrUnauthorized, got %v", err)
	}
}
