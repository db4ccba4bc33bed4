package secureauth

import (
	"context"
	"errors"
	"testing"
)

func mfaEnv(t *testing.T) (*testEnv, *User, string) {
	t.Helper()

	env := newTestEnv(t, testConfig())
	user := env.register(t, "alice@example.com", "correct-horse-battery")

	secret, err := env.engine.totp.GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	if err := env.users.UpdateMFA(context.Background(), user.ID, MFASettings{Enabled: true, Secret: secret}); err != nil {
		t.Fatalf("enable mfa: %v", err)
	}
	return env, user, secret
}

func TestVerifyMFALoginSuccess(t *testing.T) {
	env, user, secret := mfaEnv(t)

	login := env.login(t, "alice@example.com", "correct-horse-battery")
	code := totpNow(t, env.engine.config.MFA, secret)

	res, err := env.engine.VerifyMFALogin(context.Background(), login.MFAChallenge, code)
	if err != nil {
		t.Fatalf("mfa verification failed: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected a full token pair after MFA")
	}
	if res.Session.ID != login.Session.ID {
		t.Fatal("tokens must bind to the session the login created")
	}
	if res.User.ID != user.ID {
		t.Fatalf("wrong user in result: %s", res.User.ID)
	}
}

func TestVerifyMFALoginChallengeIsSingleUse(t *testing.T) {
	env, _, secret := mfaEnv(t)

	login := env.login(t, "alice@example.com", "correct-horse-battery")
	code := totpNow(t, env.engine.config.MFA, secret)

	if _, err := env.engine.VerifyMFALogin(context.Background(), login.MFAChallenge, code); err != nil {
		t.Fatalf("first verification failed: %v", err)
	}
	if _, err := env.engine.VerifyMFALogin(context.Background(), login.MFAChallenge, code); !errors.Is(err, ErrMFAChallengeInvalid) {
		t.Fatalf("expected ErrMFAChallengeInvalid on replay, got %v", err)
	}
}

func TestVerifyMFALoginWrongCodeThenBudgetExhausted(t *testing.T) {
	env, _, _ := mfaEnv(t)

	login := env.login(t, "alice@example.com", "correct-horse-battery")

	attempts := env.engine.config.MFA.ChallengeAttempts
	for i := 0; i < attempts-1; i++ {
		_, err := env.engine.VerifyMFALogin(context.Background(), login.MFAChallenge, "000000")
		if !errors.Is(err, ErrMFAInvalidCode) {
			t.Fatalf("attempt %d: expected ErrMFAInvalidCode, got %v", i+1, err)
		}
	}

	// The final failed attempt destroys the challenge.
	_, err := env.engine.VerifyMFALogin(context.Background(), login.MFAChallenge, "000000")
	if !errors.Is(err, ErrMFAAttemptsExceeded) {
		t.Fatalf("expected ErrMFAAttemptsExceeded, got %v", err)
	}
	_, err = env.engine.VerifyMFALogin(context.Background(), login.MFAChallenge, "000000")
	if !errors.Is(err, ErrMFAChallengeInvalid) {
		t.Fatalf("expected challenge to be gone, got %v", err)
	}
}

func TestVerifyMFALoginRefusesRevokedSession(t *testing.T) {
	env, user, secret := mfaEnv(t)

	login := env.login(t, "alice@example.com", "correct-horse-battery")

	// Revoke the parked session before the MFA step completes.
	if err := env.engine.sessions.RevokeAllExcept(context.Background(), user.ID, ""); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	code := totpNow(t, env.engine.config.MFA, secret)
	_, err := env.engine.VerifyMFALogin(context.Background(), login.MFAChallenge, code)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for revoked session, got %v", err)
	}
}

func TestVerifyMFALoginUnknownChallenge(t *testing.T) {
	env, _, _ := mfaEnv(t)

	_, err := env.engine.VerifyMFALogin(context.Background(), "bm90LWEtY2hhbGxlbmdl", "123456")
	if !errors.Is(err, ErrMFAChallengeInvalid) {
		t.Fatalf("expected ErrMFAChallengeInvalid, got %v", err)
	}
}
