package secureauth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegisterSuccessRedactsAndMails(t *testing.T) {
	env := newTestEnv(t, testConfig())

	user := env.register(t, "alice@example.com", "correct-horse-battery")

	if user.ID == "" {
		t.Fatal("expected user id to be assigned")
	}
	if user.PasswordHash != "" {
		t.Fatal("returned user leaked its password hash")
	}
	if user.MFA.Secret != "" {
		t.Fatal("returned user leaked an MFA secret")
	}
	if user.EmailVerified {
		t.Fatal("new user must start unverified")
	}

	mail := env.mailer.last(t)
	if mail.To != "alice@example.com" {
		t.Fatalf("mail went to %q", mail.To)
	}
	if !strings.Contains(mail.Text, "https://app.example.com/confirm-account?code=") {
		t.Fatalf("mail text missing confirmation link: %q", mail.Text)
	}

	stored, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("stored user lookup failed: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "correct-horse-battery" {
		t.Fatal("stored password must be a hash")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.register(t, "alice@example.com", "correct-horse-battery")

	_, err := env.engine.Register(context.Background(), RegisterRequest{
		Email:           "alice@example.com",
		Username:        "alice2",
		Password:        "another-password-1",
		ConfirmPassword: "another-password-1",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.engine.Register(context.Background(), RegisterRequest{
		Email:           "short@example.com",
		Username:        "short",
		Password:        "tiny",
		ConfirmPassword: "tiny",
	})
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.engine.Register(context.Background(), RegisterRequest{
		Email:           "bob@example.com",
		Username:        "bob",
		Password:        "correct-horse-battery",
		ConfirmPassword: "correct-horse-battary",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if _, err := env.users.GetByEmail(context.Background(), "bob@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatal("mismatched registration must not create a user")
	}
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.mailer.fail = true

	user, err := env.engine.Register(context.Background(), RegisterRequest{
		Email:           "carol@example.com",
		Username:        "carol",
		Password:        "correct-horse-battery",
		ConfirmPassword: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("registration must tolerate mail failure, got %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatal("expected a created user despite mail failure")
	}
}
