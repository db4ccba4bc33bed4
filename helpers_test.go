package secureauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/secureauth-io/secureauth/session"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret-0123456789")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret-012345678")
	cfg.Mail.AppOrigin = "https://app.example.com"
	// Cheap argon2 parameters keep the suite fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

// memUsers is an in-memory UserStore for engine tests.
type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*User
	byEmail map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) SetEmailVerified(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.EmailVerified = true
	return nil
}

func (m *memUsers) UpdateMFA(_ context.Context, userID string, mfa MFASettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.MFA = mfa
	return nil
}

// captureMailer records sent emails and can be told to fail.
type captureMailer struct {
	mu   sync.Mutex
	sent []Email
	fail bool
}

func (c *captureMailer) Send(_ context.Context, email Email) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("smtp unavailable")
	}
	c.sent = append(c.sent, email)
	return nil
}

func (c *captureMailer) last(t *testing.T) Email {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		t.Fatal("no email was sent")
	}
	return c.sent[len(c.sent)-1]
}

func (c *captureMailer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type testEnv struct {
	engine *Engine
	users  *memUsers
	mailer *captureMailer
	store  *session.MemoryStore
	redis  *miniredis.Miniredis
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	users := newMemUsers()
	mailer := &captureMailer{}
	store := session.NewMemoryStore()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(users).
		WithSessionStore(store).
		WithMailer(mailer).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{engine: engine, users: users, mailer: mailer, store: store, redis: mr}
}

func (env *testEnv) register(t *testing.T, email, password string) *User {
	t.Helper()

	user, err := env.engine.Register(context.Background(), RegisterRequest{
		Email:           email,
		Username:        email,
		Password:        password,
		ConfirmPassword: password,
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		IP:              "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return user
}

func (env *testEnv) login(t *testing.T, email, password string) *LoginResult {
	t.Helper()

	res, err := env.engine.Login(context.Background(), LoginRequest{
		Email:     email,
		Password:  password,
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
		IP:        "198.51.100.4",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return res
}

// totpNow generates the current valid code for a base32 secret.
func totpNow(t *testing.T, cfg MFAConfig, secret string) string {
	t.Helper()

	key, err := b32.DecodeString(secret)
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}
	code, err := hotpCode(key, time.Now().Unix()/int64(cfg.Period), cfg.Digits, cfg.Algorithm)
	if err != nil {
		t.Fatalf("hotpCode: %v", err)
	}
	return code
}
