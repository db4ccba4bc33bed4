// Command secureauth-loadtest measures engine throughput for the two hot
// paths: stateless access-token validation and session-store reads via
// strict validation. It seeds sessions through real logins against an
// in-memory user store and miniredis, so no external infrastructure is
// needed.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/secureauth-io/secureauth"
	"github.com/secureauth-io/secureauth/session"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 1000, "number of sessions to seed via login")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
		os.Exit(1)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := secureauth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("loadtest-access-secret-0000000")
	cfg.JWT.RefreshSecret = []byte("loadtest-refresh-secret-00000")
	// Fast hashing parameters: this tool measures token and store paths,
	// not argon2 throughput.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	users := newSeedUsers()
	engine, err := secureauth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(users).
		WithSessionStore(session.NewMemoryStore()).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	const password = "loadtest-password"
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	tokens := make([]string, *sessions)
	for i := 0; i < *sessions; i++ {
		email := fmt.Sprintf("user-%d@loadtest.local", i)
		if err := users.seed(email, password, engine); err != nil {
			fmt.Fprintf(os.Stderr, "seed user: %v\n", err)
			os.Exit(1)
		}
		res, err := engine.Login(ctx, secureauth.LoginRequest{
			Email:     email,
			Password:  password,
			UserAgent: "loadtest/1.0",
			IP:        "127.0.0.1",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed login: %v\n", err)
			os.Exit(1)
		}
		tokens[i] = res.AccessToken
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	validate := runPhase(*ops, *concurrency, tokens, func(_ context.Context, token string) error {
		_, err := engine.ValidateAccess(token)
		return err
	})
	strict := runPhase(*ops, *concurrency, tokens, func(ctx context.Context, token string) error {
		_, err := engine.ValidateAccessStrict(ctx, token)
		return err
	})

	fmt.Println("---- results ----")
	printStats("validate", validate)
	printStats("validate-strict", strict)
}

func runPhase(ops, concurrency int, tokens []string, op func(context.Context, string) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	ctx := context.Background()
	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				token := tokens[r.Intn(len(tokens))]
				t0 := time.Now()
				err := op(ctx, token)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// seedUsers is a minimal concurrent user store seeded ahead of the run.
type seedUsers struct {
	mu      sync.RWMutex
	byID    map[string]*secureauth.User
	byEmail map[string]string
}

func newSeedUsers() *seedUsers {
	return &seedUsers{
		byID:    make(map[string]*secureauth.User),
		byEmail: make(map[string]string),
	}
}

func (s *seedUsers) seed(email, password string, engine *secureauth.Engine) error {
	_, err := engine.Register(context.Background(), secureauth.RegisterRequest{
		Email:           email,
		Username:        email,
		Password:        password,
		ConfirmPassword: password,
	})
	return err
}

func (s *seedUsers) GetByEmail(_ context.Context, email string) (*secureauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, secureauth.ErrUserNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *seedUsers) GetByID(_ context.Context, id string) (*secureauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, secureauth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *seedUsers) Create(_ context.Context, u *secureauth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return secureauth.ErrEmailExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *seedUsers) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return secureauth.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *seedUsers) SetEmailVerified(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return secureauth.ErrUserNotFound
	}
	u.EmailVerified = true
	return nil
}

func (s *seedUsers) UpdateMFA(_ context.Context, userID string, mfa secureauth.MFASettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return secureauth.ErrUserNotFound
	}
	u.MFA = mfa
	return nil
}
