package secureauth

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/secureauth-io/secureauth/internal"
)

const (
	mfaChallengeKeyPrefix     = "smc"
	mfaAttemptsKeyPrefix      = "sma"
	mfaChallengeRecordVersion = 1
)

var (
	errChallengeNotFound = errors.New("mfa challenge not found")
	errChallengeRetry    = errors.New("mfa challenge attempts exhausted")
)

type mfaChallengeRecord struct {
	UserID    string
	SessionID string
}

// mfaChallengeStore parks a just-logged-in-but-not-yet-MFA-verified session
// in Redis under a random single-use challenge id. The record binds tokens to
// the exact session the login call created.
type mfaChallengeStore struct {
	redis *redis.Client
	cfg   MFAConfig
}

func newMFAChallengeStore(redisClient *redis.Client, cfg MFAConfig) *mfaChallengeStore {
	return &mfaChallengeStore{redis: redisClient, cfg: cfg}
}

func (s *mfaChallengeStore) key(id string) string {
	return mfaChallengeKeyPrefix + ":" + id
}

func (s *mfaChallengeStore) attemptsKey(id string) string {
	return mfaAttemptsKeyPrefix + ":" + id
}

// Create stores a challenge and returns its id.
func (s *mfaChallengeStore) Create(ctx context.Context, userID, sessionID string) (string, error) {
	id, err := internal.NewChallengeID()
	if err != nil {
		return "", err
	}
	encoded, err := encodeMFAChallenge(&mfaChallengeRecord{UserID: userID, SessionID: sessionID})
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, s.key(id), encoded, s.cfg.ChallengeTTL).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return id, nil
}

// Get reads a challenge without consuming it. Missing or expired → errChallengeNotFound.
func (s *mfaChallengeStore) Get(ctx context.Context, id string) (*mfaChallengeRecord, error) {
	if err := internal.ParseChallengeID(id); err != nil {
		return nil, errChallengeNotFound
	}
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errChallengeNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	record, err := decodeMFAChallenge(data)
	if err != nil {
		return nil, errChallengeNotFound
	}
	return record, nil
}

// Fail counts one wrong code against the challenge. When the budget is
// spent the challenge is destroyed and errChallengeRetry is returned.
func (s *mfaChallengeStore) Fail(ctx context.Context, id string) error {
	key := s.attemptsKey(id)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.cfg.ChallengeTTL).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	if count >= int64(s.cfg.ChallengeAttempts) {
		if err := s.redis.Del(ctx, s.key(id), key).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return errChallengeRetry
	}
	return nil
}

// Consume destroys the challenge after a successful verification. A second
// redemption of the same id finds nothing.
func (s *mfaChallengeStore) Consume(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id), s.attemptsKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func encodeMFAChallenge(record *mfaChallengeRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(mfaChallengeRecordVersion)
	for _, field := range []string{record.UserID, record.SessionID} {
		if len(field) > 65535 {
			return nil, errors.New("mfa challenge field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}
	return buf.Bytes(), nil
}

func decodeMFAChallenge(data []byte) (*mfaChallengeRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != mfaChallengeRecordVersion {
		return nil, errors.New("invalid mfa challenge version")
	}

	fields := make([]string, 2)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		fields[i] = string(raw)
	}

	return &mfaChallengeRecord{UserID: fields[0], SessionID: fields[1]}, nil
}
