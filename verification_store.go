package secureauth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/secureauth-io/secureauth/internal"
)

const (
	verificationKeyPrefix       = "svc"
	verificationCounterPrefix   = "svi"
	verificationRecordVersionV1 = 1
)

var errVerificationInvalid = errors.New("verification code invalid")

type verificationRecord struct {
	UserID    string
	Type      CodeType
	ExpiresAt int64
}

// verificationStore keeps issued codes in Redis, keyed by the SHA-256 of the
// code with TTL equal to the code's lifetime. Consumption is a scripted
// check-and-delete, so a code can match at most once even under concurrent
// redemption, and a code presented to the wrong flow is left intact.
type verificationStore struct {
	redis *redis.Client
	cfg   VerificationConfig
}

// The record's second byte is its code type. Deleting only on a type match
// means redemption against the wrong flow does not burn the code.
var consumeCodeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
	return false
end
if string.byte(v, 2) ~= tonumber(ARGV[1]) then
	return ""
end
redis.call("DEL", KEYS[1])
return v
`)

func newVerificationStore(redisClient *redis.Client, cfg VerificationConfig) *verificationStore {
	return &verificationStore{redis: redisClient, cfg: cfg}
}

func codeKey(code string) string {
	sum := sha256.Sum256([]byte(code))
	return verificationKeyPrefix + ":" + hex.EncodeToString(sum[:])
}

func counterKey(userID string, codeType CodeType) string {
	return fmt.Sprintf("%s:%d:%s", verificationCounterPrefix, codeType, userID)
}

func (s *verificationStore) ttlFor(codeType CodeType) time.Duration {
	if codeType == CodePasswordReset {
		return s.cfg.ResetTTL
	}
	return s.cfg.EmailTTL
}

// Issue creates a single-use code for the user and bumps the issuance
// counter used by the rate limit.
func (s *verificationStore) Issue(ctx context.Context, userID string, codeType CodeType) (*VerificationCode, error) {
	ttl := s.ttlFor(codeType)
	code := internal.NewVerificationCode()
	now := time.Now()

	record := &verificationRecord{
		UserID:    userID,
		Type:      codeType,
		ExpiresAt: now.Add(ttl).Unix(),
	}
	encoded, err := encodeVerificationRecord(record)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, codeKey(code), encoded, ttl).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	key := counterKey(userID, codeType)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.cfg.Lookback).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return &VerificationCode{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      code,
		Type:      codeType,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Consume redeems a code of the expected type and returns the owning user
// id. Unknown code, wrong type, and expired record all collapse into
// errVerificationInvalid. The record is destroyed only on a full type
// match, atomically with the read: a successful redemption can happen at
// most once, while a code sent to the wrong flow stays redeemable by the
// right one.
func (s *verificationStore) Consume(ctx context.Context, code string, expected CodeType) (string, error) {
	res, err := consumeCodeScript.Run(ctx, s.redis, []string{codeKey(code)}, int(expected)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errVerificationInvalid
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	raw, ok := res.(string)
	if !ok || raw == "" {
		return "", errVerificationInvalid
	}

	record, err := decodeVerificationRecord([]byte(raw))
	if err != nil {
		return "", errVerificationInvalid
	}
	if time.Now().Unix() > record.ExpiresAt {
		return "", errVerificationInvalid
	}
	return record.UserID, nil
}

// CountRecent returns how many codes of the type were issued to the user
// inside the lookback window.
func (s *verificationStore) CountRecent(ctx context.Context, userID string, codeType CodeType) (int, error) {
	count, err := s.redis.Get(ctx, counterKey(userID, codeType)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

func encodeVerificationRecord(record *verificationRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(verificationRecordVersionV1)
	buf.WriteByte(byte(record.Type))
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	if len(record.UserID) > 65535 {
		return nil, errors.New("verification record user id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.UserID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.UserID)

	return buf.Bytes(), nil
}

func decodeVerificationRecord(data []byte) (*verificationRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != verificationRecordVersionV1 {
		return nil, errors.New("invalid verification record version")
	}

	codeType, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &verificationRecord{Type: CodeType(codeType)}

	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var userIDLen uint16
	if err := binary.Read(reader, binary.BigEndian, &userIDLen); err != nil {
		return nil, err
	}
	userID := make([]byte, userIDLen)
	if _, err := io.ReadFull(reader, userID); err != nil {
		return nil, err
	}
	record.UserID = string(userID)

	return record, nil
}
