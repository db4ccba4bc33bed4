package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const verificationCodeLength = 25

// NewVerificationCode returns an unguessable 25-character code. Codes are
// derived from a v4 UUID with the dashes stripped, so they carry no sequence
// information and are unique per store.
func NewVerificationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:verificationCodeLength]
}

// NewChallengeID returns a 128-bit random id in compact base64url form, used
// for single-use MFA login challenges.
func NewChallengeID() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// ParseChallengeID validates the shape of a client-supplied challenge id.
func ParseChallengeID(id string) error {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return err
	}
	if len(raw) != 16 {
		return errors.New("invalid challenge id size")
	}
	return nil
}
