package secureauth

import (
	"testing"
	"time"
)

// Base32 encodings of the RFC 4226 / RFC 6238 reference secrets
// "1234567890..." truncated per algorithm.
const (
	rfcSecretSHA1   = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	rfcSecretSHA256 = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZA"
	rfcSecretSHA512 = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNA"
)

func rfcManager(algorithm string) *totpManager {
	return newTOTPManager(MFAConfig{
		Issuer:    "secureauth",
		Digits:    8,
		Period:    30,
		Algorithm: algorithm,
		Skew:      0,
	})
}

func TestTOTPVerifyVectorsSHA1(t *testing.T) {
	m := rfcManager("SHA1")
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}

	for _, tc := range cases {
		ok, err := m.VerifyCode(rfcSecretSHA1, tc.code, time.Unix(tc.ts, 0))
		if err != nil || !ok {
			t.Fatalf("SHA1 vector failed at t=%d, ok=%v err=%v", tc.ts, ok, err)
		}
	}
}

func TestTOTPVerifyVectorsSHA256(t *testing.T) {
	m := rfcManager("SHA256")
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "46119246"},
		{1111111109, "68084774"},
		{1111111111, "67062674"},
		{1234567890, "91819424"},
		{2000000000, "90698825"},
		{20000000000, "77737706"},
	}

	for _, tc := range cases {
		ok, err := m.VerifyCode(rfcSecretSHA256, tc.code, time.Unix(tc.ts, 0))
		if err != nil || !ok {
			t.Fatalf("SHA256 vector failed at t=%d, ok=%v err=%v", tc.ts, ok, err)
		}
	}
}

func TestTOTPVerifyVectorsSHA512(t *testing.T) {
	m := rfcManager("SHA512")
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "90693936"},
		{1111111109, "25091201"},
		{1111111111, "99943326"},
		{1234567890, "93441116"},
		{2000000000, "38618901"},
		{20000000000, "47863826"},
	}

	for _, tc := range cases {
		ok, err := m.VerifyCode(rfcSecretSHA512, tc.code, time.Unix(tc.ts, 0))
		if err != nil || !ok {
			t.Fatalf("SHA512 vector failed at t=%d, ok=%v err=%v", tc.ts, ok, err)
		}
	}
}

func TestTOTPSkewWindowIsExact(t *testing.T) {
	cfg := MFAConfig{
		Issuer:    "secureauth",
		Digits:    6,
		Period:    30,
		Algorithm: "SHA1",
		Skew:      1,
	}
	m := newTOTPManager(cfg)
	now := time.Unix(1234567890, 0)
	base := now.Unix() / 30

	key, err := b32.DecodeString(rfcSecretSHA1)
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}

	for _, offset := range []int64{-1, 0, 1} {
		code, err := hotpCode(key, base+offset, 6, "SHA1")
		if err != nil {
			t.Fatalf("hotpCode: %v", err)
		}
		ok, err := m.VerifyCode(rfcSecretSHA1, code, now)
		if err != nil || !ok {
			t.Fatalf("offset %d: expected acceptance, ok=%v err=%v", offset, ok, err)
		}
	}

	for _, offset := range []int64{-2, 2} {
		code, err := hotpCode(key, base+offset, 6, "SHA1")
		if err != nil {
			t.Fatalf("hotpCode: %v", err)
		}
		ok, err := m.VerifyCode(rfcSecretSHA1, code, now)
		if err != nil {
			t.Fatalf("offset %d: %v", offset, err)
		}
		if ok {
			t.Fatalf("offset %d: code outside the skew window was accepted", offset)
		}
	}
}

func TestTOTPRejectsMalformedCodes(t *testing.T) {
	m := newTOTPManager(MFAConfig{Digits: 6, Period: 30, Algorithm: "SHA1", Skew: 1})
	now := time.Now()

	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
		ok, err := m.VerifyCode(rfcSecretSHA1, code, now)
		if err != nil {
			t.Fatalf("code %q: %v", code, err)
		}
		if ok {
			t.Fatalf("malformed code %q accepted", code)
		}
	}
}

func TestTOTPEnrollmentURI(t *testing.T) {
	m := newTOTPManager(MFAConfig{
		Issuer:    "secureauth",
		Digits:    6,
		Period:    30,
		Algorithm: "SHA1",
	})

	uri := m.EnrollmentURI(rfcSecretSHA1, "alice@example.com")
	want := "otpauth://totp/secureauth:alice@example.com?algorithm=SHA1&digits=6&issuer=secureauth&period=30&secret=" + rfcSecretSHA1
	if uri != want {
		t.Fatalf("uri mismatch:\n got %s\nwant %s", uri, want)
	}
}
