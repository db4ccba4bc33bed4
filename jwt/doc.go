// Package jwt signs and verifies the engine's two bearer-token kinds. Access
// tokens carry the user and session ids; refresh tokens carry the session id
// only. Each kind signs against its own secret, so a refresh token can never
// pass as an access token or vice versa.
//
// Verify is soft-fail: it runs on every authenticated request, and malformed
// or expired client input is an expected outcome, not an exception. Callers
// branch on [Result.Valid]; the underlying cause is retained only for audit.
package jwt
