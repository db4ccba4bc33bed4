// Package secureauth implements the credential and session lifecycle of an
// authenticated web application: registration, login, JWT access/refresh token
// pairs with selective rotation, per-device session tracking with revocation
// history, single-use email-verification and password-reset codes, and
// optional TOTP multi-factor authentication.
//
// The package is the core engine only. HTTP routing, request validation,
// rendering, and actual email delivery live in the host application, which
// integrates through three collaborator interfaces: [UserStore] (credential
// persistence), [session.Store] (session persistence) and [Mailer] (outbound
// mail). Reference session stores ship under sessionstore/ (SQLite, Postgres)
// plus an in-memory store for tests and examples.
//
// # Architecture boundaries
//
// secureauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (User, LoginResult, TokenPair, AuditEvent, ...). Code
// generation, device parsing, and encoding details live under internal/ and
// are never exported.
//
// # Failure semantics
//
// Authentication failures are flattened on purpose: a wrong password and an
// unknown email both surface [ErrInvalidCredentials], and every
// verification-code failure (expired, unknown, wrong type) surfaces
// [ErrCodeInvalid]. Callers must not be able to distinguish the cases.
// Token verification never raises on malformed input; [jwt.Manager.Verify]
// returns a tagged result and callers branch on its Valid field.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
package secureauth
