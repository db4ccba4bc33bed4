// Package session implements the per-device session registry: creation,
// active listing with a computed "current" flag, individual and bulk soft
// revocation, near-expiry extension, and the revoked-session history view.
//
// The rules live in [Registry]; row persistence is behind [Store], so hosts
// can plug SQLite, Postgres, or the in-memory store without touching the
// lifecycle semantics. Revoked sessions are never returned as active and are
// only physically deleted by an explicit history cleanup.
package session
