// Package password hashes and verifies user passwords with argon2id, encoded
// in the PHC string format. Hashing is always an explicit step in the flows
// that change a password — never a persistence-layer hook — so a password is
// hashed exactly once per change and never on unrelated field updates.
package password
