// Package sqlite provides a session store backed by an embedded SQLite
// database, suitable for single-node deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/secureauth-io/secureauth/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	ip         TEXT NOT NULL DEFAULT '',
	browser    TEXT NOT NULL DEFAULT '',
	os         TEXT NOT NULL DEFAULT '',
	device     TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	revoked_at INTEGER
);
CREATE INDEX IF NOT EXISTS sessions_user_idx ON sessions (user_id);
`

// Store implements session.Store over a SQLite file or :memory: database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dsn and applies the
// schema. SQLite allows one writer at a time, so the pool is capped at a
// single connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, user_agent, ip, browser, os, device, created_at, expires_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		sess.ID, sess.UserID,
		sess.Device.UserAgent, sess.Device.IP, sess.Device.Browser, sess.Device.OS, sess.Device.Device,
		sess.CreatedAt.UnixMilli(), sess.ExpiresAt.UnixMilli(),
	)
	return err
}

func scanSession(row interface{ Scan(...any) error }) (*session.Session, error) {
	var (
		sess                 session.Session
		createdAt, expiresAt int64
		revokedAt            sql.NullInt64
	)
	err := row.Scan(
		&sess.ID, &sess.UserID,
		&sess.Device.UserAgent, &sess.Device.IP, &sess.Device.Browser, &sess.Device.OS, &sess.Device.Device,
		&createdAt, &expiresAt, &revokedAt,
	)
	if err != nil {
		return nil, err
	}
	sess.CreatedAt = time.UnixMilli(createdAt)
	sess.ExpiresAt = time.UnixMilli(expiresAt)
	if revokedAt.Valid {
		sess.RevokedAt = time.UnixMilli(revokedAt.Int64)
	}
	return &sess, nil
}

const selectColumns = `id, user_id, user_agent, ip, browser, os, device, created_at, expires_at, revoked_at`

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM sessions WHERE id = ?`, sessionID)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, session.ErrNotFound
	}
	return sess, err
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*session.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// ListActive implements session.Store.
func (s *Store) ListActive(ctx context.Context, userID string) ([]*session.Session, error) {
	return s.list(ctx,
		`SELECT `+selectColumns+` FROM sessions
		 WHERE user_id = ? AND revoked_at IS NULL
		 ORDER BY created_at DESC, id DESC`, userID)
}

// ListRevoked implements session.Store.
func (s *Store) ListRevoked(ctx context.Context, userID string) ([]*session.Session, error) {
	return s.list(ctx,
		`SELECT `+selectColumns+` FROM sessions
		 WHERE user_id = ? AND revoked_at IS NOT NULL
		 ORDER BY revoked_at DESC, id DESC`, userID)
}

// Revoke implements session.Store.
func (s *Store) Revoke(ctx context.Context, userID, sessionID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ?
		 WHERE id = ? AND user_id = ? AND revoked_at IS NULL`,
		at.UnixMilli(), sessionID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish already-revoked (no-op success) from missing.
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM sessions WHERE id = ? AND user_id = ?`, sessionID, userID).Scan(&one)
		if err == sql.ErrNoRows {
			return session.ErrNotFound
		}
		return err
	}
	return nil
}

// RevokeAllExcept implements session.Store.
func (s *Store) RevokeAllExcept(ctx context.Context, userID, keepID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ?
		 WHERE user_id = ? AND id <> ? AND revoked_at IS NULL`,
		at.UnixMilli(), userID, keepID)
	return err
}

// Extend implements session.Store. The revoked_at predicate in the UPDATE is
// what keeps a racing revoke ahead of a refresh.
func (s *Store) Extend(ctx context.Context, sessionID string, expiresAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET expires_at = ?
		 WHERE id = ? AND revoked_at IS NULL`,
		expiresAt.UnixMilli(), sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteRevoked implements session.Store.
func (s *Store) DeleteRevoked(ctx context.Context, userID, exceptID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions
		 WHERE user_id = ? AND revoked_at IS NOT NULL AND id <> ?`,
		userID, exceptID)
	return err
}

var _ session.Store = (*Store)(nil)
