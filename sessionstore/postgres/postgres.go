// Package postgres provides a session store backed by PostgreSQL, the
// backend intended for multi-node deployments. Schema management runs
// through embedded goose migrations at Open.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/secureauth-io/secureauth/session"
	"github.com/secureauth-io/secureauth/sessionstore/postgres/migrations"
)

// Store implements session.Store over a PostgreSQL database.
type Store struct {
	db *sql.DB
}

// Open connects to the database at dsn and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `id, user_id, user_agent, ip, browser, os, device, created_at, expires_at, revoked_at`

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, user_agent, ip, browser, os, device, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sess.ID, sess.UserID,
		sess.Device.UserAgent, sess.Device.IP, sess.Device.Browser, sess.Device.OS, sess.Device.Device,
		sess.CreatedAt.UTC(), sess.ExpiresAt.UTC(),
	)
	return err
}

func scanSession(row interface{ Scan(...any) error }) (*session.Session, error) {
	var (
		sess      session.Session
		revokedAt sql.NullTime
	)
	err := row.Scan(
		&sess.ID, &sess.UserID,
		&sess.Device.UserAgent, &sess.Device.IP, &sess.Device.Browser, &sess.Device.OS, &sess.Device.Device,
		&sess.CreatedAt, &sess.ExpiresAt, &revokedAt,
	)
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		sess.RevokedAt = revokedAt.Time
	}
	return &sess, nil
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM sessions WHERE id = $1`, sessionID)
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
		 WHERE user_id = $1 AND revoked_at IS NULL
		 ORDER BY created_at DESC, id DESC`, userID)
}

// ListRevoked implements session.Store.
func (s *Store) ListRevoked(ctx context.Context, userID string) ([]*session.Session, error) {
	return s.list(ctx,
		`SELECT `+selectColumns+` FROM sessions
		 WHERE user_id = $1 AND revoked_at IS NOT NULL
		 ORDER BY revoked_at DESC, id DESC`, userID)
}

// Revoke implements session.Store.
func (s *Store) Revoke(ctx context.Context, userID, sessionID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $1
		 WHERE id = $2 AND user_id = $3 AND revoked_at IS NULL`,
		at.UTC(), sessionID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM sessions WHERE id = $1 AND user_id = $2`, sessionID, userID).Scan(&one)
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
		`UPDATE sessions SET revoked_at = $1
		 WHERE user_id = $2 AND id <> $3 AND revoked_at IS NULL`,
		at.UTC(), userID, keepID)
	return err
}

// Extend implements session.Store. The conditional UPDATE makes a racing
// revoke win: a row revoked between the caller's read and this write is not
// matched and the extension reports false.
func (s *Store) Extend(ctx context.Context, sessionID string, expiresAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET expires_at = $1
		 WHERE id = $2 AND revoked_at IS NULL`,
		expiresAt.UTC(), sessionID)
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
		 WHERE user_id = $1 AND revoked_at IS NOT NULL AND id <> $2`,
		userID, exceptID)
	return err
}

var _ session.Store = (*Store)(nil)
