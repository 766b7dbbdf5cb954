package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"support-chat/internal/logger"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    history TEXT
)`
	selectHistorySQL  = `SELECT history FROM sessions WHERE session_id = $1`
	upsertHistorySQL  = `INSERT INTO sessions (session_id, history) VALUES ($1, $2) ON CONFLICT (session_id) DO UPDATE SET history = EXCLUDED.history`
	selectSessionsSQL = `SELECT session_id, history FROM sessions`
)

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore keeps sessions in a single Postgres table.
type PostgresStore struct {
	db DB
}

// Connect opens a pool for databaseURL and verifies it with a ping.
// It does not retry. Every failure, an unparsable URL included, is a
// *ConnectionError.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("parse database url: %w", err)}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Err: err}
	}
	return NewPostgresStore(pool), nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return &StoreError{Op: "ensure schema", Err: err}
	}
	return nil
}

// GetTranscript returns "" for unknown sessions and on any backend error;
// errors are logged.
func (s *PostgresStore) GetTranscript(ctx context.Context, sessionID string) string {
	var history pgtype.Text
	err := s.db.QueryRow(ctx, selectHistorySQL, sessionID).Scan(&history)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.FromContext(ctx).Error().Err(err).Str("session_id", sessionID).Msg("get history failed")
		}
		return ""
	}
	return history.String
}

// PutTranscript upserts the full transcript. Concurrent writers race and
// the last completed write wins.
func (s *PostgresStore) PutTranscript(ctx context.Context, sessionID, transcript string) error {
	if _, err := s.db.Exec(ctx, upsertHistorySQL, sessionID, transcript); err != nil {
		return &StoreError{Op: "save history", Err: err}
	}
	return nil
}

// ListSessions returns every row in natural table order. A failed ping is
// reported as a *ConnectionError, a failed query as a *StoreError.
func (s *PostgresStore) ListSessions(ctx context.Context) ([]Session, error) {
	if err := s.db.Ping(ctx); err != nil {
		return nil, &ConnectionError{Err: err}
	}

	rows, err := s.db.Query(ctx, selectSessionsSQL)
	if err != nil {
		return nil, &StoreError{Op: "list sessions", Err: err}
	}
	defer rows.Close()

	out := make([]Session, 0)
	for rows.Next() {
		var (
			id      string
			history pgtype.Text
		)
		if err := rows.Scan(&id, &history); err != nil {
			return nil, &StoreError{Op: "scan session", Err: err}
		}
		out = append(out, Session{SessionID: id, Transcript: history.String})
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list sessions", Err: err}
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
