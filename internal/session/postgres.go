package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in a Postgres table, one JSONB row per name
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore connects to the database at dsn
func NewPostgresStore(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// InitSchema creates the sessions table if it doesn't exist
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS sessions (
            name VARCHAR(255) PRIMARY KEY,
            id TEXT NOT NULL,
            series_filename TEXT NOT NULL DEFAULT '',
            saved_at TIMESTAMPTZ NOT NULL,
            body JSONB NOT NULL
        );

        CREATE INDEX IF NOT EXISTS idx_sessions_saved_at ON sessions(saved_at DESC);
    `)
	if err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, name string, snap *Snapshot) error {
	body, err := Encode(snap)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (name, id, series_filename, saved_at, body)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (name) DO UPDATE
        SET id = EXCLUDED.id, series_filename = EXCLUDED.series_filename,
            saved_at = EXCLUDED.saved_at, body = EXCLUDED.body`,
		name, snap.ID, snap.SeriesFilename, snap.SavedAt, body)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("stored session", "name", name, "id", snap.ID)
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, name string) (*Snapshot, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, "SELECT body FROM sessions WHERE name = $1", name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return Decode(body)
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, id, series_filename, saved_at
        FROM sessions
        ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.ID, &e.SeriesFilename, &e.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
