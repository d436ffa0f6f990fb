package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/analysis"
)

// PostgresStore persists reports as JSONB rows keyed by analysis ID.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database, verifies the connection, and
// ensures the analyses table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating analyses table: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id         TEXT PRIMARY KEY,
			report     JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Save assigns an analysis ID, embeds it in the stored blob, and inserts
// the row.
func (s *PostgresStore) Save(ctx context.Context, report *analysis.Report) (string, error) {
	id := newAnalysisID()

	stored := *report
	stored.AnalysisID = id

	data, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, report) VALUES ($1, $2)`, id, data)
	if err != nil {
		return "", fmt.Errorf("inserting report: %w", err)
	}
	return id, nil
}

// Load reads a stored report. Returns ErrNotFound when the ID is unknown.
func (s *PostgresStore) Load(ctx context.Context, analysisID string) (*analysis.Report, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT report FROM analyses WHERE id = $1`, analysisID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}

	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &report, nil
}
