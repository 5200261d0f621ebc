// Package db provides PostgreSQL persistence for parse runs, their
// attempt trails, and the artifacts each run produces.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dchen/portfolio-engine/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Artifact steps
const (
	StepRecord      = "record"
	StepSuggestions = "suggestions"
	StepReport      = "report"
)

// ParseRun is one orchestration run over a document
type ParseRun struct {
	ID             uuid.UUID  `json:"id"`
	SourcePath     string     `json:"source_path"`
	SourceHash     string     `json:"source_hash"`
	Provider       string     `json:"provider,omitempty"`
	Score          float64    `json:"score,omitempty"`
	BelowThreshold bool       `json:"below_threshold"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema applies the embedded schema. All statements are
// idempotent.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateRun records the start of an orchestration run and returns its ID
func (db *DB) CreateRun(ctx context.Context, sourcePath, sourceHash string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO parse_runs (source_path, source_hash, status)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		sourcePath, sourceHash, StatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun stores the terminal state of a run
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status, provider string, score float64, belowThreshold bool) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE parse_runs
		 SET status = $1, provider = $2, score = $3, below_threshold = $4, completed_at = NOW()
		 WHERE id = $5`,
		status, provider, score, belowThreshold, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveAttempts stores a run's full attempt trail, preserving order
func (db *DB) SaveAttempts(ctx context.Context, runID uuid.UUID, attempts []types.ParseAttempt) error {
	for i, attempt := range attempts {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO parse_attempts (run_id, position, provider, outcome, score, latency_ms, error)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (run_id, position) DO NOTHING`,
			runID, i, attempt.Provider, string(attempt.Outcome), attempt.Score, attempt.Latency.Milliseconds(), attempt.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to save attempt %d: %w", i, err)
		}
	}
	return nil
}

// GetAttempts retrieves a run's attempt trail in attempt order
func (db *DB) GetAttempts(ctx context.Context, runID uuid.UUID) ([]types.ParseAttempt, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT provider, outcome, COALESCE(score, 0), latency_ms, COALESCE(error, '')
		 FROM parse_attempts WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []types.ParseAttempt
	for rows.Next() {
		var (
			attempt   types.ParseAttempt
			outcome   string
			latencyMs int64
		)
		if err := rows.Scan(&attempt.Provider, &outcome, &attempt.Score, &latencyMs, &attempt.Error); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempt.Outcome = types.AttemptOutcome(outcome)
		attempt.Latency = time.Duration(latencyMs) * time.Millisecond
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// SaveArtifact stores a JSON artifact for a run, replacing any previous
// artifact for the same step.
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, step string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, step, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, step) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, step, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", step, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run ID and step. A missing
// artifact returns (nil, nil).
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, step string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", step, err)
	}
	return content, nil
}

// GetRun retrieves a run by ID; a missing run returns (nil, nil)
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*ParseRun, error) {
	var run ParseRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_path, source_hash, COALESCE(provider, ''), COALESCE(score, 0),
		        below_threshold, status, created_at, completed_at
		 FROM parse_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.SourcePath, &run.SourceHash, &run.Provider, &run.Score,
		&run.BelowThreshold, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the most recent runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]ParseRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, source_path, source_hash, COALESCE(provider, ''), COALESCE(score, 0),
		        below_threshold, status, created_at, completed_at
		 FROM parse_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []ParseRun
	for rows.Next() {
		var run ParseRun
		if err := rows.Scan(&run.ID, &run.SourcePath, &run.SourceHash, &run.Provider, &run.Score,
			&run.BelowThreshold, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
