package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify the connection with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Schema is applied by Migrate. Every statement is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS knockout_matches (
		id              TEXT PRIMARY KEY,
		tournament_id   INTEGER     NOT NULL,
		phase           TEXT        NOT NULL,
		round           INTEGER     NOT NULL,
		order_in_round  INTEGER     NOT NULL,
		format          TEXT        NOT NULL,
		pod             TEXT,
		slots           JSONB       NOT NULL,
		raw_result      JSONB,
		ranking         JSONB,
		points_awarded  JSONB,
		result_digest   TEXT,
		recorded_at     TIMESTAMPTZ,
		materialized_at TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT knockout_matches_position_key UNIQUE (tournament_id, round, order_in_round)
	)`,
	`CREATE INDEX IF NOT EXISTS knockout_matches_tournament_idx ON knockout_matches (tournament_id, round)`,
	`CREATE TABLE IF NOT EXISTS ranking_ledger (
		id             TEXT PRIMARY KEY,
		tournament_id  INTEGER          NOT NULL,
		participant_id TEXT             NOT NULL,
		match_id       TEXT             NOT NULL REFERENCES knockout_matches (id),
		rank           INTEGER          NOT NULL,
		points         DOUBLE PRECISION NOT NULL,
		recorded_at    TIMESTAMPTZ      NOT NULL,
		CONSTRAINT ranking_ledger_entry_key UNIQUE (tournament_id, participant_id, match_id)
	)`,
	`CREATE TABLE IF NOT EXISTS group_standings (
		id              SERIAL PRIMARY KEY,
		tournament_id   INTEGER     NOT NULL,
		group_id        TEXT        NOT NULL,
		participant_id  TEXT        NOT NULL,
		points          INTEGER     NOT NULL DEFAULT 0,
		wins            INTEGER     NOT NULL DEFAULT 0,
		draws           INTEGER     NOT NULL DEFAULT 0,
		losses          INTEGER     NOT NULL DEFAULT 0,
		score_for       INTEGER     NOT NULL DEFAULT 0,
		score_against   INTEGER     NOT NULL DEFAULT 0,
		goal_difference INTEGER     NOT NULL DEFAULT 0,
		head_to_head    JSONB,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT group_standings_participant_key UNIQUE (tournament_id, participant_id)
	)`,
	`CREATE TABLE IF NOT EXISTS scoring_configs (
		tournament_id INTEGER PRIMARY KEY,
		config        JSONB       NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS match_rosters (
		match_id        TEXT PRIMARY KEY REFERENCES knockout_matches (id) ON DELETE CASCADE,
		participant_ids TEXT[]      NOT NULL,
		confirmed_by    INTEGER,
		confirmed_at    TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the tables the repositories work on.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range Schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}
	return tx.Commit()
}
