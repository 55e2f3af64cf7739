// internal/core/db/store.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/solatis/namekeeper/internal/report"
	"github.com/solatis/namekeeper/internal/types"
)

/*
 * Lint run history and API key records.
 *
 * A run row summarizes one lint invocation (CLI or CheckSource call); its
 * violations hang off it and are written in the same transaction, so a run
 * is either fully recorded or absent. IDs are UUIDv7 so ORDER BY run_id is
 * chronological.
 */

// Run summarizes one recorded lint invocation.
type Run struct {
	ID             types.RunID `db:"run_id"`
	Client         string      `db:"client"`
	RulesDigest    string      `db:"rules_digest"`
	StartedAt      time.Time   `db:"started_at"`
	FinishedAt     time.Time   `db:"finished_at"`
	FilesChecked   int         `db:"files_checked"`
	NamesChecked   int         `db:"names_checked"`
	ViolationCount int         `db:"violation_count"`
}

// Violation is a persisted diagnostic.
type Violation struct {
	ID        types.ViolationID `db:"violation_id"`
	RunID     types.RunID       `db:"run_id"`
	Path      string            `db:"path"`
	Line      int               `db:"line"`
	Column    int               `db:"col"`
	Category  string            `db:"category"`
	Name      string            `db:"name"`
	Stage     string            `db:"stage"`
	MessageID string            `db:"message_id"`
	Rule      int               `db:"rule_index"`
	Message   string            `db:"message"`
}

// Diagnostic converts the row back to its report form.
func (v Violation) Diagnostic() report.Diagnostic {
	return report.Diagnostic{
		Path:      v.Path,
		Line:      v.Line,
		Column:    v.Column,
		Category:  v.Category,
		Name:      v.Name,
		Stage:     v.Stage,
		MessageID: v.MessageID,
		Rule:      v.Rule,
		Message:   v.Message,
	}
}

// APIKey is an API key record. The key itself is never stored.
type APIKey struct {
	ID         string       `db:"api_key_id"`
	Name       string       `db:"name"`
	CreatedAt  time.Time    `db:"created_at"`
	LastUsedAt sql.NullTime `db:"last_used_at"`
	RevokedAt  sql.NullTime `db:"revoked_at"`
}

// Store persists lint runs and API keys.
type Store struct {
	db      *sqlx.DB
	queries *Queries
}

// NewStore loads the named queries for db. Migrations must already be applied.
func NewStore(db *sqlx.DB) (*Store, error) {
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, queries: q}, nil
}

// Queries exposes the named query set, e.g. for auth.NewAuthenticator.
func (s *Store) Queries() *Queries {
	return s.queries
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores run and its diagnostics atomically. A zero run.ID is
// replaced with a fresh UUIDv7; ViolationCount is taken from len(diags).
func (s *Store) RecordRun(ctx context.Context, run Run, diags []report.Diagnostic) (types.RunID, error) {
	if run.ID == "" {
		run.ID = types.NewRunID()
	}
	run.ViolationCount = len(diags)

	err := s.queries.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.Exec(ctx, "insert-lint-run",
			string(run.ID), run.Client, run.RulesDigest,
			run.StartedAt.UTC(), run.FinishedAt.UTC(),
			run.FilesChecked, run.NamesChecked, run.ViolationCount,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, d := range diags {
			if _, err := tx.Exec(ctx, "insert-violation",
				string(types.NewViolationID()), string(run.ID),
				d.Path, d.Line, d.Column, d.Category, d.Name,
				d.Stage, d.MessageID, d.Rule, d.Message,
			); err != nil {
				return fmt.Errorf("insert violation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// GetRun returns one run by ID.
func (s *Store) GetRun(id types.RunID) (*Run, error) {
	var run Run
	err := s.queries.Get("get-lint-run", &run, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	if err := s.queries.Select("list-lint-runs", &runs, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// Violations returns the violations of one run ordered by location.
func (s *Store) Violations(id types.RunID) ([]Violation, error) {
	var out []Violation
	if err := s.queries.Select("list-violations-by-run", &out, string(id)); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAPIKey records a key by its HMAC hash and returns the new key ID.
func (s *Store) CreateAPIKey(name string, keyHash []byte) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	if _, err := s.queries.Exec("insert-api-key", id, name, keyHash, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("insert api key: %w", err)
	}
	return id, nil
}

// RevokeAPIKey marks a key revoked. Revoking an unknown or already revoked
// key returns types.ErrNotFound.
func (s *Store) RevokeAPIKey(id string) error {
	res, err := s.queries.Exec("revoke-api-key", time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("api key %s: %w", id, types.ErrNotFound)
	}
	return nil
}

// ListAPIKeys returns every key record in creation order.
func (s *Store) ListAPIKeys() ([]APIKey, error) {
	var keys []APIKey
	if err := s.queries.Select("list-api-keys", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}
