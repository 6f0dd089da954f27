// Package migration owns the results-store schema. The runner is
// idempotent; the postgres sink and the migrate binary both call it before
// touching the tables.
package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Jincheol-Lim/SEMtrees/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles results-store schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all schema migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createManifestsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create study_manifests table")
	}

	if err := r.createResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create study_results table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createManifestsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS study_manifests (
			study_id UUID PRIMARY KEY,
			seed BIGINT NOT NULL,
			replications INT NOT NULL,
			conditions INT NOT NULL,
			methods TEXT NOT NULL,
			covariate TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			code_version TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createResultsTable(ctx context.Context, db *sqlx.DB) error {
	// ari is nullable: a failed cell stores NULL plus the stage note.
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS study_results (
			study_id UUID NOT NULL REFERENCES study_manifests(study_id) ON DELETE CASCADE,
			replication INT NOT NULL,
			n INT NOT NULL,
			cutpoint_location TEXT NOT NULL,
			cutpoint INT NOT NULL,
			mechanism TEXT NOT NULL,
			rate DOUBLE PRECISION NOT NULL,
			method TEXT NOT NULL,
			ari DOUBLE PRECISION,
			note TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (study_id, n, cutpoint_location, mechanism, rate, replication, method)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		// Result rows are queried per study, per method, or per design cell
		"CREATE INDEX IF NOT EXISTS idx_results_study_id ON study_results(study_id)",
		"CREATE INDEX IF NOT EXISTS idx_results_method ON study_results(method)",
		"CREATE INDEX IF NOT EXISTS idx_results_design ON study_results(n, cutpoint_location, mechanism, rate)",

		// Manifests are listed newest first
		"CREATE INDEX IF NOT EXISTS idx_manifests_created_at ON study_manifests(created_at DESC)",
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return err
		}
	}

	return nil
}
