// Package postgres is the optional shared results store. A study run is a
// manifest row plus one row per (replication, condition, method); reruns
// with the same study id upsert instead of duplicating.
package postgres

import (
	"context"
	"database/sql"
	"log"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/migration"
	"github.com/Jincheol-Lim/SEMtrees/ports"
)

// ResultsRepository implements ports.ResultSink for PostgreSQL.
type ResultsRepository struct {
	db *sqlx.DB
}

// NewResultsRepository creates a new PostgreSQL results sink.
func NewResultsRepository(db *sqlx.DB) ports.ResultSink {
	return &ResultsRepository{db: db}
}

// EnsureSchema brings the store up to the current schema version.
func (r *ResultsRepository) EnsureSchema(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, r.db)
}

// SaveResults stores the manifest and all result rows in one transaction.
// A failed cell is stored with a NULL ari and its note.
func (r *ResultsRepository) SaveResults(ctx context.Context, manifest *study.Manifest, table *study.ResultTable) error {
	if err := manifest.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	methods := make([]string, len(manifest.Methods))
	for i, m := range manifest.Methods {
		methods[i] = m.String()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO study_manifests (
			study_id, seed, replications, conditions, methods,
			covariate, fingerprint, code_version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (study_id) DO UPDATE SET
			seed = EXCLUDED.seed,
			replications = EXCLUDED.replications,
			conditions = EXCLUDED.conditions,
			methods = EXCLUDED.methods,
			covariate = EXCLUDED.covariate,
			fingerprint = EXCLUDED.fingerprint,
			code_version = EXCLUDED.code_version
	`, manifest.StudyID.String(), manifest.Seed, manifest.Replications, manifest.Conditions,
		strings.Join(methods, ","), manifest.Covariate, manifest.Fingerprint.String(),
		manifest.CodeVersion, manifest.CreatedAt.Time())
	if err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO study_results (
			study_id, replication, n, cutpoint_location, cutpoint,
			mechanism, rate, method, ari, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (study_id, n, cutpoint_location, mechanism, rate, replication, method) DO UPDATE SET
			cutpoint = EXCLUDED.cutpoint,
			ari = EXCLUDED.ari,
			note = EXCLUDED.note
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		ari := sql.NullFloat64{Float64: row.ARI, Valid: !math.IsNaN(row.ARI)}
		_, err := stmt.ExecContext(ctx,
			manifest.StudyID.String(), row.Replication, row.SampleSize, row.Location.String(),
			row.Cutpoint, row.Mechanism.String(), row.Rate, row.Method.String(), ari, row.Note)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("[ResultsSink] Stored %d rows for study %s", table.Len(), manifest.StudyID)
	return nil
}
