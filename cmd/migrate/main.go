// Command migrate imports result workbooks into the shared results store.
// Studies run to xlsx or csv on machines without database access can be
// loaded into PostgreSQL later without rerunning them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Jincheol-Lim/SEMtrees/adapters/excel"
	"github.com/Jincheol-Lim/SEMtrees/adapters/postgres"
	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/migration"
)

func main() {
	dsn := flag.String("dsn", "", "postgres connection string (defaults to SEMTREES_RESULTS_DSN)")
	seed := flag.Int64("seed", 0, "global seed recorded in imported manifests")
	covariate := flag.String("covariate", "continuous", "covariate kind recorded in imported manifests")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <results.xlsx|results.csv> ...")
		os.Exit(2)
	}

	kind, err := panel.ParseCovariateKind(*covariate)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	if *dsn == "" {
		*dsn = os.Getenv("SEMTREES_RESULTS_DSN")
	}
	if *dsn == "" {
		log.Fatal("No results store configured: pass -dsn or set SEMTREES_RESULTS_DSN")
	}

	db, err := sqlx.Connect("postgres", *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}
	log.Printf("Results store schema at version %s", runner.Version())

	reader := excel.NewReader()
	sink := postgres.NewResultsRepository(db)

	imported := 0
	skipped := 0

	for _, path := range flag.Args() {
		table, err := reader.ReadResults(path)
		if err != nil {
			log.Printf("Failed to read results from %s: %v", path, err)
			skipped++
			continue
		}

		manifest, err := reconstructManifest(path, table, *seed, kind.String())
		if err != nil {
			log.Printf("Could not reconstruct manifest for %s: %v", path, err)
			skipped++
			continue
		}

		if err := sink.SaveResults(ctx, manifest, table); err != nil {
			log.Printf("Failed to store %s: %v", path, err)
			skipped++
			continue
		}

		imported++
		log.Printf("Imported %d rows from %s as study %s", table.Len(), filepath.Base(path), manifest.StudyID)
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
	if skipped > 0 {
		os.Exit(1)
	}
}

// reconstructManifest rebuilds an audit record for a table whose original
// manifest is gone. The study id is derived from the workbook bytes, so
// importing the same file twice upserts instead of duplicating.
func reconstructManifest(path string, table *study.ResultTable, seed int64, covariate string) (*study.Manifest, error) {
	if table.Len() == 0 {
		return nil, fmt.Errorf("workbook has no result rows")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	studyID := uuid.NewSHA1(uuid.NameSpaceURL, raw)

	conds := make(map[string]bool)
	seen := make(map[study.Method]bool)
	replications := 0
	for _, row := range table.Rows {
		conds[row.Condition().Key()] = true
		seen[row.Method] = true
		if row.Replication > replications {
			replications = row.Replication
		}
	}

	methods := make([]study.Method, 0, len(seen))
	for _, m := range study.AllMethods() {
		if seen[m] {
			methods = append(methods, m)
		}
	}

	return &study.Manifest{
		StudyID:      core.StudyID(studyID.String()),
		Seed:         seed,
		Replications: replications,
		Conditions:   len(conds),
		Methods:      methods,
		Covariate:    covariate,
		Fingerprint: core.ComputeStudyFingerprint(map[string]interface{}{
			"source": filepath.Base(path),
			"rows":   table.Len(),
			"id":     studyID.String(),
		}),
		CodeVersion: "imported",
		CreatedAt:   core.Now(),
	}, nil
}
