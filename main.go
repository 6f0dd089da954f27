package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"

	"github.com/Jincheol-Lim/SEMtrees/adapters/excel"
	"github.com/Jincheol-Lim/SEMtrees/internal/config"
	"github.com/Jincheol-Lim/SEMtrees/internal/container"
)

// initDatabase connects the optional Postgres results store.
func initDatabase(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to results store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping results store: %w", err)
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	ctx := context.Background()
	defer c.Shutdown(ctx)

	if appConfig.Sink.DSN != "" {
		db, err := initDatabase(appConfig.Sink.DSN)
		if err != nil {
			log.Fatalf("Failed to initialize results store: %v", err)
		}
		if err := c.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to wire results store: %v", err)
		}
		if err := c.Sink.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare results schema: %v", err)
		}
	}

	result, err := c.Study.Run(ctx, appConfig.Study)
	if err != nil {
		log.Fatalf("Study run failed: %v", err)
	}

	if err := c.Writer.WriteResults(appConfig.Output.Path, result.Table); err != nil {
		log.Fatalf("Failed to write result table: %v", err)
	}

	summaries := c.Summary.Summarize(result.Table)
	summaryPath := excel.SummaryPath(appConfig.Output.Path)
	if err := c.Writer.WriteSummary(summaryPath, summaries); err != nil {
		log.Fatalf("Failed to write summary: %v", err)
	}

	if c.Sink != nil {
		if err := c.Sink.SaveResults(ctx, result.Manifest, result.Table); err != nil {
			log.Fatalf("Failed to persist results: %v", err)
		}
	}

	fmt.Println(c.Summary.RenderTable(summaries))
	fmt.Printf("Study %s: %d rows (%d failures) in %.1fs\n",
		result.Manifest.StudyID, result.Table.Len(), result.Table.Failures(),
		float64(result.RuntimeMs)/1000.0)
	fmt.Printf("Results:  %s\nSummary:  %s\n", appConfig.Output.Path, summaryPath)
}
