// Package container wires adapters into the application services and
// manages their lifecycle.
package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/Jincheol-Lim/SEMtrees/adapters/excel"
	"github.com/Jincheol-Lim/SEMtrees/adapters/imputers"
	"github.com/Jincheol-Lim/SEMtrees/adapters/postgres"
	"github.com/Jincheol-Lim/SEMtrees/adapters/semtree"
	"github.com/Jincheol-Lim/SEMtrees/app"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/config"
	"github.com/Jincheol-Lim/SEMtrees/internal/simdata"
	"github.com/Jincheol-Lim/SEMtrees/ports"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config

	// Infrastructure. DB and Sink stay nil unless a results store is
	// configured; file artifacts are always written.
	DB   *sqlx.DB
	Sink ports.ResultSink

	// Shared seed streams; the tree fitter and the study driver must use
	// the same provider or null tables and cells would disagree.
	Streams *study.SeedStreams

	// Artifact IO
	Writer *excel.Writer
	Reader *excel.Reader

	// Application services
	Study   *app.StudyService
	Summary *app.SummaryService
}

// New creates the container and wires every component that needs no
// external connection.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	streams := study.NewSeedStreams(cfg.Study.Seed)
	fitter := semtree.NewFitter(semtree.Config{
		Alpha:     cfg.Study.Alpha,
		NullDraws: cfg.Study.NullDraws,
		Trim:      semtree.DefaultConfig().Trim,
	}, streams)

	c := &Container{
		Config:  cfg,
		Streams: streams,
		Writer:  excel.NewWriter(),
		Reader:  excel.NewReader(),
		Study: app.NewStudyService(
			simdata.NewGenerator(),
			simdata.NewInjector(),
			imputers.ForMethods,
			fitter,
			semtree.NewARIScorer(),
			streams,
		),
		Summary: app.NewSummaryService(),
	}
	return c, nil
}

// InitWithDatabase wires the optional results store.
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.DB = db
	c.Sink = postgres.NewResultsRepository(db)

	log.Printf("[Container] Results store connected")
	return nil
}

// Shutdown gracefully releases held resources.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
