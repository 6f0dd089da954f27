package app

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal"
	"github.com/Jincheol-Lim/SEMtrees/ports"
)

// CodeVersion is folded into every study fingerprint so tables produced by
// different builds are never mistaken for replications of each other.
const CodeVersion = "v1.0.0"

// ImputerResolver maps a method list to the imputers implementing it.
type ImputerResolver func(methods []study.Method) ([]ports.Imputer, error)

// StudyService drives the full simulation study: it expands the condition
// grid, runs every (condition, replication) cell through the
// generate-ampute-impute-fit pipeline, and collects one result row per
// method. Cells are independent and run concurrently; all randomness comes
// from per-cell seed streams, so the table is identical for any worker
// count.
type StudyService struct {
	generator ports.PanelGenerator
	injector  ports.MissingnessInjector
	imputers  ImputerResolver
	fitter    ports.TreeFitter
	scorer    ports.PartitionScorer
	streams   ports.RNG
	logger    *internal.Logger // Logger for controlled verbosity
}

// StudyResult bundles everything one run produces.
type StudyResult struct {
	Manifest  *study.Manifest    `json:"manifest"`
	Table     *study.ResultTable `json:"table"`
	RuntimeMs int64              `json:"runtime_ms"`
}

// NewStudyService wires the pipeline ports into a study driver.
func NewStudyService(
	generator ports.PanelGenerator,
	injector ports.MissingnessInjector,
	imputers ImputerResolver,
	fitter ports.TreeFitter,
	scorer ports.PartitionScorer,
	streams ports.RNG,
) *StudyService {
	return &StudyService{
		generator: generator,
		injector:  injector,
		imputers:  imputers,
		fitter:    fitter,
		scorer:    scorer,
		streams:   streams,
		logger:    internal.NewDefaultLogger(),
	}
}

// Run executes the whole study described by cfg and returns the manifest
// plus the canonical result table.
func (s *StudyService) Run(ctx context.Context, cfg study.Config) (*StudyResult, error) {
	startTime := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	imps, err := s.imputers(cfg.Methods)
	if err != nil {
		return nil, err
	}

	manifest := study.NewManifest(cfg, CodeVersion)
	conds := cfg.Conditions()
	totalCells := len(conds) * cfg.Replications

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s.logger.Info("[StudyService] Starting study %s: %d conditions x %d replications x %d methods on %d workers",
		manifest.StudyID, len(conds), cfg.Replications, len(imps), workers)

	// Every cell writes into its own pre-sized slot. Workers never share
	// mutable state, so the merge below is free of ordering effects.
	slots := make([][]study.ResultRow, totalCells)
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var completed atomic.Int64

	logEvery := int64(totalCells / 10)
	if logEvery == 0 {
		logEvery = 1
	}

	for ci, cond := range conds {
		for rep := 1; rep <= cfg.Replications; rep++ {
			idx := ci*cfg.Replications + (rep - 1)
			wg.Add(1)
			go func(cond study.Condition, rep, idx int) {
				defer wg.Done()
				if err := sem.Acquire(ctx, 1); err != nil {
					return
				}
				defer sem.Release(1)

				slots[idx] = s.runCell(ctx, cfg, cond, rep, imps)
				s.logger.Debug("[StudyService] Cell %s rep=%d finished", cond.Key(), rep)

				if done := completed.Add(1); done%logEvery == 0 || done == int64(totalCells) {
					s.logger.Info("[StudyService] Completed %d/%d cells (%.0f%%)",
						done, totalCells, 100*float64(done)/float64(totalCells))
				}
			}(cond, rep, idx)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("study %s aborted: %w", manifest.StudyID, err)
	}

	table := &study.ResultTable{}
	for _, rows := range slots {
		table.Append(rows...)
	}
	table.Sort()

	runtimeMs := time.Since(startTime).Milliseconds()
	s.logger.Info("[StudyService] Study %s complete in %.2fs: %d rows, %d failures",
		manifest.StudyID, float64(runtimeMs)/1000.0, table.Len(), table.Failures())

	return &StudyResult{
		Manifest:  manifest,
		Table:     table,
		RuntimeMs: runtimeMs,
	}, nil
}

// RunCell reproduces a single replication cell in isolation. The rows are
// bit-identical to the same cell inside a full Run.
func (s *StudyService) RunCell(ctx context.Context, cfg study.Config, cond study.Condition, replication int) ([]study.ResultRow, error) {
	if err := cond.Validate(); err != nil {
		return nil, err
	}
	if replication < 1 {
		return nil, core.NewValidationError("replication", fmt.Sprintf("must be >= 1, got %d", replication))
	}
	imps, err := s.imputers(cfg.Methods)
	if err != nil {
		return nil, err
	}
	return s.runCell(ctx, cfg, cond, replication, imps), nil
}

// runCell runs the full pipeline for one (condition, replication) cell and
// always returns one row per method. Failures never stop the study; they
// are recorded as NaN ARI with the failing stage in the note.
func (s *StudyService) runCell(ctx context.Context, cfg study.Config, cond study.Condition, rep int, imps []ports.Imputer) []study.ResultRow {
	cut := cond.Location.Realize(cond.SampleSize, s.streams.Stream(cond, rep, study.StageCutpoint))

	gen, err := s.generator.Generate(ctx, ports.GenerateRequest{
		Condition:  cond,
		Cutpoint:   cut,
		Population: cfg.Population,
		Covariate:  cfg.Covariate,
	}, s.streams.Stream(cond, rep, study.StageGenerate))
	if err != nil {
		s.logger.Warn("[StudyService] Generation failed at %s rep=%d: %v", cond.Key(), rep, err)
		return s.failedRows(cond, rep, cut, imps, fmt.Sprintf("generate: %v", err))
	}

	amputed, err := s.injector.Ampute(ctx, gen.Data, cond, s.streams.Stream(cond, rep, study.StageAmpute))
	if err != nil {
		s.logger.Warn("[StudyService] Missingness injection failed at %s rep=%d: %v", cond.Key(), rep, err)
		return s.failedRows(cond, rep, cut, imps, fmt.Sprintf("ampute: %v", err))
	}

	rows := make([]study.ResultRow, 0, len(imps))
	for _, imp := range imps {
		row := study.ResultRow{
			Replication: rep,
			SampleSize:  cond.SampleSize,
			Location:    cond.Location,
			Cutpoint:    cut,
			Mechanism:   cond.Mechanism,
			Rate:        cond.Rate,
			Method:      imp.Method(),
		}
		row.ARI, row.Note = s.scoreMethod(ctx, cfg, cond, rep, imp, amputed, gen.Truth)
		rows = append(rows, row)
	}
	return rows
}

// scoreMethod runs one method over an amputed panel and returns its ARI,
// or NaN plus a note naming the stage that failed.
func (s *StudyService) scoreMethod(ctx context.Context, cfg study.Config, cond study.Condition, rep int, imp ports.Imputer, amputed *panel.Dataset, truth panel.Labeling) (float64, string) {
	method := imp.Method()

	analysis, err := imp.Impute(ctx, amputed, s.streams.Stream(cond, rep, study.ImputeStage(method)))
	if err != nil {
		s.logger.Warn("[StudyService] Method %s imputation failed at %s rep=%d: %v", method, cond.Key(), rep, err)
		return math.NaN(), fmt.Sprintf("impute: %v", err)
	}

	tree, err := s.fitter.FitAndSplit(ctx, analysis)
	if err != nil {
		s.logger.Warn("[StudyService] Method %s tree fit failed at %s rep=%d: %v", method, cond.Key(), rep, err)
		return math.NaN(), fmt.Sprintf("fit: %v", err)
	}

	recovered := panel.NewLabeling(tree.Assign(analysis.Covariate()))
	ari, err := s.scorer.Score(truth, recovered)
	if err != nil {
		s.logger.Warn("[StudyService] Method %s scoring failed at %s rep=%d: %v", method, cond.Key(), rep, err)
		return math.NaN(), fmt.Sprintf("score: %v", err)
	}
	return ari, ""
}

// failedRows marks every method of a replication as failed with one shared
// note, used when the cell breaks before any method runs.
func (s *StudyService) failedRows(cond study.Condition, rep, cut int, imps []ports.Imputer, note string) []study.ResultRow {
	rows := make([]study.ResultRow, 0, len(imps))
	for _, imp := range imps {
		rows = append(rows, study.ResultRow{
			Replication: rep,
			SampleSize:  cond.SampleSize,
			Location:    cond.Location,
			Cutpoint:    cut,
			Mechanism:   cond.Mechanism,
			Rate:        cond.Rate,
			Method:      imp.Method(),
			ARI:         math.NaN(),
			Note:        note,
		})
	}
	return rows
}
