package ports

import (
	"context"

	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// ResultWriter renders study outputs to files. The format is chosen from
// the path extension (.xlsx or .csv).
type ResultWriter interface {
	// WriteResults writes the replication-level result table.
	WriteResults(path string, table *study.ResultTable) error

	// WriteSummary writes the aggregated per-condition method comparison.
	WriteSummary(path string, summaries []study.MethodSummary) error
}

// ResultReader loads a previously written result table, e.g. to summarize
// an earlier run without recomputing it.
type ResultReader interface {
	ReadResults(path string) (*study.ResultTable, error)
}

// ResultSink persists study results to external storage.
type ResultSink interface {
	// EnsureSchema prepares the storage (idempotent).
	EnsureSchema(ctx context.Context) error

	// SaveResults stores the manifest and all result rows.
	SaveResults(ctx context.Context, manifest *study.Manifest, table *study.ResultTable) error
}
