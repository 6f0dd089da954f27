package ports

import (
	"context"

	"github.com/Jincheol-Lim/SEMtrees/domain/growth"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// TreeFitter fits the linear growth model to a panel and tests the
// covariate for parameter instability. The result is either a single-leaf
// tree (no significant split) or one binary split with per-leaf parameters.
type TreeFitter interface {
	FitAndSplit(ctx context.Context, data *panel.Dataset) (*growth.Tree, error)
}

// PartitionScorer quantifies agreement between the planted subgroups and a
// recovered partition. Scores are label-invariant.
type PartitionScorer interface {
	Score(truth, recovered panel.Labeling) (float64, error)
}
