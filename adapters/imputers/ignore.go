package imputers

import (
	"context"

	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// IgnoreImputer leaves missing cells in place; the downstream model absorbs
// them through full-information likelihood.
type IgnoreImputer struct{}

// NewIgnoreImputer creates the pass-through strategy.
func NewIgnoreImputer() *IgnoreImputer {
	return &IgnoreImputer{}
}

// Method identifies the strategy.
func (im *IgnoreImputer) Method() study.Method { return study.MethodIgnore }

// Impute returns an untouched copy of the panel.
func (im *IgnoreImputer) Impute(ctx context.Context, data *panel.Dataset, rng *rand.Rand) (*panel.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data.Clone(), nil
}
