package ports

import (
	"context"

	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// Imputer turns an incomplete panel into the panel a downstream model will
// see. Implementations must not modify the input panel; the ignore strategy
// returns an untouched clone, every other strategy returns a complete one.
type Imputer interface {
	// Method identifies the strategy in results and seed derivation.
	Method() study.Method

	// Impute produces the analysis panel for one amputed dataset.
	Impute(ctx context.Context, data *panel.Dataset, rng *rand.Rand) (*panel.Dataset, error)
}
