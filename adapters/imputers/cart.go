package imputers

import (
	"context"

	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/errors"
)

// CARTImputer fills one column at a time with a regression tree trained on
// the rows that observe it, drawing each imputed value from a random donor
// in the predicted leaf. Columns are visited once per call, least missing
// first, so later fits already see the earlier fills.
type CARTImputer struct {
	control treeControl
}

// NewCARTImputer creates the tree strategy with rpart-like controls.
func NewCARTImputer() *CARTImputer {
	return &CARTImputer{control: defaultTreeControl()}
}

// Method identifies the strategy.
func (im *CARTImputer) Method() study.Method { return study.MethodCART }

// Impute runs one sequential pass over the incomplete columns.
func (im *CARTImputer) Impute(ctx context.Context, data *panel.Dataset, rng *rand.Rand) (*panel.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := data.Clone()
	if data.IsComplete() {
		return out, nil
	}

	working, err := meanFill(data)
	if err != nil {
		return nil, errors.ImputationFailure(im.Method().String(), err)
	}

	missing := missingByColumn(data)
	for _, c := range columnsByMissingness(missing) {
		trainRows := make([]int, 0, data.N()-len(missing[c]))
		for i := 0; i < data.N(); i++ {
			if !data.IsMissing(i, c) {
				trainRows = append(trainRows, i)
			}
		}

		target := columnTarget(working, c)
		tree := growTree(working, trainRows, target, otherColumns(c), im.control, rng)

		for _, row := range missing[c] {
			leaf := tree.leafFor(working, row)
			donor := leaf.rows[rng.Intn(len(leaf.rows))]
			v := target[donor]
			working.Set(row, c, v)
			out.Set(row, c, v)
		}
	}
	return out, nil
}
