package imputers

import (
	"context"
	"math"

	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/errors"
)

// MissForestImputer iterates random-forest fits column by column, starting
// from mean fills, until the imputed values stop improving: sweeps end on
// the first increase of the normalized change between successive imputed
// matrices, returning the previous iterate.
type MissForestImputer struct {
	control treeControl
	trees   int
	sweeps  int
}

// NewMissForestImputer creates the iterative forest strategy.
func NewMissForestImputer() *MissForestImputer {
	return &MissForestImputer{
		control: treeControl{MinSplit: 10, MinBucket: 5, CP: 0, MaxDepth: 30, MTry: 2},
		trees:   20,
		sweeps:  10,
	}
}

// Method identifies the strategy.
func (im *MissForestImputer) Method() study.Method { return study.MethodMissForest }

// Impute fills every missing cell by iterated forest regression.
func (im *MissForestImputer) Impute(ctx context.Context, data *panel.Dataset, rng *rand.Rand) (*panel.Dataset, error) {
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
	order := columnsByMissingness(missing)

	cells := make([]missingCell, 0, data.MissingCells())
	for _, c := range order {
		for _, row := range missing[c] {
			cells = append(cells, missingCell{row: row, col: c})
		}
	}

	previous := snapshot(working, cells)
	prevDelta := math.Inf(1)

	for sweep := 0; sweep < im.sweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, c := range order {
			trainRows := make([]int, 0, data.N()-len(missing[c]))
			for i := 0; i < data.N(); i++ {
				if !data.IsMissing(i, c) {
					trainRows = append(trainRows, i)
				}
			}
			target := columnTarget(working, c)
			forest := growForest(working, trainRows, target, otherColumns(c), im.control, im.trees, rng)
			for _, row := range missing[c] {
				working.Set(row, c, forest.predict(working, row))
			}
		}

		current := snapshot(working, cells)
		delta := normalizedChange(current, previous)
		if delta > prevDelta {
			// Worse than the last sweep: keep the previous iterate.
			for i, cell := range cells {
				working.Set(cell.row, cell.col, previous[i])
			}
			break
		}
		previous = current
		prevDelta = delta
		if delta == 0 {
			break
		}
	}

	for _, cell := range cells {
		out.Set(cell.row, cell.col, working.At(cell.row, cell.col))
	}
	return out, nil
}

// snapshot copies the current values at the originally-missing positions.
func snapshot(working *panel.Dataset, cells []missingCell) []float64 {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		values[i] = working.At(cell.row, cell.col)
	}
	return values
}

// normalizedChange is the missForest stopping quantity: squared change of
// the imputed values between sweeps, scaled by their current magnitude.
func normalizedChange(current, previous []float64) float64 {
	num, den := 0.0, 0.0
	for i := range current {
		d := current[i] - previous[i]
		num += d * d
		den += current[i] * current[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}
