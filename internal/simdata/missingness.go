package simdata

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/errors"
)

// dropoutPatterns lists the wave-deletion patterns, ordered by severity.
// Pattern 0 deletes nothing; pattern k truncates the series after wave
// NumWaves-k, so missingness is always monotone. The covariate column is
// never deleted.
var dropoutPatterns = [5][]int{
	{},
	{3},
	{2, 3},
	{1, 2, 3},
	{0, 1, 2, 3},
}

// MaxRate is the highest cell-wise missingness rate the pattern catalog can
// reach: with every row of every deleting pattern activated, the catalog
// erases on average 2 of the 5 cells per row.
const MaxRate = 0.4

// Injector deletes cells from complete panels under MCAR or MAR. Rows are
// first assigned to the five patterns in near-equal strata, then a
// rate-dependent share of each stratum is activated.
type Injector struct{}

// NewInjector creates a missingness injector.
func NewInjector() *Injector {
	return &Injector{}
}

// Ampute returns a copy of the panel with cells deleted according to the
// condition's mechanism and rate. The input panel is never modified.
func (inj *Injector) Ampute(ctx context.Context, data *panel.Dataset, cond study.Condition, rng *rand.Rand) (*panel.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cond.Rate <= 0 || cond.Rate > MaxRate {
		return nil, errors.MissingnessInfeasible(
			fmt.Sprintf("rate %.2f outside (0, %.2f]", cond.Rate, MaxRate),
			core.NewInfeasibleRateError(cond.Rate, MaxRate))
	}
	if !data.IsComplete() {
		return nil, errors.MissingnessInfeasible("input panel already has missing cells", core.ErrIncompleteData)
	}

	out := data.Clone()

	// Stratified pattern assignment: one seeded permutation, split into
	// five near-equal contiguous blocks.
	blocks := splitBlocks(rng.Perm(data.N()), len(dropoutPatterns))

	// The share of each stratum that is activated. Activating share p of
	// every deleting pattern erases p * 2/5 of all cells, so p = 2.5 rate.
	activation := 2.5 * cond.Rate

	moments := columnMoments(data)
	for k := 1; k < len(dropoutPatterns); k++ {
		block := blocks[k]
		m := int(math.Round(activation * float64(len(block))))
		if m == 0 {
			continue
		}
		if m > len(block) {
			m = len(block)
		}

		var chosen []int
		switch cond.Mechanism {
		case study.MechanismMCAR:
			order := rng.Perm(len(block))
			chosen = make([]int, 0, m)
			for _, j := range order[:m] {
				chosen = append(chosen, block[j])
			}
		case study.MechanismMAR:
			chosen = rightTail(data, moments, block, dropoutPatterns[k], m)
		default:
			return nil, errors.MissingnessInfeasible(
				fmt.Sprintf("unknown mechanism %q", cond.Mechanism), core.ErrInvalidCondition)
		}

		for _, row := range chosen {
			for _, col := range dropoutPatterns[k] {
				out.SetMissing(row, col)
			}
		}
	}
	return out, nil
}

// splitBlocks cuts a permutation into count near-equal contiguous blocks,
// spreading the remainder over the leading blocks.
func splitBlocks(perm []int, count int) [][]int {
	base := len(perm) / count
	rem := len(perm) % count

	blocks := make([][]int, count)
	start := 0
	for k := 0; k < count; k++ {
		size := base
		if k < rem {
			size++
		}
		blocks[k] = perm[start : start+size]
		start += size
	}
	return blocks
}

// colMoments holds pre-deletion mean and spread per column.
type colMoments struct {
	mean [panel.NumColumns]float64
	sd   [panel.NumColumns]float64
}

func columnMoments(data *panel.Dataset) colMoments {
	var m colMoments
	for c := 0; c < panel.NumColumns; c++ {
		col := data.Column(c)
		m.mean[c], _ = stats.Mean(col)
		m.sd[c], _ = stats.StandardDeviationSample(col)
	}
	return m
}

// rightTail picks the m rows of a stratum with the largest standardized sum
// over the columns the pattern keeps observed, so deletion depends only on
// values that remain in the data. Ties break by row index.
func rightTail(data *panel.Dataset, moments colMoments, block, deleted []int, m int) []int {
	drop := make(map[int]bool, len(deleted))
	for _, col := range deleted {
		drop[col] = true
	}

	type rowScore struct {
		row   int
		score float64
	}
	scored := make([]rowScore, 0, len(block))
	for _, row := range block {
		score := 0.0
		for c := 0; c < panel.NumColumns; c++ {
			if drop[c] || moments.sd[c] == 0 {
				continue
			}
			score += (data.At(row, c) - moments.mean[c]) / moments.sd[c]
		}
		scored = append(scored, rowScore{row: row, score: score})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].row < scored[j].row
	})

	chosen := make([]int, 0, m)
	for _, s := range scored[:m] {
		chosen = append(chosen, s.row)
	}
	return chosen
}
