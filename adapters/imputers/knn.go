package imputers

import (
	"context"
	"math"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/errors"
)

// KNNImputer fills each missing cell with the mean of the k nearest donors.
// Distances are range-scaled over the columns two rows share, so columns on
// different scales weigh equally and partially observed rows stay
// comparable.
type KNNImputer struct {
	k int
}

// NewKNNImputer creates the nearest-neighbour strategy with k=5.
func NewKNNImputer() *KNNImputer {
	return &KNNImputer{k: 5}
}

// Method identifies the strategy.
func (im *KNNImputer) Method() study.Method { return study.MethodKNN }

// Impute fills every missing cell from donor rows that observe it. The
// strategy is fully deterministic; the stream is accepted for interface
// symmetry but never consulted.
func (im *KNNImputer) Impute(ctx context.Context, data *panel.Dataset, rng *rand.Rand) (*panel.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := data.Clone()
	if data.IsComplete() {
		return out, nil
	}

	ranges := columnRanges(data)

	type donor struct {
		row  int
		dist float64
	}
	donors := make([]donor, 0, data.N())

	for i := 0; i < data.N(); i++ {
		if rowComplete(data, i) {
			continue
		}

		donors = donors[:0]
		for j := 0; j < data.N(); j++ {
			if j == i {
				continue
			}
			if d, ok := rowDistance(data, ranges, i, j); ok {
				donors = append(donors, donor{row: j, dist: d})
			}
		}
		sort.Slice(donors, func(a, b int) bool {
			if donors[a].dist != donors[b].dist {
				return donors[a].dist < donors[b].dist
			}
			return donors[a].row < donors[b].row
		})

		for c := 0; c < panel.NumColumns; c++ {
			if !data.IsMissing(i, c) {
				continue
			}

			sum, found := 0.0, 0
			for _, d := range donors {
				if data.IsMissing(d.row, c) {
					continue
				}
				sum += data.At(d.row, c)
				found++
				if found == im.k {
					break
				}
			}

			if found > 0 {
				out.Set(i, c, sum/float64(found))
				continue
			}
			// No donor observes the column alongside this row; fall back
			// to the column mean.
			mean, err := observedMean(data, c)
			if err != nil {
				return nil, errors.ImputationFailure(im.Method().String(), err)
			}
			out.Set(i, c, mean)
		}
	}
	return out, nil
}

// columnRanges returns max-min of the observed values per column. Constant
// or fully-missing columns get range 0 and drop out of distances.
func columnRanges(data *panel.Dataset) [panel.NumColumns]float64 {
	var ranges [panel.NumColumns]float64
	for c := 0; c < panel.NumColumns; c++ {
		_, values := data.ObservedValues(c)
		if len(values) == 0 {
			continue
		}
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		ranges[c] = hi - lo
	}
	return ranges
}

// rowDistance is the range-scaled mean squared difference over the columns
// both rows observe. It reports false when the rows share no usable column.
func rowDistance(data *panel.Dataset, ranges [panel.NumColumns]float64, i, j int) (float64, bool) {
	sum, shared := 0.0, 0
	for c := 0; c < panel.NumColumns; c++ {
		if ranges[c] == 0 || data.IsMissing(i, c) || data.IsMissing(j, c) {
			continue
		}
		d := (data.At(i, c) - data.At(j, c)) / ranges[c]
		sum += d * d
		shared++
	}
	if shared == 0 {
		return 0, false
	}
	return math.Sqrt(sum / float64(shared)), true
}

func rowComplete(data *panel.Dataset, row int) bool {
	for c := 0; c < panel.NumColumns; c++ {
		if data.IsMissing(row, c) {
			return false
		}
	}
	return true
}
