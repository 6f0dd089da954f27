package imputers

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// missingCell identifies one originally-missing position.
type missingCell struct {
	row int
	col int
}

// missingByColumn lists the originally-missing rows of every column.
func missingByColumn(data *panel.Dataset) [panel.NumColumns][]int {
	var missing [panel.NumColumns][]int
	for c := 0; c < panel.NumColumns; c++ {
		for i := 0; i < data.N(); i++ {
			if data.IsMissing(i, c) {
				missing[c] = append(missing[c], i)
			}
		}
	}
	return missing
}

// columnsByMissingness returns the indices of columns that have missing
// cells, ordered from least to most missing. Iterative imputers fill the
// easiest columns first so later fits see better predictors.
func columnsByMissingness(missing [panel.NumColumns][]int) []int {
	var cols []int
	for c := range missing {
		if len(missing[c]) > 0 {
			cols = append(cols, c)
		}
	}
	sort.SliceStable(cols, func(i, j int) bool {
		return len(missing[cols[i]]) < len(missing[cols[j]])
	})
	return cols
}

// observedMean averages the observed cells of one column.
func observedMean(data *panel.Dataset, col int) (float64, error) {
	_, values := data.ObservedValues(col)
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: column %s has no observed values", core.ErrInsufficientData, panel.ColumnNames[col])
	}
	mean, _ := stats.Mean(values)
	return mean, nil
}

// meanFill returns a copy of the panel with every missing cell replaced by
// its column's observed mean, the usual starting point for iterative
// imputers.
func meanFill(data *panel.Dataset) (*panel.Dataset, error) {
	working := data.Clone()
	for c := 0; c < panel.NumColumns; c++ {
		var mean float64
		computed := false
		for i := 0; i < data.N(); i++ {
			if !data.IsMissing(i, c) {
				continue
			}
			if !computed {
				var err error
				if mean, err = observedMean(data, c); err != nil {
					return nil, err
				}
				computed = true
			}
			working.Set(i, c, mean)
		}
	}
	return working, nil
}

// otherColumns lists every column except the target.
func otherColumns(target int) []int {
	features := make([]int, 0, panel.NumColumns-1)
	for c := 0; c < panel.NumColumns; c++ {
		if c != target {
			features = append(features, c)
		}
	}
	return features
}

// columnTarget copies one column's current values into a row-indexed slice
// for tree fitting.
func columnTarget(data *panel.Dataset, col int) []float64 {
	target := make([]float64, data.N())
	for i := range target {
		target[i] = data.At(i, col)
	}
	return target
}
