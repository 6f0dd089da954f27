package imputers

import (
	"sort"

	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// treeControl carries the usual recursive-partitioning knobs: a node splits
// only when it holds at least MinSplit rows, both children keep at least
// MinBucket rows, and the split recovers at least CP of the root sum of
// squares.
type treeControl struct {
	MinSplit  int
	MinBucket int
	CP        float64
	MaxDepth  int
	MTry      int // predictors sampled per node; 0 means all
}

func defaultTreeControl() treeControl {
	return treeControl{MinSplit: 20, MinBucket: 7, CP: 0.01, MaxDepth: 30}
}

// treeNode is one node of a fitted regression tree. Leaves keep their
// training rows so imputation can draw donors instead of means.
type treeNode struct {
	leaf      bool
	feature   int
	threshold float64
	left      int
	right     int
	mean      float64
	rows      []int
}

// regressionTree predicts one panel column from the others by recursive
// binary splits. The working panel it was grown on must be fully filled;
// the tree never sees missing predictor values.
type regressionTree struct {
	nodes   []treeNode
	control treeControl
	rootSS  float64
}

// growTree fits a regression tree over the given training rows. The target
// slice is indexed by panel row. rng is consulted only when MTry narrows
// the candidate predictors, so trees without feature sampling are fully
// deterministic.
func growTree(working *panel.Dataset, rows []int, target []float64, features []int, control treeControl, rng *rand.Rand) *regressionTree {
	t := &regressionTree{control: control}
	mean, ss := meanAndSS(target, rows)
	t.rootSS = ss
	t.grow(working, rows, target, features, mean, ss, 0, rng)
	return t
}

func (t *regressionTree) grow(working *panel.Dataset, rows []int, target []float64, features []int, mean, ss float64, depth int, rng *rand.Rand) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{leaf: true, mean: mean, rows: rows})

	if len(rows) < t.control.MinSplit || depth >= t.control.MaxDepth || ss <= 1e-12 {
		return idx
	}

	feature, threshold, gain := t.bestSplit(working, rows, target, features, ss, rng)
	if feature < 0 || gain < t.control.CP*t.rootSS {
		return idx
	}

	var left, right []int
	for _, row := range rows {
		if working.At(row, feature) <= threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	lMean, lSS := meanAndSS(target, left)
	rMean, rSS := meanAndSS(target, right)
	lIdx := t.grow(working, left, target, features, lMean, lSS, depth+1, rng)
	rIdx := t.grow(working, right, target, features, rMean, rSS, depth+1, rng)

	t.nodes[idx].leaf = false
	t.nodes[idx].feature = feature
	t.nodes[idx].threshold = threshold
	t.nodes[idx].left = lIdx
	t.nodes[idx].right = rIdx
	t.nodes[idx].rows = nil
	return idx
}

// bestSplit scans every candidate predictor for the threshold with the
// largest sum-of-squares reduction. Ties keep the earliest candidate so
// repeated fits agree.
func (t *regressionTree) bestSplit(working *panel.Dataset, rows []int, target []float64, features []int, parentSS float64, rng *rand.Rand) (int, float64, float64) {
	candidates := features
	if t.control.MTry > 0 && t.control.MTry < len(features) {
		perm := rng.Perm(len(features))
		candidates = make([]int, t.control.MTry)
		for i := range candidates {
			candidates[i] = features[perm[i]]
		}
	}

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0
	type cell struct {
		value float64
		row   int
	}
	ordered := make([]cell, len(rows))

	for _, f := range candidates {
		for i, row := range rows {
			ordered[i] = cell{value: working.At(row, f), row: row}
		}
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].value != ordered[j].value {
				return ordered[i].value < ordered[j].value
			}
			return ordered[i].row < ordered[j].row
		})

		// Prefix sums over the sorted order turn each candidate cut into
		// an O(1) gain evaluation.
		sumLeft, sumSqLeft := 0.0, 0.0
		sumAll, sumSqAll := 0.0, 0.0
		for _, c := range ordered {
			y := target[c.row]
			sumAll += y
			sumSqAll += y * y
		}

		n := len(ordered)
		for i := 0; i < n-1; i++ {
			y := target[ordered[i].row]
			sumLeft += y
			sumSqLeft += y * y

			nl := i + 1
			nr := n - nl
			if nl < t.control.MinBucket || nr < t.control.MinBucket {
				continue
			}
			if ordered[i].value == ordered[i+1].value {
				continue
			}

			sumRight := sumAll - sumLeft
			sumSqRight := sumSqAll - sumSqLeft
			ssLeft := sumSqLeft - sumLeft*sumLeft/float64(nl)
			ssRight := sumSqRight - sumRight*sumRight/float64(nr)
			gain := parentSS - ssLeft - ssRight
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (ordered[i].value + ordered[i+1].value) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

// leafFor routes a row through the fitted splits.
func (t *regressionTree) leafFor(working *panel.Dataset, row int) *treeNode {
	idx := 0
	for !t.nodes[idx].leaf {
		if working.At(row, t.nodes[idx].feature) <= t.nodes[idx].threshold {
			idx = t.nodes[idx].left
		} else {
			idx = t.nodes[idx].right
		}
	}
	return &t.nodes[idx]
}

// predict returns the leaf mean for a row.
func (t *regressionTree) predict(working *panel.Dataset, row int) float64 {
	return t.leafFor(working, row).mean
}

func meanAndSS(target []float64, rows []int) (float64, float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, row := range rows {
		sum += target[row]
	}
	mean := sum / float64(len(rows))

	ss := 0.0
	for _, row := range rows {
		d := target[row] - mean
		ss += d * d
	}
	return mean, ss
}
