package panel

import (
	"fmt"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
)

// Subgroup labels used by the data generator: rows before the cutpoint get
// LabelBelow, rows at or after it LabelAbove. The values are arbitrary
// identifiers, not ordinals; partition comparison is label-invariant.
const (
	LabelBelow = 2
	LabelAbove = 3
)

// Labeling assigns each panel row to a subgroup.
type Labeling struct {
	labels []int
}

// NewLabeling wraps a label vector. The slice is copied.
func NewLabeling(labels []int) Labeling {
	out := make([]int, len(labels))
	copy(out, labels)
	return Labeling{labels: out}
}

// UniformLabeling labels every row identically, as a degenerate one-leaf
// tree does.
func UniformLabeling(n, label int) Labeling {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = label
	}
	return Labeling{labels: labels}
}

// Len returns the number of rows covered.
func (l Labeling) Len() int { return len(l.labels) }

// At returns the label of row i.
func (l Labeling) At(i int) int { return l.labels[i] }

// Labels copies the label vector.
func (l Labeling) Labels() []int {
	out := make([]int, len(l.labels))
	copy(out, l.labels)
	return out
}

// Counts tallies rows per label.
func (l Labeling) Counts() map[int]int {
	counts := make(map[int]int)
	for _, v := range l.labels {
		counts[v]++
	}
	return counts
}

// Groups returns the number of distinct labels.
func (l Labeling) Groups() int {
	return len(l.Counts())
}

// AlignedWith checks that two labelings cover the same rows.
func (l Labeling) AlignedWith(other Labeling) error {
	if l.Len() != other.Len() {
		return fmt.Errorf("%w: %d vs %d rows", core.ErrLabelingMismatch, l.Len(), other.Len())
	}
	return nil
}
