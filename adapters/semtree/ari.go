package semtree

import (
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// ARIScorer implements ports.PartitionScorer with the adjusted Rand index.
type ARIScorer struct{}

// NewARIScorer creates the scorer.
func NewARIScorer() *ARIScorer {
	return &ARIScorer{}
}

// Score computes the adjusted Rand index between two labelings of the same
// rows. The index is label-invariant and symmetric: 1 means the partitions
// coincide up to renaming, values near 0 mean chance-level agreement.
// Degenerate pairs where the chance adjustment has nothing to correct, such
// as both labelings putting every row in one group, score 1.
func (s *ARIScorer) Score(truth, recovered panel.Labeling) (float64, error) {
	if err := truth.AlignedWith(recovered); err != nil {
		return 0, err
	}

	n := truth.Len()
	if n < 2 {
		return 1, nil
	}

	contingency := make(map[[2]int]float64)
	rowSums := make(map[int]float64)
	colSums := make(map[int]float64)
	for i := 0; i < n; i++ {
		a, b := truth.At(i), recovered.At(i)
		contingency[[2]int{a, b}]++
		rowSums[a]++
		colSums[b]++
	}

	pairs := func(c float64) float64 { return c * (c - 1) / 2 }

	together := 0.0
	for _, c := range contingency {
		together += pairs(c)
	}
	truthPairs, recoveredPairs := 0.0, 0.0
	for _, c := range rowSums {
		truthPairs += pairs(c)
	}
	for _, c := range colSums {
		recoveredPairs += pairs(c)
	}

	total := pairs(float64(n))
	expected := truthPairs * recoveredPairs / total
	maxIndex := (truthPairs + recoveredPairs) / 2
	if maxIndex == expected {
		return 1, nil
	}
	return (together - expected) / (maxIndex - expected), nil
}
