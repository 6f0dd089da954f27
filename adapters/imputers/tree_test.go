package imputers

import (
	"testing"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// stepPanel builds a panel whose y1 is a clean step function of the
// covariate: -1..-0.1 maps to lo, 0.1..1 maps to hi.
func stepPanel(perSide int, lo, hi float64) (*panel.Dataset, []float64) {
	n := 2 * perSide
	data := panel.NewDataset(n, panel.CovariateContinuous)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		x := -1.0 + float64(i)*0.9/float64(perSide-1)
		y := lo
		if i >= perSide {
			x = 0.1 + float64(i-perSide)*0.9/float64(perSide-1)
			y = hi
		}
		data.Set(i, 0, y)
		data.Set(i, 1, 0)
		data.Set(i, 2, 0)
		data.Set(i, 3, 0)
		data.Set(i, panel.CovariateColumn, x)
		target[i] = y
	}
	return data, target
}

// TestGrowTreeFindsCleanSplit tests exact recovery of a step function
func TestGrowTreeFindsCleanSplit(t *testing.T) {
	data, target := stepPanel(20, 0, 10)
	rows := make([]int, data.N())
	for i := range rows {
		rows[i] = i
	}

	tree := growTree(data, rows, target, []int{panel.CovariateColumn}, defaultTreeControl(), nil)

	root := tree.nodes[0]
	if root.leaf {
		t.Fatal("Expected the root to split")
	}
	if root.feature != panel.CovariateColumn {
		t.Errorf("Expected split on the covariate, got column %d", root.feature)
	}
	if !(root.threshold > -0.1 && root.threshold < 0.1) {
		t.Errorf("Expected threshold between the plateaus, got %v", root.threshold)
	}

	for i := 0; i < data.N(); i++ {
		if got := tree.predict(data, i); got != target[i] {
			t.Fatalf("Row %d: expected prediction %v, got %v", i, target[i], got)
		}
	}
}

// TestGrowTreeRespectsControls tests leaves never shrink below MinBucket
func TestGrowTreeRespectsControls(t *testing.T) {
	complete, _ := fixturePanels(t, 300, 0.10, 9)
	rows := make([]int, complete.N())
	for i := range rows {
		rows[i] = i
	}
	control := defaultTreeControl()

	tree := growTree(complete, rows, columnTarget(complete, 3), otherColumns(3), control, nil)

	leaves := 0
	for _, node := range tree.nodes {
		if !node.leaf {
			continue
		}
		leaves++
		if len(node.rows) < control.MinBucket {
			t.Errorf("Leaf with %d rows violates MinBucket %d", len(node.rows), control.MinBucket)
		}
	}
	if leaves < 2 {
		t.Error("Expected the correlated waves to produce at least one split")
	}

	// A node below MinSplit must stay a leaf even with a perfect step.
	small, target := stepPanel(8, 0, 10)
	tree = growTree(small, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		target, []int{panel.CovariateColumn}, control, nil)
	if !tree.nodes[0].leaf {
		t.Error("Expected no split below MinSplit")
	}
}

// TestGrowTreeConstantTarget tests degenerate targets stay single leaves
func TestGrowTreeConstantTarget(t *testing.T) {
	data, target := stepPanel(15, 7, 7)
	rows := make([]int, data.N())
	for i := range rows {
		rows[i] = i
	}

	tree := growTree(data, rows, target, []int{panel.CovariateColumn}, defaultTreeControl(), nil)
	if !tree.nodes[0].leaf {
		t.Error("Expected a single leaf for a constant target")
	}
	if got := tree.predict(data, 3); got != 7 {
		t.Errorf("Expected constant prediction 7, got %v", got)
	}
}
