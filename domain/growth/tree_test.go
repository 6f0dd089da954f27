package growth

import (
	"testing"
)

// TestTreeAssignNoSplit tests the degenerate single-leaf assignment
func TestTreeAssignNoSplit(t *testing.T) {
	tree := &Tree{Split: false, Root: Leaf{N: 4}}
	labels := tree.Assign([]float64{-1, 0, 1, 2})

	if tree.Leaves() != 1 {
		t.Errorf("Expected 1 leaf, got %d", tree.Leaves())
	}
	for i, l := range labels {
		if l != 0 {
			t.Errorf("Row %d: expected leaf 0, got %d", i, l)
		}
	}
}

// TestTreeAssignSplit tests threshold routing
func TestTreeAssignSplit(t *testing.T) {
	tree := &Tree{
		Split:      true,
		SplitValue: 0.25,
		Left:       &Leaf{N: 2},
		Right:      &Leaf{N: 2},
	}
	labels := tree.Assign([]float64{-1.0, 0.25, 0.26, 3.0})

	want := []int{0, 0, 1, 1}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("Row %d: expected leaf %d, got %d", i, want[i], labels[i])
		}
	}
	if tree.Leaves() != 2 {
		t.Errorf("Expected 2 leaves, got %d", tree.Leaves())
	}
}
