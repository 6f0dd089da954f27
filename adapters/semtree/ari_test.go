package semtree

import (
	"errors"
	"math"
	"testing"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

func TestARIPerfectAgreementIsLabelInvariant(t *testing.T) {
	scorer := NewARIScorer()
	truth := panel.NewLabeling([]int{2, 2, 2, 3, 3, 3})
	recovered := panel.NewLabeling([]int{1, 1, 1, 0, 0, 0})

	got, err := scorer.Score(truth, recovered)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected ARI 1 for a relabeled perfect match, got %v", got)
	}
}

func TestARIUniformRecoveryScoresZero(t *testing.T) {
	scorer := NewARIScorer()
	truth := panel.NewLabeling([]int{2, 2, 3, 3})
	recovered := panel.UniformLabeling(4, 0)

	got, err := scorer.Score(truth, recovered)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if math.Abs(got) > 1e-12 {
		t.Errorf("Expected ARI 0 when recovery lumps a real partition together, got %v", got)
	}
}

func TestARIHandComputedValue(t *testing.T) {
	scorer := NewARIScorer()
	truth := panel.NewLabeling([]int{2, 2, 2, 3, 3, 3})
	recovered := panel.NewLabeling([]int{0, 0, 1, 1, 1, 1})

	// Contingency 2x2: [[2,1],[0,3]]. Together = 1+3 = 4, truth pairs = 6,
	// recovered pairs = 1+6 = 7, total pairs = 15.
	expected := (4.0 - 6.0*7.0/15.0) / ((6.0+7.0)/2.0 - 6.0*7.0/15.0)

	got, err := scorer.Score(truth, recovered)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if math.Abs(got-expected) > 1e-12 {
		t.Errorf("Expected ARI %v, got %v", expected, got)
	}
}

func TestARISymmetric(t *testing.T) {
	scorer := NewARIScorer()
	a := panel.NewLabeling([]int{2, 2, 2, 3, 3, 3, 3, 2})
	b := panel.NewLabeling([]int{0, 1, 0, 1, 1, 1, 0, 0})

	ab, err := scorer.Score(a, b)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	ba, err := scorer.Score(b, a)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("Expected symmetric ARI, got %v vs %v", ab, ba)
	}
}

func TestARIDegenerateAgreementScoresOne(t *testing.T) {
	scorer := NewARIScorer()
	truth := panel.UniformLabeling(5, 2)
	recovered := panel.UniformLabeling(5, 9)

	got, err := scorer.Score(truth, recovered)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected ARI 1 when both labelings are a single group, got %v", got)
	}
}

func TestARILengthMismatch(t *testing.T) {
	scorer := NewARIScorer()
	_, err := scorer.Score(panel.UniformLabeling(4, 2), panel.UniformLabeling(5, 2))
	if !errors.Is(err, core.ErrLabelingMismatch) {
		t.Errorf("Expected ErrLabelingMismatch for different lengths, got %v", err)
	}
}
