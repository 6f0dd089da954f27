package panel

import (
	"math"
	"testing"
)

// TestDatasetCells tests cell access and missingness marking
func TestDatasetCells(t *testing.T) {
	ds := NewDataset(3, CovariateContinuous)
	ds.Set(0, 0, 1.5)
	ds.Set(1, 2, -4.0)
	ds.SetMissing(1, 3)

	if got := ds.At(0, 0); got != 1.5 {
		t.Errorf("Expected 1.5, got %v", got)
	}
	if !ds.IsMissing(1, 3) {
		t.Error("Expected cell (1,3) to be missing")
	}
	if ds.IsMissing(1, 2) {
		t.Error("Expected cell (1,2) to be observed")
	}
	if ds.N() != 3 {
		t.Errorf("Expected 3 rows, got %d", ds.N())
	}
}

// TestWaveMask tests the observed-wave bitmask
func TestWaveMask(t *testing.T) {
	ds := NewDataset(2, CovariateContinuous)
	for c := 0; c < NumColumns; c++ {
		ds.Set(0, c, 1.0)
		ds.Set(1, c, 1.0)
	}
	ds.SetMissing(1, 2)
	ds.SetMissing(1, 3)

	if got := ds.WaveMask(0); got != 0b1111 {
		t.Errorf("Expected full mask 1111, got %04b", got)
	}
	if got := ds.WaveMask(1); got != 0b0011 {
		t.Errorf("Expected monotone mask 0011, got %04b", got)
	}
}

// TestMissingRate tests rate accounting over all cells
func TestMissingRate(t *testing.T) {
	ds := NewDataset(4, CovariateContinuous)
	ds.SetMissing(0, 1)
	ds.SetMissing(2, 3)

	if got := ds.MissingCells(); got != 2 {
		t.Errorf("Expected 2 missing cells, got %d", got)
	}
	want := 2.0 / 20.0
	if got := ds.MissingRate(); math.Abs(got-want) > 1e-15 {
		t.Errorf("Expected rate %.3f, got %.3f", want, got)
	}
	if ds.IsComplete() {
		t.Error("Expected incomplete dataset")
	}
}

// TestCloneIndependence tests deep copies do not alias
func TestCloneIndependence(t *testing.T) {
	ds := NewDataset(2, CovariateBinary)
	ds.Set(0, 0, 7.0)

	clone := ds.Clone()
	clone.Set(0, 0, -1.0)
	clone.SetMissing(1, 1)

	if ds.At(0, 0) != 7.0 {
		t.Error("Clone write leaked into original")
	}
	if ds.IsMissing(1, 1) {
		t.Error("Clone missingness leaked into original")
	}
	if clone.Kind() != CovariateBinary {
		t.Errorf("Expected clone to keep covariate kind, got %s", clone.Kind())
	}
}

// TestValidateCovariate tests the covariate must stay observed and finite
func TestValidateCovariate(t *testing.T) {
	ds := NewDataset(2, CovariateContinuous)
	if err := ds.Validate(); err != nil {
		t.Fatalf("Zero-filled dataset should validate: %v", err)
	}

	ds.SetMissing(1, CovariateColumn)
	if err := ds.Validate(); err == nil {
		t.Error("Expected missing covariate to fail validation")
	}

	ds2 := NewDataset(1, CovariateContinuous)
	ds2.Set(0, 1, math.Inf(1))
	if err := ds2.Validate(); err == nil {
		t.Error("Expected infinite cell to fail validation")
	}
}

// TestObservedValues tests observed extraction with row indices
func TestObservedValues(t *testing.T) {
	ds := NewDataset(4, CovariateContinuous)
	ds.Set(0, 1, 10)
	ds.SetMissing(1, 1)
	ds.Set(2, 1, 30)
	ds.SetMissing(3, 1)

	rows, values := ds.ObservedValues(1)
	if len(rows) != 2 || rows[0] != 0 || rows[1] != 2 {
		t.Errorf("Expected observed rows [0 2], got %v", rows)
	}
	if values[0] != 10 || values[1] != 30 {
		t.Errorf("Expected values [10 30], got %v", values)
	}
}

// TestColumnIndex tests name resolution
func TestColumnIndex(t *testing.T) {
	idx, err := ColumnIndex("cov1")
	if err != nil || idx != CovariateColumn {
		t.Errorf("Expected cov1 at index %d, got %d (err %v)", CovariateColumn, idx, err)
	}
	if _, err := ColumnIndex("y9"); err == nil {
		t.Error("Expected error for unknown column")
	}
}

// TestDatasetHashSensitivity tests the audit hash reacts to cell changes
func TestDatasetHashSensitivity(t *testing.T) {
	a := NewDataset(2, CovariateContinuous)
	b := NewDataset(2, CovariateContinuous)
	if a.Hash() != b.Hash() {
		t.Error("Expected identical hashes for identical panels")
	}
	b.Set(1, 1, 0.001)
	if a.Hash() == b.Hash() {
		t.Error("Expected hash to change with a cell")
	}
}
