package panel

import (
	"fmt"
	"math"
	"strings"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
)

// Panel layout: four repeated measures followed by the splitting covariate.
const (
	NumWaves        = 4
	NumColumns      = NumWaves + 1
	CovariateColumn = NumWaves
)

// ColumnNames lists the panel columns in storage order.
var ColumnNames = [NumColumns]string{"y1", "y2", "y3", "y4", "cov1"}

// ColumnIndex resolves a column name to its index.
func ColumnIndex(name string) (int, error) {
	for i, c := range ColumnNames {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", core.ErrColumnNotFound, name)
}

// CovariateKind distinguishes the splitting covariate's scale.
type CovariateKind string

const (
	CovariateContinuous CovariateKind = "continuous"
	CovariateBinary     CovariateKind = "binary"
)

// ParseCovariateKind parses a covariate kind name.
func ParseCovariateKind(s string) (CovariateKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous", "":
		return CovariateContinuous, nil
	case "binary":
		return CovariateBinary, nil
	default:
		return "", fmt.Errorf("invalid covariate kind %q", s)
	}
}

// String returns the kind name.
func (k CovariateKind) String() string { return string(k) }

// Dataset is a dense N x 5 panel. Missing cells are stored as NaN, which
// keeps the matrix rectangular and lets numeric code test observedness
// with a single math.IsNaN call.
type Dataset struct {
	cells []float64 // row-major
	n     int
	kind  CovariateKind
}

// NewDataset allocates a zero-filled panel with n rows.
func NewDataset(n int, kind CovariateKind) *Dataset {
	return &Dataset{
		cells: make([]float64, n*NumColumns),
		n:     n,
		kind:  kind,
	}
}

// N returns the row count.
func (d *Dataset) N() int { return d.n }

// Kind returns the covariate's scale.
func (d *Dataset) Kind() CovariateKind { return d.kind }

// At returns the cell value; NaN means missing.
func (d *Dataset) At(row, col int) float64 {
	return d.cells[row*NumColumns+col]
}

// Set writes a cell value.
func (d *Dataset) Set(row, col int, v float64) {
	d.cells[row*NumColumns+col] = v
}

// SetMissing marks a cell as missing.
func (d *Dataset) SetMissing(row, col int) {
	d.cells[row*NumColumns+col] = math.NaN()
}

// IsMissing reports whether a cell is missing.
func (d *Dataset) IsMissing(row, col int) bool {
	return math.IsNaN(d.cells[row*NumColumns+col])
}

// Row copies one row into a fresh slice.
func (d *Dataset) Row(row int) []float64 {
	out := make([]float64, NumColumns)
	copy(out, d.cells[row*NumColumns:(row+1)*NumColumns])
	return out
}

// Column copies one column into a fresh slice.
func (d *Dataset) Column(col int) []float64 {
	out := make([]float64, d.n)
	for i := 0; i < d.n; i++ {
		out[i] = d.cells[i*NumColumns+col]
	}
	return out
}

// Covariate copies the covariate column.
func (d *Dataset) Covariate() []float64 {
	return d.Column(CovariateColumn)
}

// Clone deep-copies the panel.
func (d *Dataset) Clone() *Dataset {
	out := NewDataset(d.n, d.kind)
	copy(out.cells, d.cells)
	return out
}

// WaveMask packs the row's observed repeated measures into bits 0..3.
// Bit t is set when y_{t+1} is observed.
func (d *Dataset) WaveMask(row int) uint8 {
	var mask uint8
	for t := 0; t < NumWaves; t++ {
		if !d.IsMissing(row, t) {
			mask |= 1 << uint(t)
		}
	}
	return mask
}

// MissingCells counts missing cells over the whole panel.
func (d *Dataset) MissingCells() int {
	count := 0
	for _, v := range d.cells {
		if math.IsNaN(v) {
			count++
		}
	}
	return count
}

// MissingRate returns the missing-cell share over all N x 5 cells.
func (d *Dataset) MissingRate() float64 {
	if d.n == 0 {
		return 0
	}
	return float64(d.MissingCells()) / float64(len(d.cells))
}

// IsComplete reports whether no cell is missing.
func (d *Dataset) IsComplete() bool {
	return d.MissingCells() == 0
}

// ObservedValues returns the observed entries of a column together with
// their row indices.
func (d *Dataset) ObservedValues(col int) (rows []int, values []float64) {
	for i := 0; i < d.n; i++ {
		if !d.IsMissing(i, col) {
			rows = append(rows, i)
			values = append(values, d.At(i, col))
		}
	}
	return rows, values
}

// Hash fingerprints the panel contents for audit trails.
func (d *Dataset) Hash() core.DatasetHash {
	return core.ComputeDatasetHash(ColumnNames[:], d.cells)
}

// Validate checks structural invariants: a finite, never-missing covariate
// and no infinities anywhere.
func (d *Dataset) Validate() error {
	for i := 0; i < d.n; i++ {
		if d.IsMissing(i, CovariateColumn) {
			return fmt.Errorf("%w: covariate missing at row %d", core.ErrDatasetShape, i)
		}
		for j := 0; j < NumColumns; j++ {
			if v := d.At(i, j); math.IsInf(v, 0) {
				return fmt.Errorf("%w: infinite value at row %d col %s", core.ErrDatasetShape, i, ColumnNames[j])
			}
		}
	}
	return nil
}
