package study

import (
	"math"
	"sort"
)

// ResultRow is one replication-level outcome: how well one method recovered
// the planted subgroups in one simulated dataset.
type ResultRow struct {
	Replication int              `json:"replication"`
	SampleSize  int              `json:"n"`
	Location    CutpointLocation `json:"cutpoint_location"`
	Cutpoint    int              `json:"cutpoint"` // realized subgroup boundary row index
	Mechanism   Mechanism        `json:"mechanism"`
	Rate        float64          `json:"rate"`
	Method      Method           `json:"method"`

	// ARI is NaN when the pipeline failed for this cell and method.
	ARI  float64 `json:"ari"`
	Note string  `json:"note,omitempty"`
}

// Condition reconstructs the grid cell this row belongs to.
func (r ResultRow) Condition() Condition {
	return Condition{
		SampleSize: r.SampleSize,
		Location:   r.Location,
		Mechanism:  r.Mechanism,
		Rate:       r.Rate,
	}
}

// Failed reports whether the row records a pipeline failure.
func (r ResultRow) Failed() bool {
	return math.IsNaN(r.ARI)
}

// ResultTable is the flat result set of a study.
type ResultTable struct {
	Rows []ResultRow `json:"rows"`
}

// Append adds rows to the table.
func (t *ResultTable) Append(rows ...ResultRow) {
	t.Rows = append(t.Rows, rows...)
}

// Len returns the number of rows.
func (t *ResultTable) Len() int { return len(t.Rows) }

// Failures counts rows with no usable ARI.
func (t *ResultTable) Failures() int {
	count := 0
	for _, r := range t.Rows {
		if r.Failed() {
			count++
		}
	}
	return count
}

// Sort orders rows canonically: sample size, cutpoint location, mechanism,
// rate, replication, then method order. Two runs of the same study sort to
// identical tables regardless of worker scheduling.
func (t *ResultTable) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if a.SampleSize != b.SampleSize {
			return a.SampleSize < b.SampleSize
		}
		if ar, br := a.Location.Rank(), b.Location.Rank(); ar != br {
			return ar < br
		}
		if ar, br := a.Mechanism.Rank(), b.Mechanism.Rank(); ar != br {
			return ar < br
		}
		if a.Rate != b.Rate {
			return a.Rate < b.Rate
		}
		if a.Replication != b.Replication {
			return a.Replication < b.Replication
		}
		return a.Method.Rank() < b.Method.Rank()
	})
}

// MethodSummary aggregates one method within one grid cell.
type MethodSummary struct {
	SampleSize int              `json:"n"`
	Location   CutpointLocation `json:"cutpoint_location"`
	Mechanism  Mechanism        `json:"mechanism"`
	Rate       float64          `json:"rate"`
	Method     Method           `json:"method"`

	Replications int     `json:"replications"` // rows with a usable ARI
	Failures     int     `json:"failures"`
	MeanARI      float64 `json:"mean_ari"`
	SDARI        float64 `json:"sd_ari"`
}

// Condition reconstructs the summary's grid cell.
func (s MethodSummary) Condition() Condition {
	return Condition{
		SampleSize: s.SampleSize,
		Location:   s.Location,
		Mechanism:  s.Mechanism,
		Rate:       s.Rate,
	}
}
