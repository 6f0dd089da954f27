package app

import (
	"fmt"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"

	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// SummaryService collapses the replication-level result table into one row
// per (condition, method): mean and sample SD of the ARI over usable
// replications, plus failure counts.
type SummaryService struct{}

// NewSummaryService creates a result aggregator.
func NewSummaryService() *SummaryService {
	return &SummaryService{}
}

type summaryKey struct {
	n         int
	location  study.CutpointLocation
	mechanism study.Mechanism
	rate      float64
	method    study.Method
}

// Summarize aggregates the table. Failed rows (NaN ARI) are excluded from
// the mean and SD but counted as failures. Within each condition, methods
// are ordered by descending mean ARI so the best strategy reads first.
func (s *SummaryService) Summarize(t *study.ResultTable) []study.MethodSummary {
	groups := make(map[summaryKey][]float64)
	failures := make(map[summaryKey]int)
	for _, r := range t.Rows {
		key := summaryKey{r.SampleSize, r.Location, r.Mechanism, r.Rate, r.Method}
		if r.Failed() {
			failures[key]++
			// Register the group even if every replication failed.
			if _, ok := groups[key]; !ok {
				groups[key] = nil
			}
			continue
		}
		groups[key] = append(groups[key], r.ARI)
	}

	summaries := make([]study.MethodSummary, 0, len(groups))
	for key, aris := range groups {
		summaries = append(summaries, study.MethodSummary{
			SampleSize:   key.n,
			Location:     key.location,
			Mechanism:    key.mechanism,
			Rate:         key.rate,
			Method:       key.method,
			Replications: len(aris),
			Failures:     failures[key],
			MeanARI:      meanOrNaN(aris),
			SDARI:        sdOrNaN(aris),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
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
		am, bm := rankableMean(a.MeanARI), rankableMean(b.MeanARI)
		if am != bm {
			return am > bm
		}
		return a.Method.Rank() < b.Method.Rank()
	})
	return summaries
}

// RenderTable formats summaries as a console ranking table.
func (s *SummaryService) RenderTable(summaries []study.MethodSummary) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"N", "Location", "Mechanism", "Rate", "Method", "Reps", "Failures", "Mean ARI", "SD ARI"})
	for _, sm := range summaries {
		tbl.AppendRow(table.Row{
			sm.SampleSize,
			sm.Location.String(),
			sm.Mechanism.String(),
			fmt.Sprintf("%.2f", sm.Rate),
			sm.Method.String(),
			sm.Replications,
			sm.Failures,
			formatARI(sm.MeanARI),
			formatARI(sm.SDARI),
		})
	}
	return tbl.Render()
}

func formatARI(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.4f", v)
}

// rankableMean makes NaN means sort below every real value.
func rankableMean(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}

func meanOrNaN(aris []float64) float64 {
	mean, err := stats.Mean(aris)
	if err != nil {
		return math.NaN()
	}
	return mean
}

// sdOrNaN is the sample standard deviation; it needs at least two usable
// replications.
func sdOrNaN(aris []float64) float64 {
	if len(aris) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(aris)
	if err != nil {
		return math.NaN()
	}
	return sd
}
