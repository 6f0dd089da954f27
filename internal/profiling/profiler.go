// Package profiling summarizes panels column by column so a generated or
// imputed dataset can be eyeballed before a study consumes it.
package profiling

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// ColumnProfile summarizes the observed values of one panel column.
type ColumnProfile struct {
	Name     string  `json:"name"`
	Observed int     `json:"observed"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	SD       float64 `json:"sd"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	NormalP  float64 `json:"normal_p"`
}

// PanelProfile is the per-column summary of one dataset.
type PanelProfile struct {
	N           int             `json:"n"`
	MissingRate float64         `json:"missing_rate"`
	Columns     []ColumnProfile `json:"columns"`
}

// DataProfiler computes column summaries over panel datasets
type DataProfiler struct{}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{}
}

// ProfileDataset summarizes every column of the panel.
func (dp *DataProfiler) ProfileDataset(d *panel.Dataset) PanelProfile {
	profile := PanelProfile{
		N:           d.N(),
		MissingRate: d.MissingRate(),
	}
	for col := 0; col < panel.NumColumns; col++ {
		profile.Columns = append(profile.Columns, dp.ProfileColumn(panel.ColumnNames[col], d.Column(col)))
	}
	return profile
}

// ProfileColumn summarizes one column. NaN entries count as missing and are
// excluded from every moment.
func (dp *DataProfiler) ProfileColumn(name string, column []float64) ColumnProfile {
	observed := make([]float64, 0, len(column))
	for _, v := range column {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}

	p := ColumnProfile{
		Name:     name,
		Observed: len(observed),
		Missing:  len(column) - len(observed),
	}
	p.Mean = statOrNaN(stats.Mean, observed)
	p.SD = statOrNaN(stats.StandardDeviationSample, observed)
	p.Min = statOrNaN(stats.Min, observed)
	p.Max = statOrNaN(stats.Max, observed)
	p.Median = statOrNaN(stats.Median, observed)
	p.Skewness = sampleSkewness(observed, p.Mean, p.SD)
	p.Kurtosis = sampleKurtosis(observed, p.Mean, p.SD)
	p.NormalP = normalityP(p.Skewness, p.Kurtosis, len(observed))
	return p
}

// Render formats the profile as a console table.
func (p PanelProfile) Render() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Observed", "Missing", "Mean", "SD", "Min", "Max", "Skew", "Kurt"})
	for _, c := range p.Columns {
		t.AppendRow(table.Row{
			c.Name, c.Observed, c.Missing,
			formatStat(c.Mean), formatStat(c.SD),
			formatStat(c.Min), formatStat(c.Max),
			formatStat(c.Skewness), formatStat(c.Kurtosis),
		})
	}
	return t.Render()
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.3f", v)
}

func statOrNaN(f func(stats.Float64Data) (float64, error), data []float64) float64 {
	v, err := f(data)
	if err != nil {
		return math.NaN()
	}
	return v
}
