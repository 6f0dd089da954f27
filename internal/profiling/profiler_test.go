package profiling

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/Jincheol-Lim/SEMtrees/internal/testkit"
)

func TestProfileColumnMoments(t *testing.T) {
	dp := NewDataProfiler()
	col := []float64{1, 2, 3, 4, math.NaN(), 5}

	p := dp.ProfileColumn("y1", col)

	if p.Observed != 5 || p.Missing != 1 {
		t.Errorf("Expected 5 observed and 1 missing, got %d and %d", p.Observed, p.Missing)
	}
	if math.Abs(p.Mean-3.0) > 1e-12 {
		t.Errorf("Expected mean 3.0, got %v", p.Mean)
	}
	if math.Abs(p.SD-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("Expected sample SD sqrt(2.5), got %v", p.SD)
	}
	if p.Min != 1 || p.Max != 5 {
		t.Errorf("Expected min 1 and max 5, got %v and %v", p.Min, p.Max)
	}
	if math.Abs(p.Median-3.0) > 1e-12 {
		t.Errorf("Expected median 3.0, got %v", p.Median)
	}
	if math.Abs(p.Skewness) > 1e-12 {
		t.Errorf("Expected zero skewness for a symmetric column, got %v", p.Skewness)
	}
	if math.Abs(p.Kurtosis-1.088) > 1e-9 {
		t.Errorf("Expected kurtosis 1.088, got %v", p.Kurtosis)
	}
	if !math.IsNaN(p.NormalP) {
		t.Errorf("Expected NaN normality p below 8 observations, got %v", p.NormalP)
	}
}

func TestProfileColumnAllMissing(t *testing.T) {
	dp := NewDataProfiler()

	p := dp.ProfileColumn("y2", []float64{math.NaN(), math.NaN()})

	if p.Observed != 0 || p.Missing != 2 {
		t.Errorf("Expected 0 observed and 2 missing, got %d and %d", p.Observed, p.Missing)
	}
	for name, v := range map[string]float64{
		"mean": p.Mean, "sd": p.SD, "min": p.Min, "max": p.Max,
		"median": p.Median, "skewness": p.Skewness, "kurtosis": p.Kurtosis,
	} {
		if !math.IsNaN(v) {
			t.Errorf("Expected NaN %s for an empty column, got %v", name, v)
		}
	}
}

func TestProfileDatasetCountsMissing(t *testing.T) {
	kit := testkit.NewTestKit(31)
	cond := kit.Condition(200)
	ctx := context.Background()

	gen, err := kit.GeneratePanel(ctx, cond, 1, 0)
	if err != nil {
		t.Fatalf("Expected panel generation to succeed, got %v", err)
	}
	amputed, err := kit.AmputePanel(ctx, gen.Data, cond, 1)
	if err != nil {
		t.Fatalf("Expected amputation to succeed, got %v", err)
	}

	profile := NewDataProfiler().ProfileDataset(amputed)

	if profile.N != 200 {
		t.Errorf("Expected N 200, got %d", profile.N)
	}
	if len(profile.Columns) != 5 {
		t.Fatalf("Expected 5 column profiles, got %d", len(profile.Columns))
	}
	if cov := profile.Columns[4]; cov.Missing != 0 {
		t.Errorf("Expected covariate column to have no missing cells, got %d", cov.Missing)
	}

	totalMissing := 0
	for _, c := range profile.Columns {
		totalMissing += c.Missing
	}
	if totalMissing != amputed.MissingCells() {
		t.Errorf("Expected %d missing cells across columns, got %d", amputed.MissingCells(), totalMissing)
	}
	if math.Abs(profile.MissingRate-amputed.MissingRate()) > 1e-12 {
		t.Errorf("Expected missing rate %v, got %v", amputed.MissingRate(), profile.MissingRate)
	}
}

func TestNormalityPStaysInUnitInterval(t *testing.T) {
	kit := testkit.NewTestKit(47)
	cond := kit.Condition(500)

	gen, err := kit.GeneratePanel(context.Background(), cond, 1, 0)
	if err != nil {
		t.Fatalf("Expected panel generation to succeed, got %v", err)
	}

	profile := NewDataProfiler().ProfileDataset(gen.Data)
	for _, c := range profile.Columns[:4] {
		if math.IsNaN(c.NormalP) || c.NormalP < 0 || c.NormalP > 1 {
			t.Errorf("Expected normality p in [0,1] for column %s, got %v", c.Name, c.NormalP)
		}
	}
}

func TestRenderShowsColumnsAndNA(t *testing.T) {
	dp := NewDataProfiler()
	profile := PanelProfile{
		N: 2,
		Columns: []ColumnProfile{
			dp.ProfileColumn("y1", []float64{math.NaN(), math.NaN()}),
			dp.ProfileColumn("cov1", []float64{0.5, 1.5}),
		},
	}

	out := profile.Render()
	if !strings.Contains(out, "y1") || !strings.Contains(out, "cov1") {
		t.Errorf("Expected rendered profile to name both columns, got %q", out)
	}
	if !strings.Contains(out, "NA") {
		t.Errorf("Expected NA for an all-missing column, got %q", out)
	}
	if !strings.Contains(out, "1.000") {
		t.Errorf("Expected formatted mean 1.000 for cov1, got %q", out)
	}
}
