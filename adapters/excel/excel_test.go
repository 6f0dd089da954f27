package excel

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

func sampleTable() *study.ResultTable {
	table := &study.ResultTable{}
	table.Append(
		study.ResultRow{
			Replication: 1, SampleSize: 500, Location: study.LocationHalf, Cutpoint: 250,
			Mechanism: study.MechanismMCAR, Rate: 0.05, Method: study.MethodIgnore, ARI: 0.973214,
		},
		study.ResultRow{
			Replication: 1, SampleSize: 500, Location: study.LocationHalf, Cutpoint: 250,
			Mechanism: study.MechanismMCAR, Rate: 0.05, Method: study.MethodKNN, ARI: math.NaN(),
		},
		study.ResultRow{
			Replication: 2, SampleSize: 1000, Location: study.LocationSixth, Cutpoint: 833,
			Mechanism: study.MechanismMAR, Rate: 0.30, Method: study.MethodCART, ARI: 0,
		},
	)
	return table
}

func TestResultsRoundTrip(t *testing.T) {
	for _, name := range []string{"results.xlsx", "results.csv"} {
		path := filepath.Join(t.TempDir(), name)
		want := sampleTable()

		if err := NewWriter().WriteResults(path, want); err != nil {
			t.Fatalf("WriteResults(%s) failed: %v", name, err)
		}
		got, err := NewReader().ReadResults(path)
		if err != nil {
			t.Fatalf("ReadResults(%s) failed: %v", name, err)
		}

		if got.Len() != want.Len() {
			t.Fatalf("Expected %d rows from %s, got %d", want.Len(), name, got.Len())
		}
		for i, w := range want.Rows {
			g := got.Rows[i]
			if g.Replication != w.Replication || g.SampleSize != w.SampleSize ||
				g.Location != w.Location || g.Cutpoint != w.Cutpoint ||
				g.Mechanism != w.Mechanism || g.Rate != w.Rate || g.Method != w.Method {
				t.Errorf("Expected row %d of %s to be %+v, got %+v", i, name, w, g)
			}
			if w.Failed() {
				if !g.Failed() {
					t.Errorf("Expected NA to read back as a failed row in %s, got ARI %v", name, g.ARI)
				}
			} else if math.Abs(g.ARI-w.ARI) > 1e-9 {
				t.Errorf("Expected ARI %v in %s, got %v", w.ARI, name, g.ARI)
			}
		}
	}
}

func TestReadResultsRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "replication,n,cutpoint_location,cutpoint,mechanism,rate,strategy,ari\n1,500,1/2,250,MCAR,0.05,ignore,0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := NewReader().ReadResults(path); err == nil {
		t.Errorf("Expected an error for a renamed column, got none")
	}
}

func TestReadResultsMissingFile(t *testing.T) {
	if _, err := NewReader().ReadResults(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Errorf("Expected an error for a missing file, got none")
	}
}

func TestWriteSummaryFormatsNA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	summaries := []study.MethodSummary{
		{
			SampleSize: 500, Location: study.LocationThird, Mechanism: study.MechanismMAR,
			Rate: 0.20, Method: study.MethodFAMD,
			Replications: 98, Failures: 2, MeanARI: 0.8125, SDARI: 0.04,
		},
		{
			SampleSize: 500, Location: study.LocationThird, Mechanism: study.MechanismMAR,
			Rate: 0.20, Method: study.MethodCART,
			Replications: 0, Failures: 100, MeanARI: math.NaN(), SDARI: math.NaN(),
		},
	}

	if err := NewWriter().WriteSummary(path, summaries); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	for i, want := range SummaryHeaders {
		if rows[0][i] != want {
			t.Errorf("Expected header column %d to be %q, got %q", i, want, rows[0][i])
		}
	}
	if rows[1][7] != "0.812500" {
		t.Errorf("Expected mean_ari 0.812500, got %q", rows[1][7])
	}
	if rows[2][7] != "NA" || rows[2][8] != "NA" {
		t.Errorf("Expected NA mean and sd for an all-failed cell, got %q and %q", rows[2][7], rows[2][8])
	}
}

func TestWriteDataset(t *testing.T) {
	data := panel.NewDataset(3, panel.CovariateContinuous)
	for i := 0; i < 3; i++ {
		for c := 0; c < panel.NumColumns; c++ {
			data.Set(i, c, float64(i*10+c))
		}
	}
	data.SetMissing(1, 2)
	truth := panel.NewLabeling([]int{2, 2, 3})

	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := NewWriter().WriteDataset(path, data, truth); err != nil {
		t.Fatalf("WriteDataset failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if len(rows) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][5] != "subgroup" {
		t.Errorf("Expected trailing subgroup column, got %q", rows[0][5])
	}
	if rows[2][2] != "NA" {
		t.Errorf("Expected NA for the missing cell, got %q", rows[2][2])
	}
	if rows[3][5] != "3" {
		t.Errorf("Expected subgroup 3 on the last row, got %q", rows[3][5])
	}
}

func TestWriteDatasetRejectsMismatchedTruth(t *testing.T) {
	data := panel.NewDataset(3, panel.CovariateContinuous)
	if err := NewWriter().WriteDataset(filepath.Join(t.TempDir(), "x.csv"), data, panel.UniformLabeling(2, 2)); err == nil {
		t.Errorf("Expected an error for a truth labeling of the wrong length, got none")
	}
}

func TestSummaryPath(t *testing.T) {
	cases := map[string]string{
		"semtrees_results.xlsx": "semtrees_results_summary.xlsx",
		"out/results.csv":       "out/results_summary.csv",
	}
	for in, want := range cases {
		if got := SummaryPath(in); got != want {
			t.Errorf("Expected SummaryPath(%q) = %q, got %q", in, want, got)
		}
	}
}
