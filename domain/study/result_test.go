package study

import (
	"math"
	"testing"
)

// TestResultTableSort tests canonical row ordering
func TestResultTableSort(t *testing.T) {
	table := &ResultTable{}
	table.Append(
		ResultRow{Replication: 2, SampleSize: 1000, Location: LocationHalf, Mechanism: MechanismMCAR, Rate: 0.05, Method: MethodCART, ARI: 0.5},
		ResultRow{Replication: 1, SampleSize: 500, Location: LocationSixth, Mechanism: MechanismMAR, Rate: 0.30, Method: MethodIgnore, ARI: 0.2},
		ResultRow{Replication: 1, SampleSize: 500, Location: LocationHalf, Mechanism: MechanismMCAR, Rate: 0.05, Method: MethodKNN, ARI: 0.9},
		ResultRow{Replication: 1, SampleSize: 500, Location: LocationHalf, Mechanism: MechanismMCAR, Rate: 0.05, Method: MethodIgnore, ARI: 0.8},
	)

	table.Sort()

	if table.Rows[0].Method != MethodIgnore || table.Rows[0].SampleSize != 500 {
		t.Errorf("Expected ignore/n=500 first, got %+v", table.Rows[0])
	}
	if table.Rows[1].Method != MethodKNN {
		t.Errorf("Expected knn second (method order within cell), got %+v", table.Rows[1])
	}
	if table.Rows[2].Location != LocationSixth {
		t.Errorf("Expected 1/6 location third (n=500 before n=1000), got %+v", table.Rows[2])
	}
	if table.Rows[3].SampleSize != 1000 {
		t.Errorf("Expected n=1000 last, got %+v", table.Rows[3])
	}
}

// TestResultTableFailures tests failure counting via NaN ARI
func TestResultTableFailures(t *testing.T) {
	table := &ResultTable{}
	table.Append(
		ResultRow{Method: MethodIgnore, ARI: 0.75},
		ResultRow{Method: MethodFAMD, ARI: math.NaN(), Note: "model fitting failure"},
		ResultRow{Method: MethodCART, ARI: 0.0},
	)

	if got := table.Failures(); got != 1 {
		t.Errorf("Expected 1 failure, got %d", got)
	}
	if !table.Rows[1].Failed() {
		t.Error("Expected NaN row to report failure")
	}
	if table.Rows[2].Failed() {
		t.Error("Expected zero ARI to count as success")
	}
}

// TestResultRowCondition tests grid-cell reconstruction from a row
func TestResultRowCondition(t *testing.T) {
	row := ResultRow{
		Replication: 7, SampleSize: 1000, Location: LocationThird,
		Mechanism: MechanismMAR, Rate: 0.20, Method: MethodFAMD, ARI: 0.4,
	}
	cond := row.Condition()
	expected := Condition{SampleSize: 1000, Location: LocationThird, Mechanism: MechanismMAR, Rate: 0.20}
	if cond != expected {
		t.Errorf("Expected condition %+v, got %+v", expected, cond)
	}
	if err := cond.Validate(); err != nil {
		t.Errorf("Reconstructed condition should be valid: %v", err)
	}
}
