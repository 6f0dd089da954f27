package study

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
)

// Mechanism identifies how cells are selected for deletion.
type Mechanism string

const (
	// MechanismMCAR deletes cells completely at random.
	MechanismMCAR Mechanism = "MCAR"
	// MechanismMAR deletes cells as a function of observed values.
	MechanismMAR Mechanism = "MAR"
)

// AllMechanisms returns both mechanisms in canonical order.
func AllMechanisms() []Mechanism {
	return []Mechanism{MechanismMCAR, MechanismMAR}
}

// ParseMechanism parses a mechanism name (case-insensitive).
func ParseMechanism(s string) (Mechanism, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MCAR":
		return MechanismMCAR, nil
	case "MAR":
		return MechanismMAR, nil
	default:
		return "", fmt.Errorf("%w: unknown mechanism %q", core.ErrInvalidCondition, s)
	}
}

// String returns the canonical mechanism name.
func (m Mechanism) String() string { return string(m) }

// Rank returns the mechanism's canonical position, or -1 if unknown.
func (m Mechanism) Rank() int {
	for i, known := range AllMechanisms() {
		if m == known {
			return i
		}
	}
	return -1
}

// CutpointLocation names the nominal share of the smaller subgroup. "1/2"
// splits the sample evenly; "1/3" and "1/6" place the cutpoint off-center,
// on a side drawn per replication so neither tail is favored.
type CutpointLocation string

const (
	LocationHalf  CutpointLocation = "1/2"
	LocationThird CutpointLocation = "1/3"
	LocationSixth CutpointLocation = "1/6"
)

// AllLocations returns the cutpoint locations in canonical order.
func AllLocations() []CutpointLocation {
	return []CutpointLocation{LocationHalf, LocationThird, LocationSixth}
}

// ParseLocation parses a cutpoint location label such as "1/3".
func ParseLocation(s string) (CutpointLocation, error) {
	switch strings.TrimSpace(s) {
	case "1/2", "0.5":
		return LocationHalf, nil
	case "1/3":
		return LocationThird, nil
	case "1/6":
		return LocationSixth, nil
	default:
		return "", fmt.Errorf("%w: unknown cutpoint location %q", core.ErrInvalidCondition, s)
	}
}

// String returns the location label.
func (l CutpointLocation) String() string { return string(l) }

// Fraction returns the nominal subgroup share as a float.
func (l CutpointLocation) Fraction() float64 {
	switch l {
	case LocationHalf:
		return 1.0 / 2.0
	case LocationThird:
		return 1.0 / 3.0
	case LocationSixth:
		return 1.0 / 6.0
	default:
		return math.NaN()
	}
}

// NominalCut returns the nominal cutpoint for a sample size n, rounding
// the share to the nearest row index.
func (l CutpointLocation) NominalCut(n int) int {
	return int(math.Round(l.Fraction() * float64(n)))
}

// Candidates lists the admissible cutpoints for a sample size: the nominal
// cut and, off-center, its mirror image.
func (l CutpointLocation) Candidates(n int) []int {
	k := l.NominalCut(n)
	if l == LocationHalf {
		return []int{k}
	}
	return []int{k, n - k}
}

// Realize draws the replication's cutpoint. "1/2" is deterministic and
// consumes nothing from the stream; off-center locations pick uniformly
// between the two candidates.
func (l CutpointLocation) Realize(n int, rng *rand.Rand) int {
	cands := l.Candidates(n)
	if len(cands) == 1 {
		return cands[0]
	}
	return cands[rng.Intn(len(cands))]
}

// Rank returns the location's canonical position, or -1 if unknown.
func (l CutpointLocation) Rank() int {
	for i, known := range AllLocations() {
		if l == known {
			return i
		}
	}
	return -1
}

// Condition is one cell of the simulation grid.
type Condition struct {
	SampleSize int              `json:"n"`
	Location   CutpointLocation `json:"cutpoint_location"`
	Mechanism  Mechanism        `json:"mechanism"`
	Rate       float64          `json:"rate"`
}

// Key returns a compact, stable identifier used in logs and stream names.
func (c Condition) Key() string {
	return fmt.Sprintf("n=%d loc=%s mech=%s rate=%.2f", c.SampleSize, c.Location, c.Mechanism, c.Rate)
}

// RatePercent returns the missingness rate as a rounded percentage. Seed
// derivation uses the integer form so float formatting can never drift.
func (c Condition) RatePercent() int {
	return int(math.Round(c.Rate * 100))
}

// Validate checks the condition's fields.
func (c Condition) Validate() error {
	if c.SampleSize < 10 {
		return fmt.Errorf("%w: sample size %d too small", core.ErrInvalidCondition, c.SampleSize)
	}
	if c.Location.Rank() < 0 {
		return fmt.Errorf("%w: unknown cutpoint location %q", core.ErrInvalidCondition, c.Location)
	}
	if c.Mechanism.Rank() < 0 {
		return fmt.Errorf("%w: unknown mechanism %q", core.ErrInvalidCondition, c.Mechanism)
	}
	if c.Rate <= 0 || c.Rate >= 1 {
		return fmt.Errorf("%w: rate %.3f outside (0,1)", core.ErrInvalidCondition, c.Rate)
	}
	if cut := c.Location.NominalCut(c.SampleSize); cut < 2 || cut > c.SampleSize-2 {
		return fmt.Errorf("%w: subgroup degenerate for n=%d loc=%s",
			core.ErrCutpointDegenerate, c.SampleSize, c.Location)
	}
	return nil
}

// Grid spans the factorial design of the study.
type Grid struct {
	SampleSizes []int              `json:"sample_sizes"`
	Locations   []CutpointLocation `json:"cutpoint_locations"`
	Mechanisms  []Mechanism        `json:"mechanisms"`
	Rates       []float64          `json:"rates"`
}

// DefaultGrid returns the full factorial design:
// {500, 1000} x {1/2, 1/3, 1/6} x {MCAR, MAR} x {0.05, 0.10, 0.20, 0.30}.
func DefaultGrid() Grid {
	return Grid{
		SampleSizes: []int{500, 1000},
		Locations:   AllLocations(),
		Mechanisms:  AllMechanisms(),
		Rates:       []float64{0.05, 0.10, 0.20, 0.30},
	}
}

// Enumerate expands the grid into conditions in canonical order:
// sample size, then location, then mechanism, then rate.
func (g Grid) Enumerate() []Condition {
	conds := make([]Condition, 0, g.Size())
	for _, n := range g.SampleSizes {
		for _, loc := range g.Locations {
			for _, mech := range g.Mechanisms {
				for _, rate := range g.Rates {
					conds = append(conds, Condition{
						SampleSize: n,
						Location:   loc,
						Mechanism:  mech,
						Rate:       rate,
					})
				}
			}
		}
	}
	return conds
}

// Size returns the number of grid cells.
func (g Grid) Size() int {
	return len(g.SampleSizes) * len(g.Locations) * len(g.Mechanisms) * len(g.Rates)
}

// Validate checks every axis and every resulting condition.
func (g Grid) Validate() error {
	if len(g.SampleSizes) == 0 || len(g.Locations) == 0 || len(g.Mechanisms) == 0 || len(g.Rates) == 0 {
		return fmt.Errorf("%w: every grid axis needs at least one level", core.ErrInvalidGrid)
	}
	for _, c := range g.Enumerate() {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
