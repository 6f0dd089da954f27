package study

import (
	"fmt"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/growth"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// Config collects every knob of a study run. A Config plus the code version
// fully determines the result table.
type Config struct {
	Replications int   `json:"replications"`
	Seed         int64 `json:"seed"`

	Grid      Grid                `json:"grid"`
	Methods   []Method            `json:"methods"`
	Covariate panel.CovariateKind `json:"covariate"`

	Population growth.PopulationSpec `json:"population"`

	// Alpha is the significance level of the split test.
	Alpha float64 `json:"alpha"`
	// NullDraws is the Monte Carlo size of the simulated supLM null.
	NullDraws int `json:"null_draws"`

	// Workers bounds cell-level parallelism. Zero means one per CPU.
	Workers int `json:"workers"`
}

// DefaultConfig returns the full study design with its published defaults.
func DefaultConfig() Config {
	return Config{
		Replications: 100,
		Seed:         2024,
		Grid:         DefaultGrid(),
		Methods:      AllMethods(),
		Covariate:    panel.CovariateContinuous,
		Population:   growth.DefaultPopulation(),
		Alpha:        0.05,
		NullDraws:    1000,
		Workers:      0,
	}
}

// Conditions expands the grid in canonical order.
func (c Config) Conditions() []Condition {
	return c.Grid.Enumerate()
}

// TotalCells returns conditions x replications.
func (c Config) TotalCells() int {
	return c.Grid.Size() * c.Replications
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if c.Replications < 1 {
		return core.NewValidationError("replications", fmt.Sprintf("must be >= 1, got %d", c.Replications))
	}
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if len(c.Methods) == 0 {
		return core.NewValidationError("methods", "at least one method required")
	}
	seen := make(map[Method]bool, len(c.Methods))
	for _, m := range c.Methods {
		if m.Rank() < 0 {
			return core.NewValidationError("methods", fmt.Sprintf("unknown method %q", m))
		}
		if seen[m] {
			return core.NewValidationError("methods", fmt.Sprintf("duplicate method %q", m))
		}
		seen[m] = true
	}
	if c.Covariate != panel.CovariateContinuous && c.Covariate != panel.CovariateBinary {
		return core.NewValidationError("covariate", fmt.Sprintf("unknown kind %q", c.Covariate))
	}
	if err := c.Population.Validate(); err != nil {
		return err
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return core.NewValidationError("alpha", fmt.Sprintf("must be in (0,1), got %.3f", c.Alpha))
	}
	if c.NullDraws < 100 {
		return core.NewValidationError("null_draws", fmt.Sprintf("must be >= 100, got %d", c.NullDraws))
	}
	if c.Workers < 0 {
		return core.NewValidationError("workers", fmt.Sprintf("must be >= 0, got %d", c.Workers))
	}
	return nil
}
