package ports

import (
	"context"

	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/growth"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// GenerateRequest specifies one complete dataset to simulate. Cutpoint is
// the realized row index where the second subgroup starts; it is drawn
// before generation from the condition's own stream.
type GenerateRequest struct {
	Condition  study.Condition       `json:"condition"`
	Cutpoint   int                   `json:"cutpoint"`
	Population growth.PopulationSpec `json:"population"`
	Covariate  panel.CovariateKind   `json:"covariate"`
}

// GeneratedPanel is a complete simulated dataset plus its ground truth.
type GeneratedPanel struct {
	Data *panel.Dataset `json:"-"`
	// Truth labels every row with its planted subgroup.
	Truth panel.Labeling `json:"-"`
	// Cutpoint echoes the realized subgroup boundary.
	Cutpoint int `json:"cutpoint"`
}

// PanelGenerator simulates complete two-subgroup growth panels.
type PanelGenerator interface {
	Generate(ctx context.Context, req GenerateRequest, rng *rand.Rand) (*GeneratedPanel, error)
}

// MissingnessInjector deletes cells from a complete panel according to the
// condition's mechanism and rate. The input panel is never modified.
type MissingnessInjector interface {
	Ampute(ctx context.Context, data *panel.Dataset, cond study.Condition, rng *rand.Rand) (*panel.Dataset, error)
}
