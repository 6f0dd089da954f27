package simdata

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/growth"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/internal/errors"
	"github.com/Jincheol-Lim/SEMtrees/ports"
)

// Generator simulates complete two-subgroup growth panels. Rows before the
// requested cutpoint follow the lower-intercept subgroup, rows from the
// cutpoint on the upper one; the covariate is constructed so that row order
// and covariate order coincide.
type Generator struct{}

// NewGenerator creates a panel generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate simulates one complete dataset for a grid cell. All randomness
// comes from the supplied stream, so identical requests with identical
// streams produce identical panels.
func (g *Generator) Generate(ctx context.Context, req ports.GenerateRequest, rng *rand.Rand) (*ports.GeneratedPanel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := req.Condition.SampleSize
	cut := req.Cutpoint
	if cut < 1 || cut > n-1 {
		return nil, errors.DataGenerationError(
			fmt.Sprintf("cutpoint %d leaves an empty subgroup for n=%d", cut, n),
			core.ErrCutpointDegenerate)
	}
	if err := req.Population.Validate(); err != nil {
		return nil, errors.DataGenerationError("population spec invalid", err)
	}

	data := panel.NewDataset(n, req.Covariate)
	labels := make([]int, n)

	// Lower subgroup first, then upper, so the subgroup boundary sits at
	// the cutpoint row.
	if err := g.fillSubgroup(data, req, 0, cut, false, rng); err != nil {
		return nil, err
	}
	if err := g.fillSubgroup(data, req, cut, n, true, rng); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if i < cut {
			labels[i] = panel.LabelBelow
		} else {
			labels[i] = panel.LabelAbove
		}
	}

	g.fillCovariate(data, req.Covariate, cut, rng)

	if err := data.Validate(); err != nil {
		return nil, errors.DataGenerationError("generated panel invalid", err)
	}
	return &ports.GeneratedPanel{
		Data:     data,
		Truth:    panel.NewLabeling(labels),
		Cutpoint: cut,
	}, nil
}

// fillSubgroup draws latent intercept/slope pairs from the subgroup's
// bivariate normal and adds wave-specific residual noise.
func (g *Generator) fillSubgroup(data *panel.Dataset, req ports.GenerateRequest, from, to int, upper bool, rng *rand.Rand) error {
	muI, muS := req.Population.Means(upper)
	latent, ok := distmv.NewNormal([]float64{muI, muS}, req.Population.LatentCov(), rng)
	if !ok {
		return errors.DataGenerationError("latent covariance not positive definite", core.ErrSingularCovariance)
	}

	times := growth.TimeScores()
	resid := req.Population.Residuals
	draw := make([]float64, 2)
	for i := from; i < to; i++ {
		latent.Rand(draw)
		intercept, slope := draw[0], draw[1]
		for t := 0; t < panel.NumWaves; t++ {
			y := intercept + times[t]*slope + rng.NormFloat64()*math.Sqrt(resid[t])
			data.Set(i, t, y)
		}
	}
	return nil
}

// fillCovariate writes the splitting covariate. The continuous covariate is
// a sorted standard-normal sample, so low values line up with the lower
// subgroup; the binary covariate is the exact 0/1 block indicator of the
// cutpoint.
func (g *Generator) fillCovariate(data *panel.Dataset, kind panel.CovariateKind, cut int, rng *rand.Rand) {
	n := data.N()
	switch kind {
	case panel.CovariateBinary:
		for i := 0; i < n; i++ {
			v := 0.0
			if i >= cut {
				v = 1.0
			}
			data.Set(i, panel.CovariateColumn, v)
		}
	default:
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.NormFloat64()
		}
		sort.Float64s(values)
		for i, v := range values {
			data.Set(i, panel.CovariateColumn, v)
		}
	}
}
