// Package semtree fits linear growth models by full-information maximum
// likelihood and tests the covariate for parameter instability with a
// score-based sup-LM statistic, splitting the panel once when the test
// rejects.
package semtree

import (
	"context"
	"log"

	"github.com/Jincheol-Lim/SEMtrees/domain/growth"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/ports"
)

// Config tunes the instability test.
type Config struct {
	// Alpha is the rejection level for the split decision.
	Alpha float64
	// NullDraws sizes the simulated sup-LM reference distribution.
	NullDraws int
	// Trim keeps breakpoint candidates away from the ordering's edges,
	// as a fraction of the sample trimmed from each side.
	Trim float64
}

// DefaultConfig returns the study settings.
func DefaultConfig() Config {
	return Config{Alpha: 0.05, NullDraws: 1000, Trim: 0.10}
}

// Fitter implements ports.TreeFitter. It is safe for concurrent use; the
// null tables it builds are shared across goroutines.
type Fitter struct {
	cfg   Config
	nulls *nullTable
}

// NewFitter creates a fitter whose null distributions derive from the
// study's seed streams.
func NewFitter(cfg Config, streams ports.RNG) *Fitter {
	return &Fitter{
		cfg:   cfg,
		nulls: newNullTable(cfg.NullDraws, cfg.Trim, streams),
	}
}

// FitAndSplit fits the growth model on the full panel, tests the covariate
// for parameter instability, and on rejection refits the model in each of
// the two sides of the best boundary.
func (f *Fitter) FitAndSplit(ctx context.Context, data *panel.Dataset) (*growth.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := data.N()
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	rootFit, err := fitGrowth(data, rows)
	if err != nil {
		return nil, err
	}

	scores, err := scoreMatrix(data, rows, rootFit.Params)
	if err != nil {
		return nil, err
	}
	whitened, err := decorrelate(scores)
	if err != nil {
		return nil, err
	}

	tree := &growth.Tree{
		PValue: 1,
		Root:   growth.Leaf{Params: rootFit.Params, N: rootFit.N, LogLik: rootFit.LogLik},
	}

	cov := data.Covariate()
	order := covariateOrder(cov)

	var best candidate
	var ok bool
	var p float64
	if data.Kind() == panel.CovariateBinary {
		best, ok = scanBinary(whitened, cov, order)
		if ok {
			p = chi2PValue(best.statistic)
		}
	} else {
		best, ok = scanContinuous(whitened, cov, order, f.cfg.Trim)
		if ok {
			p = f.nulls.pValue(n, best.statistic)
		}
	}
	if !ok {
		log.Printf("[SEMTree] No admissible boundary for n=%d %s covariate, keeping single leaf", n, data.Kind())
		return tree, nil
	}

	tree.Statistic = best.statistic
	tree.PValue = p
	if p >= f.cfg.Alpha {
		return tree, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var leftRows, rightRows []int
	for i, v := range cov {
		if v > best.threshold {
			rightRows = append(rightRows, i)
		} else {
			leftRows = append(leftRows, i)
		}
	}

	leftFit, err := fitGrowth(data, leftRows)
	if err != nil {
		return nil, err
	}
	rightFit, err := fitGrowth(data, rightRows)
	if err != nil {
		return nil, err
	}

	tree.Split = true
	tree.SplitValue = best.threshold
	tree.Left = &growth.Leaf{Params: leftFit.Params, N: leftFit.N, LogLik: leftFit.LogLik}
	tree.Right = &growth.Leaf{Params: rightFit.Params, N: rightFit.N, LogLik: rightFit.LogLik}
	return tree, nil
}
