package semtree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/growth"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

const (
	ln2pi = 1.8378770664093453

	// coordClamp bounds the log-scale optimizer coordinates so variance
	// parameters can never overflow.
	coordClamp = 25.0

	// minFitRows is the smallest row count a growth model is fit on:
	// one more than the free parameter count.
	minFitRows = growth.NumParams + 1
)

// patternGroup collects the rows sharing one observed-wave mask. Rows with
// no observed waves carry no likelihood information and are left out.
type patternGroup struct {
	mask  uint8
	waves []int // observed wave indices, ascending
	rows  []int // panel row ids
	idx   []int // positions within the fitted row order
}

// groupPatterns splits a row subset by observed-wave mask, in ascending
// mask order so fits are reproducible.
func groupPatterns(data *panel.Dataset, rows []int) []patternGroup {
	byMask := make(map[uint8]*patternGroup)
	for pos, row := range rows {
		mask := data.WaveMask(row)
		if mask == 0 {
			continue
		}
		g, ok := byMask[mask]
		if !ok {
			g = &patternGroup{mask: mask}
			for t := 0; t < panel.NumWaves; t++ {
				if mask&(1<<uint(t)) != 0 {
					g.waves = append(g.waves, t)
				}
			}
			byMask[mask] = g
		}
		g.rows = append(g.rows, row)
		g.idx = append(g.idx, pos)
	}

	groups := make([]patternGroup, 0, len(byMask))
	for mask := 0; mask < 1<<panel.NumWaves; mask++ {
		if g, ok := byMask[uint8(mask)]; ok {
			groups = append(groups, *g)
		}
	}
	return groups
}

// growthFit is one full-information ML solution.
type growthFit struct {
	Params   growth.ModelParams
	Deviance float64
	LogLik   float64
	N        int // rows contributing likelihood
}

// fitGrowth estimates the linear growth model on a row subset by
// full-information maximum likelihood over the missingness patterns.
func fitGrowth(data *panel.Dataset, rows []int) (*growthFit, error) {
	groups := groupPatterns(data, rows)
	contributing := 0
	for _, g := range groups {
		contributing += len(g.rows)
	}
	if contributing < minFitRows {
		return nil, fmt.Errorf("%w: %d rows with observed waves", core.ErrInsufficientData, contributing)
	}

	objective := func(x []float64) float64 {
		return deviance(data, groups, toNatural(x))
	}

	x0 := startCoords(data, rows)
	settings := &optimize.Settings{
		Converger:       &optimize.FunctionConverge{Absolute: 1e-9, Iterations: 100},
		MajorIterations: 6000,
		FuncEvaluations: 20000,
	}
	result, err := optimize.Minimize(optimize.Problem{Func: objective}, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, core.NewEstimationError("growth model", err)
	}
	if err := result.Status.Err(); err != nil {
		return nil, core.NewEstimationError("growth model", err)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, fmt.Errorf("%w: deviance %v", core.ErrNonFiniteDeviance, result.F)
	}

	return &growthFit{
		Params:   toNatural(result.X),
		Deviance: result.F,
		LogLik:   -result.F / 2,
		N:        contributing,
	}, nil
}

// deviance is -2 log-likelihood, including the 2 pi constant, accumulated
// pattern by pattern. Non-positive-definite proposals price out at +Inf.
func deviance(data *panel.Dataset, groups []patternGroup, p growth.ModelParams) float64 {
	mu := p.ImpliedMean()
	sigma := p.ImpliedCov()

	total := 0.0
	for _, g := range groups {
		k := len(g.waves)
		sub := mat.NewSymDense(k, nil)
		for a := 0; a < k; a++ {
			for b := a; b < k; b++ {
				sub.SetSym(a, b, sigma.At(g.waves[a], g.waves[b]))
			}
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(sub); !ok {
			return math.Inf(1)
		}
		logDet := chol.LogDet()

		r := mat.NewVecDense(k, nil)
		u := mat.NewVecDense(k, nil)
		for _, row := range g.rows {
			for a, w := range g.waves {
				r.SetVec(a, data.At(row, w)-mu[w])
			}
			if err := chol.SolveVecTo(u, r); err != nil {
				return math.Inf(1)
			}
			total += float64(k)*ln2pi + logDet + mat.Dot(r, u)
		}
	}
	if math.IsNaN(total) {
		return math.Inf(1)
	}
	return total
}

// toNatural maps unconstrained optimizer coordinates to the natural scale:
// latent covariance through a log-Cholesky factor, residual variances
// through logs.
func toNatural(x []float64) growth.ModelParams {
	l11 := math.Exp(clamp(x[2]))
	l21 := x[3]
	l22 := math.Exp(clamp(x[4]))

	p := growth.ModelParams{
		InterceptMean: x[0],
		SlopeMean:     x[1],
		Psi11:         l11 * l11,
		Psi21:         l11 * l21,
		Psi22:         l21*l21 + l22*l22,
	}
	for t := 0; t < panel.NumWaves; t++ {
		p.Residuals[t] = math.Exp(clamp(x[5+t]))
	}
	return p
}

func clamp(v float64) float64 {
	if v > coordClamp {
		return coordClamp
	}
	if v < -coordClamp {
		return -coordClamp
	}
	return v
}

// startCoords derives moment-based starting coordinates: wave means set the
// latent means, wave variances are split between latent and residual
// variance.
func startCoords(data *panel.Dataset, rows []int) []float64 {
	times := growth.TimeScores()

	var waveMean, waveVar [panel.NumWaves]float64
	for t := 0; t < panel.NumWaves; t++ {
		sum, count := 0.0, 0
		for _, row := range rows {
			if data.IsMissing(row, t) {
				continue
			}
			sum += data.At(row, t)
			count++
		}
		if count == 0 {
			waveMean[t] = 0
			waveVar[t] = 1
			continue
		}
		waveMean[t] = sum / float64(count)

		ss := 0.0
		for _, row := range rows {
			if data.IsMissing(row, t) {
				continue
			}
			d := data.At(row, t) - waveMean[t]
			ss += d * d
		}
		waveVar[t] = math.Max(ss/float64(count), 1e-3)
	}

	// Least squares of the wave means on the time scores.
	tBar, mBar := 0.0, 0.0
	for t := 0; t < panel.NumWaves; t++ {
		tBar += times[t]
		mBar += waveMean[t]
	}
	tBar /= panel.NumWaves
	mBar /= panel.NumWaves
	num, den := 0.0, 0.0
	for t := 0; t < panel.NumWaves; t++ {
		num += (times[t] - tBar) * (waveMean[t] - mBar)
		den += (times[t] - tBar) * (times[t] - tBar)
	}
	slope := num / den
	intercept := mBar - slope*tBar

	last := panel.NumWaves - 1
	psi11 := math.Max(0.5*waveVar[0], 1e-2)
	psi22 := math.Max((waveVar[last]-waveVar[0])/(times[last]*times[last]), 1e-2)

	x := make([]float64, growth.NumParams)
	x[0] = intercept
	x[1] = slope
	x[2] = 0.5 * math.Log(psi11) // l11 = sqrt(psi11)
	x[3] = 0                     // l21: start uncorrelated
	x[4] = 0.5 * math.Log(psi22)
	for t := 0; t < panel.NumWaves; t++ {
		x[5+t] = math.Log(math.Max(0.5*waveVar[t], 1e-2))
	}
	return x
}
