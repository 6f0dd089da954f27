package semtree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/growth"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// scoreMatrix evaluates the per-row log-likelihood scores at p, one row per
// entry of rows and one column per model parameter. Rows without observed
// waves score zero everywhere.
//
// With u = Sigma_O^-1 (y_O - mu_O) and W = Sigma_O^-1 the scores are
//
//	mu_i:   1'u
//	mu_s:   t'u
//	psi11:  ((1'u)^2 - 1'W1) / 2
//	psi21:  (1'u)(t'u) - 1'Wt
//	psi22:  ((t'u)^2 - t'Wt) / 2
//	theta:  (u_t^2 - W_tt) / 2 at each observed wave
//
// restricted to the observed waves of the row's pattern.
func scoreMatrix(data *panel.Dataset, rows []int, p growth.ModelParams) (*mat.Dense, error) {
	times := growth.TimeScores()
	mu := p.ImpliedMean()
	sigma := p.ImpliedCov()

	scores := mat.NewDense(len(rows), growth.NumParams, nil)
	for _, g := range groupPatterns(data, rows) {
		k := len(g.waves)
		sub := mat.NewSymDense(k, nil)
		for a := 0; a < k; a++ {
			for b := a; b < k; b++ {
				sub.SetSym(a, b, sigma.At(g.waves[a], g.waves[b]))
			}
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(sub); !ok {
			return nil, fmt.Errorf("%w: implied covariance for pattern %05b", core.ErrSingularCovariance, g.mask)
		}
		var w mat.SymDense
		if err := chol.InverseTo(&w); err != nil {
			return nil, core.NewEstimationError("score matrix", err)
		}

		// Quadratic forms of W against the loading vectors, fixed per pattern.
		oneW1, oneWt, tWt := 0.0, 0.0, 0.0
		for a := 0; a < k; a++ {
			for b := 0; b < k; b++ {
				wab := w.At(a, b)
				oneW1 += wab
				oneWt += wab * times[g.waves[b]]
				tWt += times[g.waves[a]] * wab * times[g.waves[b]]
			}
		}

		r := mat.NewVecDense(k, nil)
		u := mat.NewVecDense(k, nil)
		for i, row := range g.rows {
			for a, wave := range g.waves {
				r.SetVec(a, data.At(row, wave)-mu[wave])
			}
			if err := chol.SolveVecTo(u, r); err != nil {
				return nil, core.NewEstimationError("score matrix", err)
			}

			oneU, tU := 0.0, 0.0
			for a := range g.waves {
				oneU += u.AtVec(a)
				tU += times[g.waves[a]] * u.AtVec(a)
			}

			pos := g.idx[i]
			scores.Set(pos, 0, oneU)
			scores.Set(pos, 1, tU)
			scores.Set(pos, 2, (oneU*oneU-oneW1)/2)
			scores.Set(pos, 3, oneU*tU-oneWt)
			scores.Set(pos, 4, (tU*tU-tWt)/2)
			for a, wave := range g.waves {
				ua := u.AtVec(a)
				scores.Set(pos, 5+wave, (ua*ua-w.At(a, a))/2)
			}
		}
	}
	return scores, nil
}

// decorrelate centers the score columns and whitens them with the inverse
// square root of the empirical information J = S'S / n, so the cumulative
// score process has identity covariance under the stable-parameters null.
// Centering ties the process down exactly at the last row.
func decorrelate(scores *mat.Dense) (*mat.Dense, error) {
	n, p := scores.Dims()

	centered := mat.NewDense(n, p, nil)
	for j := 0; j < p; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += scores.At(i, j)
		}
		mean := sum / float64(n)
		for i := 0; i < n; i++ {
			centered.Set(i, j, scores.At(i, j)-mean)
		}
	}

	info := mat.NewSymDense(p, nil)
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += centered.At(i, a) * centered.At(i, b)
			}
			info.SetSym(a, b, sum/float64(n))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(info, true); !ok {
		return nil, fmt.Errorf("%w: information matrix eigendecomposition failed", core.ErrSingularCovariance)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	maxValue := 0.0
	for _, v := range values {
		if v > maxValue {
			maxValue = v
		}
	}
	tol := 1e-12 * maxValue
	for _, v := range values {
		if v <= tol {
			return nil, fmt.Errorf("%w: information matrix eigenvalue %g", core.ErrSingularCovariance, v)
		}
	}

	invSqrt := mat.NewDense(p, p, nil)
	for a := 0; a < p; a++ {
		for b := 0; b < p; b++ {
			sum := 0.0
			for c := 0; c < p; c++ {
				sum += vectors.At(a, c) * vectors.At(b, c) / math.Sqrt(values[c])
			}
			invSqrt.Set(a, b, sum)
		}
	}

	whitened := mat.NewDense(n, p, nil)
	whitened.Mul(centered, invSqrt)
	return whitened, nil
}
