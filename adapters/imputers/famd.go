package imputers

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/errors"
)

// FAMDImputer reconstructs missing cells from a regularized low-rank factor
// decomposition. Columns are standardized by their observed moments (the
// binary covariate becomes a scaled indicator), missing cells start at the
// column mean, and an SVD with shrunken singular values is iterated until
// the fills stabilize.
type FAMDImputer struct {
	ncp     int
	tol     float64
	maxIter int
}

// NewFAMDImputer creates the factor strategy with two components.
func NewFAMDImputer() *FAMDImputer {
	return &FAMDImputer{ncp: 2, tol: 1e-6, maxIter: 200}
}

// Method identifies the strategy.
func (im *FAMDImputer) Method() study.Method { return study.MethodFAMD }

// Impute fills every missing cell by iterative regularized reconstruction.
// The procedure is deterministic; the stream is accepted for interface
// symmetry but never consulted.
func (im *FAMDImputer) Impute(ctx context.Context, data *panel.Dataset, rng *rand.Rand) (*panel.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := data.Clone()
	if data.IsComplete() {
		return out, nil
	}

	n, p := data.N(), panel.NumColumns
	scale, center, err := observedMoments(data)
	if err != nil {
		return nil, errors.ImputationFailure(im.Method().String(), err)
	}

	// Standardized working matrix; missing cells start at the column mean,
	// which is zero on this scale.
	z := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for c := 0; c < p; c++ {
			if data.IsMissing(i, c) {
				continue
			}
			z.Set(i, c, (data.At(i, c)-center[c])/scale[c])
		}
	}

	fitted := mat.NewDense(n, p, nil)
	for iter := 0; iter < im.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := im.reconstruct(z, fitted); err != nil {
			return nil, errors.ImputationFailure(im.Method().String(), err)
		}

		// Update only the missing cells and watch their movement.
		num, den := 0.0, 0.0
		for i := 0; i < n; i++ {
			for c := 0; c < p; c++ {
				if !data.IsMissing(i, c) {
					continue
				}
				old := z.At(i, c)
				next := fitted.At(i, c)
				d := next - old
				num += d * d
				den += old*old + 1e-12
				z.Set(i, c, next)
			}
		}
		if num/den < im.tol {
			break
		}
	}

	for i := 0; i < n; i++ {
		for c := 0; c < p; c++ {
			if !data.IsMissing(i, c) {
				continue
			}
			v := z.At(i, c)*scale[c] + center[c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.ImputationFailure(im.Method().String(), core.ErrNonFiniteDeviance)
			}
			out.Set(i, c, v)
		}
	}
	return out, nil
}

// reconstruct overwrites fitted with the regularized rank-ncp approximation
// of z: singular values beyond the kept components estimate the noise
// level, and the kept ones are shrunk toward it.
func (im *FAMDImputer) reconstruct(z, fitted *mat.Dense) error {
	n, p := z.Dims()

	// Column means re-estimated every iteration as the fills move.
	means := make([]float64, p)
	for c := 0; c < p; c++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += z.At(i, c)
		}
		means[c] = sum / float64(n)
	}

	centered := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for c := 0; c < p; c++ {
			centered.Set(i, c, z.At(i, c)-means[c])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return core.ErrSingularCovariance
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	noise := 0.0
	if len(values) > im.ncp {
		sum := 0.0
		for _, d := range values[im.ncp:] {
			sum += d * d
		}
		noise = sum / (float64(n-1) * float64(len(values)-im.ncp))
	}

	for i := 0; i < n; i++ {
		for c := 0; c < p; c++ {
			recon := means[c]
			for l := 0; l < im.ncp && l < len(values); l++ {
				d := values[l]
				if d <= 0 {
					continue
				}
				shrunk := d - noise*float64(n-1)/d
				if shrunk < 0 {
					shrunk = 0
				}
				recon += shrunk * u.At(i, l) * v.At(c, l)
			}
			fitted.Set(i, c, recon)
		}
	}
	return nil
}

// observedMoments returns per-column observed means and standard deviations
// for standardization, rejecting columns with no information.
func observedMoments(data *panel.Dataset) (scale, center []float64, err error) {
	scale = make([]float64, panel.NumColumns)
	center = make([]float64, panel.NumColumns)
	for c := 0; c < panel.NumColumns; c++ {
		_, values := data.ObservedValues(c)
		if len(values) == 0 {
			return nil, nil, core.ErrInsufficientData
		}
		center[c], _ = stats.Mean(values)
		sd, _ := stats.StandardDeviationSample(values)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		scale[c] = sd
	}
	return scale, center, nil
}
