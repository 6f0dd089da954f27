package growth

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// NumParams counts the free parameters of the linear growth model:
// two latent means, three latent (co)variances, four residual variances.
const NumParams = 9

// TimeScores returns the fixed slope loadings. The intercept loading is 1
// at every wave, so the implied mean at wave t is muI + t*muS.
func TimeScores() [panel.NumWaves]float64 {
	return [panel.NumWaves]float64{0, 1, 2, 3}
}

// PopulationSpec is the data-generating truth for one study. Both subgroups
// share the latent covariance and residual structure and differ only in the
// intercept mean: one subgroup sits InterceptEffect below InterceptMean, the
// other the same distance above it.
type PopulationSpec struct {
	InterceptMean   float64 `json:"intercept_mean"`
	SlopeMean       float64 `json:"slope_mean"`
	InterceptEffect float64 `json:"intercept_effect"`

	Psi11 float64 `json:"psi11"`
	Psi21 float64 `json:"psi21"`
	Psi22 float64 `json:"psi22"`

	Residuals [panel.NumWaves]float64 `json:"residuals"`
}

// DefaultPopulation returns the study's population constants.
func DefaultPopulation() PopulationSpec {
	return PopulationSpec{
		InterceptMean:   50.0,
		SlopeMean:       3.0,
		InterceptEffect: 2.912,
		Psi11:           33.913,
		Psi21:           10.238,
		Psi22:           10.749,
		Residuals:       [panel.NumWaves]float64{2.942, 15.084, 44.858, 85.200},
	}
}

// Validate checks positive-definiteness of the latent covariance and
// positivity of the residual variances.
func (s PopulationSpec) Validate() error {
	if s.Psi11 <= 0 || s.Psi22 <= 0 || s.Psi11*s.Psi22-s.Psi21*s.Psi21 <= 0 {
		return fmt.Errorf("%w: latent covariance not positive definite", core.ErrSingularCovariance)
	}
	for t, v := range s.Residuals {
		if v <= 0 {
			return fmt.Errorf("%w: residual variance %d is %.3f", core.ErrInvalidCondition, t+1, v)
		}
	}
	return nil
}

// LatentCov returns the 2x2 latent covariance matrix.
func (s PopulationSpec) LatentCov() *mat.SymDense {
	return mat.NewSymDense(2, []float64{s.Psi11, s.Psi21, s.Psi21, s.Psi22})
}

// Means returns the latent means for one subgroup. The upper subgroup is
// shifted InterceptEffect above InterceptMean, the lower one the same
// amount below; slopes are shared.
func (s PopulationSpec) Means(upper bool) (muI, muS float64) {
	if upper {
		muI = s.InterceptMean + s.InterceptEffect
	} else {
		muI = s.InterceptMean - s.InterceptEffect
	}
	return muI, s.SlopeMean
}

// Params returns the growth parameters implied for one subgroup.
func (s PopulationSpec) Params(upper bool) ModelParams {
	muI, muS := s.Means(upper)
	return ModelParams{
		InterceptMean: muI,
		SlopeMean:     muS,
		Psi11:         s.Psi11,
		Psi21:         s.Psi21,
		Psi22:         s.Psi22,
		Residuals:     s.Residuals,
	}
}

// ModelParams holds one fitted (or population) parameter set on the
// natural scale.
type ModelParams struct {
	InterceptMean float64 `json:"intercept_mean"`
	SlopeMean     float64 `json:"slope_mean"`

	Psi11 float64 `json:"psi11"`
	Psi21 float64 `json:"psi21"`
	Psi22 float64 `json:"psi22"`

	Residuals [panel.NumWaves]float64 `json:"residuals"`
}

// ImpliedMean returns the model-implied mean of the repeated measures.
func (p ModelParams) ImpliedMean() [panel.NumWaves]float64 {
	times := TimeScores()
	var mu [panel.NumWaves]float64
	for t := 0; t < panel.NumWaves; t++ {
		mu[t] = p.InterceptMean + times[t]*p.SlopeMean
	}
	return mu
}

// ImpliedCov returns the model-implied covariance of the repeated
// measures: Lambda Psi Lambda' + diag(theta).
func (p ModelParams) ImpliedCov() *mat.SymDense {
	times := TimeScores()
	sigma := mat.NewSymDense(panel.NumWaves, nil)
	for t := 0; t < panel.NumWaves; t++ {
		for u := t; u < panel.NumWaves; u++ {
			v := p.Psi11 + (times[t]+times[u])*p.Psi21 + times[t]*times[u]*p.Psi22
			if t == u {
				v += p.Residuals[t]
			}
			sigma.SetSym(t, u, v)
		}
	}
	return sigma
}

// Vector flattens the parameters in canonical order
// (muI, muS, psi11, psi21, psi22, theta1..theta4).
func (p ModelParams) Vector() []float64 {
	return []float64{
		p.InterceptMean, p.SlopeMean,
		p.Psi11, p.Psi21, p.Psi22,
		p.Residuals[0], p.Residuals[1], p.Residuals[2], p.Residuals[3],
	}
}

// ParamNames labels Vector entries, in the same order.
func ParamNames() []string {
	return []string{"mu_i", "mu_s", "psi11", "psi21", "psi22", "theta1", "theta2", "theta3", "theta4"}
}
