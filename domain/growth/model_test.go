package growth

import (
	"math"
	"testing"
)

// TestImpliedMoments tests the implied mean and covariance against
// hand-computed values for the population constants
func TestImpliedMoments(t *testing.T) {
	pop := DefaultPopulation()
	params := pop.Params(true)

	mu := params.ImpliedMean()
	want := [4]float64{52.912, 55.912, 58.912, 61.912}
	for i := range mu {
		if math.Abs(mu[i]-want[i]) > 1e-9 {
			t.Errorf("Mean wave %d: expected %.3f, got %.3f", i+1, want[i], mu[i])
		}
	}

	sigma := params.ImpliedCov()
	cases := []struct {
		r, c int
		want float64
	}{
		{0, 0, 33.913 + 2.942},                          // psi11 + theta1
		{0, 1, 33.913 + 10.238},                         // psi11 + psi21
		{1, 1, 33.913 + 2*10.238 + 10.749 + 15.084},     // + psi22 + theta2
		{0, 3, 33.913 + 3*10.238},                       // psi11 + 3 psi21
		{3, 3, 33.913 + 6*10.238 + 9*10.749 + 85.200},   // + 9 psi22 + theta4
		{2, 3, 33.913 + 5*10.238 + 6*10.749},            // psi11 + (2+3) psi21 + 6 psi22
	}
	for _, c := range cases {
		if got := sigma.At(c.r, c.c); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Sigma[%d,%d]: expected %.3f, got %.3f", c.r, c.c, c.want, got)
		}
		if got := sigma.At(c.c, c.r); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Sigma[%d,%d]: expected symmetric value %.3f, got %.3f", c.c, c.r, c.want, got)
		}
	}
}

// TestSubgroupMeans tests the symmetric intercept shift
func TestSubgroupMeans(t *testing.T) {
	pop := DefaultPopulation()

	loI, loS := pop.Means(false)
	if math.Abs(loI-(pop.InterceptMean-pop.InterceptEffect)) > 1e-12 {
		t.Errorf("Expected lower intercept %.3f, got %.3f", pop.InterceptMean-pop.InterceptEffect, loI)
	}

	hiI, hiS := pop.Means(true)
	if math.Abs(hiI-(pop.InterceptMean+pop.InterceptEffect)) > 1e-12 {
		t.Errorf("Expected upper intercept %.3f, got %.3f", pop.InterceptMean+pop.InterceptEffect, hiI)
	}

	if math.Abs((loI+hiI)/2-pop.InterceptMean) > 1e-12 {
		t.Error("Subgroup intercepts should be centered on the population mean")
	}
	if loS != pop.SlopeMean || hiS != pop.SlopeMean {
		t.Error("Slope mean should not differ between subgroups")
	}
}

// TestPopulationValidate tests positive-definiteness checks
func TestPopulationValidate(t *testing.T) {
	pop := DefaultPopulation()
	if err := pop.Validate(); err != nil {
		t.Fatalf("Default population should validate: %v", err)
	}

	bad := pop
	bad.Psi21 = 100 // psi11*psi22 < psi21^2
	if err := bad.Validate(); err == nil {
		t.Error("Expected non-PD latent covariance to fail")
	}

	bad = pop
	bad.Residuals[2] = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected zero residual variance to fail")
	}
}

// TestVectorRoundTrip tests canonical parameter ordering
func TestVectorRoundTrip(t *testing.T) {
	params := DefaultPopulation().Params(false)
	v := params.Vector()
	if len(v) != NumParams {
		t.Fatalf("Expected %d parameters, got %d", NumParams, len(v))
	}
	if v[0] != params.InterceptMean || v[4] != params.Psi22 || v[8] != params.Residuals[3] {
		t.Errorf("Vector order wrong: %v", v)
	}
	if len(ParamNames()) != NumParams {
		t.Errorf("Expected %d parameter names", NumParams)
	}
}
