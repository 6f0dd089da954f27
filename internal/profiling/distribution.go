package profiling

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// sampleSkewness computes the adjusted Fisher-Pearson skewness coefficient.
func sampleSkewness(data []float64, mean, sd float64) float64 {
	if len(data) < 3 || sd == 0 || math.IsNaN(sd) {
		return math.NaN()
	}

	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		z := (x - mean) / sd
		sum += z * z * z
	}

	// Bias correction for sample skewness
	return (sum / n) * math.Sqrt(n*(n-1)) / (n - 2)
}

// sampleKurtosis computes sample kurtosis; a normal column sits near 3.
func sampleKurtosis(data []float64, mean, sd float64) float64 {
	if len(data) < 4 || sd == 0 || math.IsNaN(sd) {
		return math.NaN()
	}

	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		z := (x - mean) / sd
		sum += z * z * z * z
	}
	return sum / n
}

// normalityP approximates a Jarque-Bera p-value from skewness and kurtosis.
// It is a screening number for profile output, not a formal test.
func normalityP(skew, kurt float64, n int) float64 {
	if n < 8 || math.IsNaN(skew) || math.IsNaN(kurt) {
		return math.NaN()
	}

	jb := float64(n) / 6.0 * (skew*skew + (kurt-3)*(kurt-3)/4.0)
	chi := distuv.ChiSquared{K: 2}
	return 1 - chi.CDF(jb)
}
