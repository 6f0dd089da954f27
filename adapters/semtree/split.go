package semtree

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Jincheol-Lim/SEMtrees/domain/growth"
	"github.com/Jincheol-Lim/SEMtrees/ports"
)

// candidate is one admissible breakpoint of the covariate ordering.
type candidate struct {
	k         int     // rows on the left side
	statistic float64 // LM statistic at this boundary
	threshold float64 // midpoint between the adjacent covariate values
}

// covariateOrder returns row positions sorted by covariate value, ties
// broken by position so the ordering is reproducible.
func covariateOrder(cov []float64) []int {
	order := make([]int, len(cov))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if cov[order[a]] != cov[order[b]] {
			return cov[order[a]] < cov[order[b]]
		}
		return order[a] < order[b]
	})
	return order
}

// trimRange bounds the breakpoint scan away from the edges of the ordering,
// where the LM statistic is unstable.
func trimRange(n int, trim float64) (kMin, kMax int) {
	kMin = int(math.Ceil(trim * float64(n)))
	if kMin < 1 {
		kMin = 1
	}
	kMax = int(math.Floor((1 - trim) * float64(n)))
	if kMax > n-1 {
		kMax = n - 1
	}
	return kMin, kMax
}

// lmStatistic turns a cumulative decorrelated score into the LM statistic
// for a break after k of n rows.
func lmStatistic(cum *[growth.NumParams]float64, k, n int) float64 {
	q := 0.0
	for _, v := range cum {
		q += v * v
	}
	return q * float64(n) / (float64(k) * float64(n-k))
}

// scanContinuous walks the covariate ordering accumulating decorrelated
// scores and evaluates the LM statistic at every boundary between distinct
// covariate values inside the trimmed range. It returns the maximizing
// candidate, or ok=false when no boundary is admissible.
func scanContinuous(whitened *mat.Dense, cov []float64, order []int, trim float64) (best candidate, ok bool) {
	n := len(order)
	kMin, kMax := trimRange(n, trim)

	var cum [growth.NumParams]float64
	for k := 1; k <= kMax; k++ {
		pos := order[k-1]
		for j := 0; j < growth.NumParams; j++ {
			cum[j] += whitened.At(pos, j)
		}
		if k < kMin {
			continue
		}
		left, right := cov[order[k-1]], cov[order[k]]
		if !(left < right) {
			continue
		}
		stat := lmStatistic(&cum, k, n)
		if !ok || stat > best.statistic {
			best = candidate{k: k, statistic: stat, threshold: (left + right) / 2}
			ok = true
		}
	}
	return best, ok
}

// scanBinary evaluates the single boundary a binary covariate admits.
func scanBinary(whitened *mat.Dense, cov []float64, order []int) (candidate, bool) {
	n := len(order)
	zeros := 0
	for _, v := range cov {
		if v == 0 {
			zeros++
		}
	}
	if zeros == 0 || zeros == n {
		return candidate{}, false
	}

	var cum [growth.NumParams]float64
	for k := 1; k <= zeros; k++ {
		pos := order[k-1]
		for j := 0; j < growth.NumParams; j++ {
			cum[j] += whitened.At(pos, j)
		}
	}
	return candidate{
		k:         zeros,
		statistic: lmStatistic(&cum, zeros, n),
		threshold: 0.5,
	}, true
}

// chi2PValue is the fixed-breakpoint reference: with one pre-specified
// boundary the LM statistic is asymptotically chi-squared with one degree
// of freedom per model parameter.
func chi2PValue(statistic float64) float64 {
	dist := distuv.ChiSquared{K: float64(growth.NumParams)}
	return dist.Survival(statistic)
}

// nullTable holds simulated reference distributions for the sup-LM
// statistic, one per sample size. Maxima of the LM functional over a
// trimmed grid have no closed form, so the table simulates Brownian
// bridges on the same grid and records each bridge's supremum.
//
// Tables are derived from the study-level stream, independent of the grid
// cell, so every worker sees the same table regardless of scheduling.
type nullTable struct {
	draws   int
	trim    float64
	streams ports.RNG

	group singleflight.Group
	mu    sync.Mutex
	cache map[int][]float64 // ascending sup values per sample size
}

func newNullTable(draws int, trim float64, streams ports.RNG) *nullTable {
	return &nullTable{
		draws:   draws,
		trim:    trim,
		streams: streams,
		cache:   make(map[int][]float64),
	}
}

// pValue ranks a sup-LM statistic against the simulated null for sample
// size n, with the add-one correction that keeps p strictly positive.
func (nt *nullTable) pValue(n int, statistic float64) float64 {
	sups := nt.sups(n)
	idx := sort.SearchFloat64s(sups, statistic)
	exceed := len(sups) - idx
	return float64(1+exceed) / float64(1+len(sups))
}

func (nt *nullTable) sups(n int) []float64 {
	nt.mu.Lock()
	if s, ok := nt.cache[n]; ok {
		nt.mu.Unlock()
		return s
	}
	nt.mu.Unlock()

	v, _, _ := nt.group.Do(strconv.Itoa(n), func() (interface{}, error) {
		nt.mu.Lock()
		if s, ok := nt.cache[n]; ok {
			nt.mu.Unlock()
			return s, nil
		}
		nt.mu.Unlock()

		s := nt.simulate(n)
		nt.mu.Lock()
		nt.cache[n] = s
		nt.mu.Unlock()
		return s, nil
	})
	return v.([]float64)
}

// simulate draws nt.draws standard Brownian bridges on an n-point grid and
// records the supremum of the LM functional over the trimmed range.
func (nt *nullTable) simulate(n int) []float64 {
	rng := nt.streams.GlobalStream(fmt.Sprintf("nulldist|n=%d|dim=%d", n, growth.NumParams))
	kMin, kMax := trimRange(n, nt.trim)

	increments := make([]float64, n*growth.NumParams)
	sups := make([]float64, nt.draws)
	for d := range sups {
		for i := range increments {
			increments[i] = rng.NormFloat64()
		}

		var total [growth.NumParams]float64
		for i := 0; i < n; i++ {
			for j := 0; j < growth.NumParams; j++ {
				total[j] += increments[i*growth.NumParams+j]
			}
		}

		sup := 0.0
		var cum, bridge [growth.NumParams]float64
		for k := 1; k <= kMax; k++ {
			frac := float64(k) / float64(n)
			for j := 0; j < growth.NumParams; j++ {
				cum[j] += increments[(k-1)*growth.NumParams+j]
				bridge[j] = cum[j] - frac*total[j]
			}
			if k < kMin {
				continue
			}
			if stat := lmStatistic(&bridge, k, n); stat > sup {
				sup = stat
			}
		}
		sups[d] = sup
	}

	sort.Float64s(sups)
	return sups
}
