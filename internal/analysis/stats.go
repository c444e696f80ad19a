package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// pearson returns Pearson's r between x and y with its two-sided p-value.
// r is NaN when either vector has zero variance.
func pearson(x, y []float64) (r, p float64) {
	r = stat.Correlation(x, y, nil)
	return r, twoSidedP(r, len(x))
}

// spearman returns Spearman's rank correlation between x and y with its
// two-sided p-value, using the t-distribution approximation on the rank
// correlation (the usual large-sample treatment).
func spearman(x, y []float64) (rho, p float64) {
	rho = stat.Correlation(ranks(x), ranks(y), nil)
	return rho, twoSidedP(rho, len(x))
}

// twoSidedP converts a correlation coefficient into a two-sided p-value via
// the exact t-transform with n-2 degrees of freedom.
func twoSidedP(r float64, n int) float64 {
	if math.IsNaN(r) || n < 3 {
		return math.NaN()
	}
	denom := 1 - r*r
	if denom <= 0 {
		// |r| == 1: the t statistic diverges.
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.CDF(-math.Abs(t))
}

// ranks assigns 1-based ranks to x, averaging ranks across ties.
func ranks(x []float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		// Average rank for the tie run [i, j].
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}
