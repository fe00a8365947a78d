package summary

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// tTestPValue is the two-tailed p-value of a t statistic.
func tTestPValue(t float64, df int) float64 {
	if df <= 0 {
		return 1.0
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// correlationPValue tests r against zero with n pairs.
func correlationPValue(r float64, n int) float64 {
	if n < 3 {
		return 1.0
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	return tTestPValue(t, n-2)
}

// chiSquarePValue is the upper tail of the chi-square distribution.
func chiSquarePValue(x float64, df int) float64 {
	if df <= 0 {
		return 1.0
	}
	dist := distuv.ChiSquared{K: float64(df)}
	return 1 - dist.CDF(x)
}
