package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// sqrt2Pi is √(2π), used by the Corrado-Miller volatility guess.
const sqrt2Pi = 2.5066282746310002

// NormCDF returns the cumulative distribution function of the standard
// normal distribution evaluated at x.
//
// The result always lies in [0, 1]. For |x| beyond ~38 it saturates to
// exactly 0 or 1.
func NormCDF(x float64) float64 {
	p := distuv.UnitNormal.CDF(x)
	return math.Min(1, math.Max(0, p))
}

// NormPDF returns the standard normal density exp(-x²/2)/√(2π).
func NormPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
