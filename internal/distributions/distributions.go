package distributions

import (
	"fmt"
	"math"

	"lcgwalk/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareClamp is the largest probability passed to the chi-square
// quantile. Larger probabilities are clamped to it.
const ChiSquareClamp = 0.999999999

// InverseNormalCDF returns the standard normal quantile for p in (0, 1).
// Called with 1 - alpha/2 it yields the upper-tail critical value z_{alpha/2}.
func InverseNormalCDF(p float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return math.NaN(), fmt.Errorf("%w: normal quantile needs p in (0,1), got %v", core.ErrInvalidProbability, p)
	}
	return distuv.UnitNormal.Quantile(p), nil
}

// InverseChiSquareCDF returns the chi-square quantile for p in [0, 1) with
// the given degrees of freedom.
func InverseChiSquareCDF(p float64, degreesOfFreedom int) (float64, error) {
	if degreesOfFreedom <= 0 {
		return math.NaN(), fmt.Errorf("%w: got %d", core.ErrInvalidDegreesOfFreedom, degreesOfFreedom)
	}
	if math.IsNaN(p) || p < 0 || p >= 1 {
		return math.NaN(), fmt.Errorf("%w: chi-square quantile needs p in [0,1), got %v", core.ErrInvalidProbability, p)
	}
	if p > ChiSquareClamp {
		p = ChiSquareClamp
	}

	q := distuv.ChiSquared{K: float64(degreesOfFreedom)}.Quantile(p)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return math.NaN(), fmt.Errorf("%w: chi-square quantile undefined for p=%v df=%d", core.ErrInvalidProbability, p, degreesOfFreedom)
	}
	return q, nil
}
