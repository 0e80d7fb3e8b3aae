package errors

import (
	"math"
)

// Epsilon guards the denominators of the confusion-matrix metrics.
const Epsilon = 1.0e-99

// LogClamp is added to probabilities before taking logarithms in cross-entropy.
const LogClamp = 1.0e-8

// CheckScalar checks a single scalar value for NaN or Inf and returns
// a DegenerateMetricError carrying the sentinel 0 when it is not finite.
func CheckScalar(metric string, value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, NewDegenerateMetricError(metric, "non-finite value", 0)
	}
	return value, nil
}

// SafeDivide performs division with protection against division by zero.
// It reports ok=false and returns 0 when the denominator is below Epsilon
// in magnitude.
func SafeDivide(numerator, denominator float64) (float64, bool) {
	if math.Abs(denominator) < Epsilon {
		return 0, false
	}
	return numerator / denominator, true
}

// StabilizeLog computes log(value + LogClamp), keeping predictions of exactly
// 0 or 1 finite under cross-entropy.
func StabilizeLog(value float64) float64 {
	return math.Log(value + LogClamp)
}
