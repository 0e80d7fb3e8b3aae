package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// residuals は予測確率とラベルの差 p_i - y_i を返す
func residuals(s Sample) []float64 {
	r := make([]float64, s.Len())
	for i := range r {
		r[i] = s.Proba(i) - float64(s.Label(i))
	}
	return r
}

// rms は平方根平均二乗誤差を計算する
func rms(s Sample) (float64, error) {
	n := s.Len()
	if n == 0 {
		return degenerate(RMS, "empty sample")
	}
	// RMS = ||p - y||_2 / sqrt(n)
	return floats.Norm(residuals(s), 2) / math.Sqrt(float64(n)), nil
}

// nrm は残差のL-norm平均 (Σ|p_i - y_i|^L / n)^(1/L) を計算する
func nrm(s Sample, norm float64) (float64, error) {
	n := s.Len()
	if n == 0 {
		return degenerate(NRM, "empty sample")
	}
	if norm <= 0 {
		return 0, errors.NewValidationError("norm", "must be positive", norm)
	}
	return floats.Norm(residuals(s), norm) / math.Pow(float64(n), 1/norm), nil
}

// mxe は平均交差エントロピーを計算する
// 確率が0または1でも有限になるよう、対数の引数にLogClampを加える
func mxe(s Sample) (float64, error) {
	n := s.Len()
	if n == 0 {
		return degenerate(MXE, "empty sample")
	}
	var sum float64
	for i := 0; i < n; i++ {
		p := s.Proba(i)
		if s.Label(i) == 1 {
			sum += errors.StabilizeLog(p)
		} else {
			sum += errors.StabilizeLog(1 - p)
		}
	}
	return errors.CheckScalar(MXE.String(), -sum/float64(n))
}
