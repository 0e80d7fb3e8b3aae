package metrics

import (
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// Resample draws points examples from s uniformly with replacement using a
// generator seeded with seed. points <= 0 draws s.Len() examples.
func Resample(s Sample, seed int64, points int) *Vector {
	n := s.Len()
	if points <= 0 {
		points = n
	}
	v := &Vector{proba: make([]float64, 0, points), labels: make([]int, 0, points)}
	if n == 0 {
		return v
	}
	rng := rand.New(rand.NewSource(seed))
	for j := 0; j < points; j++ {
		i := rng.Intn(n)
		v.proba = append(v.proba, s.Proba(i))
		v.labels = append(v.labels, s.Label(i))
		v.positives += s.Label(i)
	}
	return v
}

// bootstrap averages the inner measure over BootstrapSamples resamples. The
// i-th resample is drawn with seed+i, so a fixed seed gives a fixed value.
func (e Evaluator) bootstrap(s Sample) (float64, error) {
	if s.Len() == 0 {
		return degenerate(BSP, "empty sample")
	}
	k := e.cfg.BootstrapSamples
	if k <= 0 {
		return degenerate(BSP, "no bootstrap samples configured")
	}
	var first error
	values := make([]float64, k)
	for i := 0; i < k; i++ {
		rs := Resample(s, e.seed+int64(i), e.cfg.BootstrapPoints)
		v, err := e.EvaluateChecked(e.cfg.Inner, rs)
		if err != nil && first == nil {
			first = err
		}
		values[i] = v
	}
	return stat.Mean(values, nil), first
}
