// Package metrics implements the binary-classification performance measures
// used to score ensembles.
//
// Every measure is computed from a Sample: predicted probabilities paired with
// 0/1 labels. Measures whose denominator vanishes (no positives, no predicted
// positives, an empty sample) return 0 together with a
// *errors.DegenerateMetricError so that callers can warn and carry on.
package metrics

import (
	"sort"
	"strings"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// Sample is a read-only view of predictions paired with labels.
type Sample interface {
	Len() int
	Proba(i int) float64
	Label(i int) int
	Positives() int
	Negatives() int
}

// Metric identifies a performance measure.
type Metric int

// Measures in reporting order.
const (
	ACC Metric = iota // accuracy
	RMS               // root mean squared error
	ROC               // area under the ROC curve
	ALL               // weighted combination of ACC, RMS and ROC
	BEP               // precision/recall break-even point
	PRE               // precision
	REC               // recall
	FSC               // F-score
	APR               // average precision
	LFT               // lift
	CST               // misclassification cost
	NRM               // norm of the residuals
	MXE               // mean cross-entropy
	BSP               // bootstrap mean of an inner measure
)

var metricNames = [...]string{"ACC", "RMS", "ROC", "ALL", "BEP", "PRE", "REC", "FSC", "APR", "LFT", "CST", "NRM", "MXE", "BSP"}

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricNames) {
		return "UNKNOWN"
	}
	return metricNames[m]
}

// HigherIsBetter reports the optimisation direction of m. BSP has no
// direction of its own; see Evaluator.HigherIsBetter.
func (m Metric) HigherIsBetter() bool {
	switch m {
	case RMS, CST, NRM, MXE:
		return false
	default:
		return true
	}
}

// Valid reports whether m names a known measure.
func (m Metric) Valid() bool {
	return m >= ACC && m <= BSP
}

// ParseMetric resolves a case-insensitive metric name.
func ParseMetric(name string) (Metric, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range metricNames {
		if n == upper {
			return Metric(i), nil
		}
	}
	return 0, errors.NewValidationError("metric", "unknown metric", name)
}

// Reported returns the measures written for every committed step, in order.
// BSP is excluded; it is only reported when it is the selected measure.
func Reported() []Metric {
	out := make([]Metric, 0, BSP)
	for m := ACC; m < BSP; m++ {
		out = append(out, m)
	}
	return out
}

// Descriptor pairs a metric name with its direction.
type Descriptor struct {
	Name           string
	HigherIsBetter bool
}

// Vector is a Sample backed by slices.
type Vector struct {
	proba     []float64
	labels    []int
	positives int
}

// NewVector builds a Vector. proba and labels must have equal length.
func NewVector(proba []float64, labels []int) (*Vector, error) {
	if len(proba) != len(labels) {
		return nil, errors.NewSizeMismatchError("NewVector", len(labels), len(proba))
	}
	v := &Vector{proba: proba, labels: labels}
	for _, l := range labels {
		v.positives += l
	}
	return v, nil
}

func (v *Vector) Len() int { return len(v.proba) }
func (v *Vector) Proba(i int) float64 { return v.proba[i] }
func (v *Vector) Label(i int) int { return v.labels[i] }
func (v *Vector) Positives() int { return v.positives }
func (v *Vector) Negatives() int { return len(v.labels) - v.positives }

// ranked returns the sample's predictions and labels ordered by descending
// probability. Equal probabilities keep their original order.
func ranked(s Sample) ([]float64, []int) {
	n := s.Len()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Proba(idx[a]) > s.Proba(idx[b])
	})
	p := make([]float64, n)
	y := make([]int, n)
	for k, i := range idx {
		p[k] = s.Proba(i)
		y[k] = s.Label(i)
	}
	return p, y
}

func degenerate(m Metric, condition string) (float64, error) {
	return 0, errors.NewDegenerateMetricError(m.String(), condition, 0)
}
