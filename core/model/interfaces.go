// Package model defines the contract shared by the aggregate models that the
// search strategies mutate, together with the explicit run state and
// ensemble composition threaded through a search.
package model

import (
	"github.com/YuminosukeSato/ensemble/metrics"
)

// Member is a contribution that can be added to or subtracted from a Model:
// a single candidate's predictions, or another aggregate.
type Member interface {
	// ID is the candidate id shared across splits, or -1 for aggregates.
	ID() int
	// Name identifies the member in reports.
	Name() string
	// Class selects the per-class bag of an N-class ensemble.
	Class() int
	// Len is the number of examples.
	Len() int
	// Proba is the member's mean prediction for example i.
	Proba(i int) float64
	// Models is the number of base models the member stands for.
	Models() int
}

// Perf is a detached performance value: the snapshot compared during search.
type Perf struct {
	Value float64
	metrics.Descriptor
}

// Compare orders p against other using p's direction.
func (p Perf) Compare(other Perf) int {
	switch {
	case p.Value == other.Value:
		return 0
	case (p.Value > other.Value) == p.HigherIsBetter:
		return 1
	default:
		return -1
	}
}

// Model is a mutable weighted aggregate of members over one split.
type Model interface {
	metrics.Sample

	// Add accumulates weight*m.Proba(i) into every example.
	Add(m Member, weight float64) error
	// Sub is the inverse of Add with the same weight.
	Sub(m Member, weight float64) error

	// TryAdd scores the selected metric as if m were added. The model is
	// not modified, so concurrent calls are safe.
	TryAdd(m Member, weight float64, ev metrics.Evaluator) (Perf, error)
	// TrySub scores the selected metric as if m were subtracted.
	TrySub(m Member, weight float64, ev metrics.Evaluator) (Perf, error)

	// Compute evaluates metric on the current aggregate.
	Compute(ev metrics.Evaluator, metric metrics.Metric) Perf
	// ComputePerformance evaluates and caches the selected metric.
	ComputePerformance(ev metrics.Evaluator) Perf
	// Performance returns the cached value of the last ComputePerformance.
	Performance() Perf
	// JustPerf evaluates the selected metric without touching the cache.
	JustPerf(ev metrics.Evaluator) Perf
	// CompareTo compares cached performances under ev's direction.
	CompareTo(other Model, ev metrics.Evaluator) int

	// Copy returns a deep snapshot.
	Copy() Model
	Models() int
	Name() string
}
