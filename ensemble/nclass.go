package ensemble

import (
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/ensemble/core/model"
	"github.com/YuminosukeSato/ensemble/dataset"
	"github.com/YuminosukeSato/ensemble/metrics"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// NClass is an ensemble over a multi-class problem reduced to one-vs-rest
// binary problems. It keeps one aggregator per class; the binary view it
// exposes takes, for every example, the class with the highest mean
// prediction and copies through that class's probability and label.
type NClass struct {
	bags    []*Predictions
	classes []*dataset.Targets

	// reduced binary view
	labels *dataset.Targets
	proba  []float64

	name string
	perf model.Perf
}

var _ model.Model = (*NClass)(nil)

// NewNClass creates an empty N-class ensemble. classTargets[c] holds the
// one-vs-rest labels of class c; all must have the same length.
func NewNClass(classTargets []*dataset.Targets) (*NClass, error) {
	if len(classTargets) == 0 {
		return nil, errors.NewValidationError("classes", "at least one class is required", 0)
	}
	n := classTargets[0].Len()
	e := &NClass{
		bags:    make([]*Predictions, len(classTargets)),
		classes: classTargets,
		labels:  classTargets[0].Clone(),
		proba:   make([]float64, n),
		name:    "empty",
	}
	for c, t := range classTargets {
		if t.Len() != n {
			return nil, errors.NewSizeMismatchError("NewNClass", n, t.Len())
		}
		e.bags[c] = NewPredictions(t)
	}
	e.reduce()
	return e, nil
}

// Add adds m to the bag of its class.
func (e *NClass) Add(m model.Member, weight float64) error {
	bag, err := e.bag(m)
	if err != nil {
		return err
	}
	if err := bag.Add(m, weight); err != nil {
		return err
	}
	e.name = m.Name()
	e.reduce()
	return nil
}

// Sub removes m from the bag of its class.
func (e *NClass) Sub(m model.Member, weight float64) error {
	bag, err := e.bag(m)
	if err != nil {
		return err
	}
	if err := bag.Sub(m, weight); err != nil {
		return err
	}
	e.name = m.Name()
	e.reduce()
	return nil
}

// TryAdd scores e with m added on a copy; e is left untouched.
func (e *NClass) TryAdd(m model.Member, weight float64, ev metrics.Evaluator) (model.Perf, error) {
	c := e.Copy().(*NClass)
	if err := c.Add(m, weight); err != nil {
		return model.Perf{}, err
	}
	return c.JustPerf(ev), nil
}

// TrySub scores e with m subtracted on a copy.
func (e *NClass) TrySub(m model.Member, weight float64, ev metrics.Evaluator) (model.Perf, error) {
	c := e.Copy().(*NClass)
	if err := c.Sub(m, weight); err != nil {
		return model.Perf{}, err
	}
	return c.JustPerf(ev), nil
}

func (e *NClass) bag(m model.Member) (*Predictions, error) {
	c := m.Class()
	if c < 0 || c >= len(e.bags) {
		return nil, errors.NewValidationError("class", "out of range", c)
	}
	return e.bags[c], nil
}

// reduce recomputes the binary view. Ties go to the lowest class index.
func (e *NClass) reduce() {
	scores := make([]float64, len(e.bags))
	for i := range e.proba {
		for c, b := range e.bags {
			scores[c] = b.Proba(i)
		}
		best := floats.MaxIdx(scores)
		e.proba[i] = scores[best]
		e.labels.Relabel(i, e.classes[best].Label(i))
	}
}

func (e *NClass) Len() int { return len(e.proba) }
func (e *NClass) Proba(i int) float64 { return e.proba[i] }
func (e *NClass) Label(i int) int { return e.labels.Label(i) }
func (e *NClass) Positives() int { return e.labels.Positives() }
func (e *NClass) Negatives() int { return e.labels.Negatives() }

// Models returns the number of base models across all classes.
func (e *NClass) Models() int {
	n := 0
	for _, b := range e.bags {
		n += b.Models()
	}
	return n
}

// Name returns the name of the last member added or removed.
func (e *NClass) Name() string { return e.name }

// Bag returns the aggregator of class c.
func (e *NClass) Bag(c int) *Predictions { return e.bags[c] }

func (e *NClass) Compute(ev metrics.Evaluator, metric metrics.Metric) model.Perf {
	return model.Perf{Value: ev.Evaluate(metric, e), Descriptor: ev.Descriptor(metric)}
}

func (e *NClass) ComputePerformance(ev metrics.Evaluator) model.Perf {
	e.perf = e.Compute(ev, ev.Selected())
	return e.perf
}

func (e *NClass) Performance() model.Perf { return e.perf }

func (e *NClass) JustPerf(ev metrics.Evaluator) model.Perf {
	return e.Compute(ev, ev.Selected())
}

func (e *NClass) CompareTo(other model.Model, ev metrics.Evaluator) int {
	return ev.Compare(e.perf.Value, other.Performance().Value)
}

// Copy returns a deep copy. The per-class targets are shared.
func (e *NClass) Copy() model.Model {
	c := &NClass{
		bags:    make([]*Predictions, len(e.bags)),
		classes: e.classes,
		labels:  e.labels.Clone(),
		proba:   make([]float64, len(e.proba)),
		name:    e.name,
		perf:    e.perf,
	}
	for i, b := range e.bags {
		c.bags[i] = b.clone()
	}
	copy(c.proba, e.proba)
	return c
}
