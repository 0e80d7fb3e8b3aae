// Package ensemble implements the aggregate models the search strategies
// mutate: a running weighted sum of member predictions over one split, and an
// N-class ensemble reducing per-class aggregates to a binary view.
package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ensemble/core/model"
	"github.com/YuminosukeSato/ensemble/dataset"
	"github.com/YuminosukeSato/ensemble/metrics"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// Predictions is a running sum of weighted member predictions over one split.
// The mean prediction of example i is scoreSum[i]/count, where count is the
// number of base models added (independent of their weights).
type Predictions struct {
	targets *dataset.Targets
	scores  *mat.VecDense // nil for an empty split
	count   int

	id    int
	name  string
	class int

	perf model.Perf
}

var (
	_ model.Model  = (*Predictions)(nil)
	_ model.Member = (*Predictions)(nil)
)

// NewPredictions creates an empty aggregator over t.
func NewPredictions(t *dataset.Targets) *Predictions {
	p := &Predictions{targets: t, id: -1, name: "empty"}
	if t.Len() > 0 {
		p.scores = mat.NewVecDense(t.Len(), nil)
	}
	return p
}

// NewCandidate wraps a single model's raw predictions. The result counts as
// one model and is not mutated by the search.
func NewCandidate(id int, name string, preds []float64, t *dataset.Targets) (*Predictions, error) {
	if len(preds) != t.Len() {
		return nil, errors.NewSizeMismatchError(name, t.Len(), len(preds))
	}
	p := &Predictions{targets: t, count: 1, id: id, name: name}
	if len(preds) > 0 {
		data := make([]float64, len(preds))
		copy(data, preds)
		p.scores = mat.NewVecDense(len(data), data)
	}
	return p, nil
}

// WithClass returns p tagged with class c, for use as an N-class member.
func (p *Predictions) WithClass(c int) *Predictions {
	p.class = c
	return p
}

// Add accumulates weight*m.Proba(i) for every example.
func (p *Predictions) Add(m model.Member, weight float64) error {
	if err := p.checkSize(m); err != nil {
		return err
	}
	if p.scores != nil {
		p.scores.AddScaledVec(p.scores, weight, memberVec(m))
	}
	p.count += m.Models()
	p.id, p.name = m.ID(), m.Name()
	return nil
}

// Sub removes a contribution previously added with the same weight.
func (p *Predictions) Sub(m model.Member, weight float64) error {
	if err := p.checkSize(m); err != nil {
		return err
	}
	if m.Models() > p.count {
		return errors.Wrapf(errors.ErrNotInEnsemble, "sub %s", m.Name())
	}
	if p.scores != nil {
		p.scores.AddScaledVec(p.scores, -weight, memberVec(m))
	}
	p.count -= m.Models()
	if p.count == 0 && p.scores != nil {
		// 空に戻ったら丸め誤差を残さない
		p.scores.Zero()
	}
	p.id, p.name = m.ID(), m.Name()
	return nil
}

// TryAdd evaluates the selected metric on p with m added, computed into a
// scratch vector. The result is bit-identical to Add followed by JustPerf.
func (p *Predictions) TryAdd(m model.Member, weight float64, ev metrics.Evaluator) (model.Perf, error) {
	return p.try(m, weight, ev, false)
}

// TrySub evaluates the selected metric on p with m subtracted.
func (p *Predictions) TrySub(m model.Member, weight float64, ev metrics.Evaluator) (model.Perf, error) {
	return p.try(m, weight, ev, true)
}

func (p *Predictions) try(m model.Member, weight float64, ev metrics.Evaluator, remove bool) (model.Perf, error) {
	if err := p.checkSize(m); err != nil {
		return model.Perf{}, err
	}
	view := &Predictions{targets: p.targets, id: m.ID(), name: m.Name(), class: p.class}
	w := weight
	if remove {
		if m.Models() > p.count {
			return model.Perf{}, errors.Wrapf(errors.ErrNotInEnsemble, "sub %s", m.Name())
		}
		view.count = p.count - m.Models()
		w = -weight
	} else {
		view.count = p.count + m.Models()
	}
	if p.scores != nil && view.count > 0 {
		view.scores = mat.NewVecDense(p.Len(), nil)
		view.scores.AddScaledVec(p.scores, w, memberVec(m))
	}
	return view.JustPerf(ev), nil
}

func (p *Predictions) checkSize(m model.Member) error {
	if m.Len() != p.Len() {
		return errors.NewSizeMismatchError("add "+m.Name(), p.Len(), m.Len())
	}
	return nil
}

// memberVec returns the mean predictions of m as a vector. Single-model
// aggregates expose their raw score vector directly.
func memberVec(m model.Member) mat.Vector {
	if pm, ok := m.(*Predictions); ok && pm.count == 1 {
		return pm.scores
	}
	data := make([]float64, m.Len())
	for i := range data {
		data[i] = m.Proba(i)
	}
	return mat.NewVecDense(len(data), data)
}

// Len returns the number of examples.
func (p *Predictions) Len() int { return p.targets.Len() }

// Proba returns the mean prediction of example i, or 0 for an empty aggregate.
func (p *Predictions) Proba(i int) float64 {
	if p.count == 0 {
		return 0
	}
	return p.scores.AtVec(i) / float64(p.count)
}

func (p *Predictions) Label(i int) int { return p.targets.Label(i) }
func (p *Predictions) Positives() int { return p.targets.Positives() }
func (p *Predictions) Negatives() int { return p.targets.Negatives() }
func (p *Predictions) Models() int { return p.count }
func (p *Predictions) ID() int { return p.id }
func (p *Predictions) Name() string { return p.name }
func (p *Predictions) Class() int { return p.class }
func (p *Predictions) Performance() model.Perf { return p.perf }

// Targets returns the split's labels.
func (p *Predictions) Targets() *dataset.Targets { return p.targets }

// Compute evaluates metric on the mean predictions.
func (p *Predictions) Compute(ev metrics.Evaluator, metric metrics.Metric) model.Perf {
	return model.Perf{Value: ev.Evaluate(metric, p), Descriptor: ev.Descriptor(metric)}
}

// ComputePerformance evaluates and caches the selected metric.
func (p *Predictions) ComputePerformance(ev metrics.Evaluator) model.Perf {
	p.perf = p.Compute(ev, ev.Selected())
	return p.perf
}

// JustPerf evaluates the selected metric without caching it.
func (p *Predictions) JustPerf(ev metrics.Evaluator) model.Perf {
	return p.Compute(ev, ev.Selected())
}

// CompareTo compares cached performances.
func (p *Predictions) CompareTo(other model.Model, ev metrics.Evaluator) int {
	return ev.Compare(p.perf.Value, other.Performance().Value)
}

// Copy returns a deep copy sharing only the immutable targets.
func (p *Predictions) Copy() model.Model {
	return p.clone()
}

func (p *Predictions) clone() *Predictions {
	c := *p
	if p.scores != nil {
		c.scores = mat.VecDenseCopyOf(p.scores)
	}
	return &c
}

// Bootstrap draws numPoints examples with replacement from the mean
// predictions using a generator seeded with seed.
func (p *Predictions) Bootstrap(seed int64, numPoints int) metrics.Sample {
	return metrics.Resample(p, seed, numPoints)
}
