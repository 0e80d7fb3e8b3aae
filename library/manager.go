package library

import (
	"context"

	"github.com/YuminosukeSato/ensemble/core/model"
	"github.com/YuminosukeSato/ensemble/core/parallel"
	"github.com/YuminosukeSato/ensemble/ensemble"
	"github.com/YuminosukeSato/ensemble/metrics"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
	"github.com/YuminosukeSato/ensemble/pkg/log"
)

// Record is one line of a split's performance report.
type Record struct {
	Step   int
	Split  string
	Models int
	Metric string
	Value  float64
	Name   string
}

// Reporter receives the records of every reported step, all splits at once,
// ordered by split and then by metric.
type Reporter interface {
	Step(records []Record) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(records []Record) error

func (f ReporterFunc) Step(records []Record) error { return f(records) }

// Manager keeps one bag per split and applies every committed move to all of
// them with the same weight. The training bag drives the search; the others
// are only reported.
type Manager struct {
	lib   *Library
	ev    metrics.Evaluator
	state *model.RunState
	bags  []model.Model
	comp  *model.Composition

	trackBest bool
	best      []model.Model
	bestStep  int

	steps  int
	logger log.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithBestTracking snapshots all bags whenever a reported step improves the
// training performance.
func WithBestTracking() Option {
	return func(m *Manager) { m.trackBest = true }
}

// WithLogger replaces the default logger.
func WithLogger(l log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager with one empty bag per split.
func NewManager(lib *Library, ev metrics.Evaluator, state *model.RunState, opts ...Option) *Manager {
	m := &Manager{
		lib:    lib,
		ev:     ev,
		state:  state,
		bags:   make([]model.Model, lib.NumSplits()),
		comp:   model.NewComposition(),
		logger: log.GetLoggerWithName("library"),
	}
	for i, s := range lib.Splits() {
		m.bags[i] = ensemble.NewPredictions(s.Targets)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Library returns the managed library.
func (m *Manager) Library() *Library { return m.lib }

// Evaluator returns the evaluator seeded with the current bootstrap seed.
func (m *Manager) Evaluator() metrics.Evaluator { return m.state.Evaluator(m.ev) }

// State returns the run state.
func (m *Manager) State() *model.RunState { return m.state }

// Train returns the training bag.
func (m *Manager) Train() model.Model { return m.bags[m.lib.Train()] }

// Bag returns the bag of split s.
func (m *Manager) Bag(s int) model.Model { return m.bags[s] }

// Size returns the number of models in the ensemble.
func (m *Manager) Size() int { return m.Train().Models() }

// Composition returns a copy of the current composition.
func (m *Manager) Composition() *model.Composition { return m.comp.Clone() }

// AddCandidate adds candidate id to every split's bag with the current decay
// weight, records it, and advances the run state.
func (m *Manager) AddCandidate(id int) error {
	w := m.state.Weight()
	if err := m.apply(id, w, model.Model.Add); err != nil {
		return err
	}
	c, _ := m.lib.Candidate(m.lib.Train(), id)
	m.comp.Add(id, c.Name(), w)
	m.state.Advance()
	m.logger.Debug("Candidate added",
		log.CandidateIDKey, id,
		log.CandidateNameKey, c.Name(),
		log.WeightKey, w,
		log.EnsembleSizeKey, m.Size(),
	)
	return nil
}

// RemoveCandidate removes the latest insertion of id from every split's bag
// using the weight it was added with, and advances the run state.
func (m *Manager) RemoveCandidate(id int) error {
	w, ok := m.comp.Weight(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotInEnsemble, "id %d", id)
	}
	if err := m.apply(id, w, model.Model.Sub); err != nil {
		return err
	}
	m.comp.Remove(id)
	m.state.Advance()
	m.logger.Debug("Candidate removed",
		log.CandidateIDKey, id,
		log.EnsembleSizeKey, m.Size(),
	)
	return nil
}

func (m *Manager) apply(id int, w float64, op func(model.Model, model.Member, float64) error) error {
	for s := range m.bags {
		c, err := m.lib.Candidate(s, id)
		if err != nil {
			return err
		}
		if err := op(m.bags[s], c, w); err != nil {
			return err
		}
	}
	return nil
}

// TryAdd scores the training bag with id tentatively added. The bag is not
// modified.
func (m *Manager) TryAdd(id int) (model.Perf, error) {
	return tentative(m.Train(), m.lib, id, m.state.Weight(), m.Evaluator(), false)
}

// TryRemove scores the training bag with the latest insertion of id
// tentatively removed.
func (m *Manager) TryRemove(id int) (model.Perf, error) {
	w, ok := m.comp.Weight(id)
	if !ok {
		return model.Perf{}, errors.Wrapf(errors.ErrNotInEnsemble, "id %d", id)
	}
	return tentative(m.Train(), m.lib, id, w, m.Evaluator(), true)
}

func tentative(bag model.Model, lib *Library, id int, w float64, ev metrics.Evaluator, remove bool) (model.Perf, error) {
	c, err := lib.Candidate(lib.Train(), id)
	if err != nil {
		return model.Perf{}, err
	}
	if remove {
		return bag.TrySub(c, w, ev)
	}
	return bag.TryAdd(c, w, ev)
}

// Scan scores a tentative move for every id in ids and returns the results in
// the same order. The training bag is only read, so with workers > 1 the ids
// are split across goroutines sharing it; the results do not depend on the
// number of workers.
func (m *Manager) Scan(ctx context.Context, ids []int, remove bool, workers int) ([]model.Perf, error) {
	ev := m.Evaluator()
	weights := make([]float64, len(ids))
	for i, id := range ids {
		weights[i] = m.state.Weight()
		if remove {
			w, ok := m.comp.Weight(id)
			if !ok {
				return nil, errors.Wrapf(errors.ErrNotInEnsemble, "id %d", id)
			}
			weights[i] = w
		}
	}

	train := m.Train()
	out := make([]model.Perf, len(ids))
	err := parallel.ParallelizeWithThreshold(ctx, len(ids), 1, workers, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			perf, err := tentative(train, m.lib, ids[i], weights[i], ev, remove)
			if err != nil {
				return err
			}
			out[i] = perf
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CandidatePerf returns the individual performance of candidate id on split s.
func (m *Manager) CandidatePerf(s, id int) (model.Perf, error) {
	c, err := m.lib.Candidate(s, id)
	if err != nil {
		return model.Perf{}, err
	}
	return c.JustPerf(m.Evaluator()), nil
}

// Report computes the report records of every split for the current
// ensemble, updates the best snapshot, and hands the records to r.
func (m *Manager) Report(r Reporter) error {
	m.steps++
	ev := m.Evaluator()
	var records []Record
	for s, bag := range m.bags {
		bag.ComputePerformance(ev)
		records = append(records, m.records(s, bag, ev)...)
	}

	train := m.Train()
	if m.trackBest && (m.best == nil || train.CompareTo(m.best[m.lib.Train()], ev) > 0) {
		m.best = make([]model.Model, len(m.bags))
		for s, bag := range m.bags {
			m.best[s] = bag.Copy()
		}
		m.bestStep = m.steps
	}

	m.logger.Debug("Step reported",
		log.StepKey, m.steps,
		log.EnsembleSizeKey, train.Models(),
		log.MetricKey, train.Performance().Name,
		log.MetricValueKey, train.Performance().Value,
	)
	if r == nil {
		return nil
	}
	return r.Step(records)
}

// ReportCandidate hands r the records of candidate id evaluated on its own.
func (m *Manager) ReportCandidate(id int, r Reporter) error {
	m.steps++
	ev := m.Evaluator()
	var records []Record
	for s := range m.bags {
		c, err := m.lib.Candidate(s, id)
		if err != nil {
			return err
		}
		records = append(records, m.records(s, c, ev)...)
	}
	if r == nil {
		return nil
	}
	return r.Step(records)
}

func (m *Manager) records(s int, bag model.Model, ev metrics.Evaluator) []Record {
	ms := metrics.Reported()
	if ev.Selected() == metrics.BSP {
		ms = append(ms, metrics.BSP)
	}
	out := make([]Record, 0, len(ms))
	for _, metric := range ms {
		out = append(out, Record{
			Step:   m.steps,
			Split:  m.lib.Split(s).Name,
			Models: bag.Models(),
			Metric: metric.String(),
			Value:  bag.Compute(ev, metric).Value,
			Name:   bag.Name(),
		})
	}
	return out
}

// Best returns the per-split snapshot of the best training ensemble seen and
// the step it was taken at, or nil when best tracking is off or nothing has
// been reported yet.
func (m *Manager) Best() ([]model.Model, int) { return m.best, m.bestStep }

// Steps returns the number of reported steps.
func (m *Manager) Steps() int { return m.steps }
