package selection

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/YuminosukeSato/ensemble/core/model"
	"github.com/YuminosukeSato/ensemble/ensemble"
	"github.com/YuminosukeSato/ensemble/library"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
	"github.com/YuminosukeSato/ensemble/pkg/log"
)

// Options bound a search.
type Options struct {
	// MaxIterations caps the committed steps of the iterative strategies.
	// Values <= 0 use the library size.
	MaxIterations int
	// Workers is the number of goroutines scoring tentative moves. 1 scans
	// sequentially, values <= 0 use one worker per CPU.
	Workers int
}

// DefaultOptions returns sequential options bounded by the library size.
func DefaultOptions() Options {
	return Options{Workers: 1}
}

// Searcher runs strategies against a bag manager. Every committed move is
// followed by a report to r.
type Searcher struct {
	m      *library.Manager
	r      library.Reporter
	opts   Options
	logger log.Logger
}

// New creates a searcher. r may be nil.
func New(m *library.Manager, r library.Reporter, opts Options) *Searcher {
	return &Searcher{
		m:      m,
		r:      r,
		opts:   opts,
		logger: log.GetLoggerWithName("selection"),
	}
}

// Manager returns the bag manager the searcher mutates.
func (s *Searcher) Manager() *library.Manager { return s.m }

func (s *Searcher) maxIterations() int {
	if s.opts.MaxIterations <= 0 {
		return s.m.Library().Size()
	}
	return s.opts.MaxIterations
}

// Run dispatches to the named strategy. Panics raised while searching are
// returned as errors.
func (s *Searcher) Run(ctx context.Context, strategy Strategy) error {
	return errors.SafeExecute("selection."+string(strategy), func() error {
		if s.m.Library().Size() == 0 {
			errors.Warn(errors.ErrEmptyLibrary)
			return nil
		}

		logger := s.logger.With(log.StrategyKey, string(strategy), log.OperationKey, log.OperationSelect)
		logger.Info("Selection started",
			log.CandidatesKey, s.m.Library().Size(),
			log.IterationKey, s.maxIterations(),
		)
		start := time.Now()

		var err error
		switch strategy {
		case StrategySort:
			err = s.Sort(ctx)
		case StrategyForward:
			err = s.Forward(ctx, false)
		case StrategyForwardReplace:
			err = s.Forward(ctx, true)
		case StrategyBackward:
			err = s.Backward(ctx)
		case StrategyGreatestIncrease:
			err = s.GreatestIncrease(ctx)
		case StrategySortThenForward:
			err = s.SortThenForward(ctx)
		case StrategyEachModel:
			err = s.EachModel(ctx)
		default:
			err = errors.NewValidationError("strategy", "unknown search strategy", string(strategy))
		}
		if err != nil {
			return err
		}

		perf := s.m.Train().JustPerf(s.m.Evaluator())
		logger.Info("Selection finished",
			log.EnsembleSizeKey, s.m.Size(),
			log.MetricKey, perf.Name,
			log.MetricValueKey, perf.Value,
			log.StepKey, s.m.Steps(),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
		return nil
	})
}

// rank orders all candidate ids by individual training performance, best
// first. Exact ties keep id order.
func (s *Searcher) rank() ([]int, error) {
	n := s.m.Library().Size()
	perfs := make([]model.Perf, n)
	ids := make([]int, n)
	for id := 0; id < n; id++ {
		p, err := s.m.CandidatePerf(s.m.Library().Train(), id)
		if err != nil {
			return nil, err
		}
		perfs[id] = p
		ids[id] = id
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return perfs[ids[i]].Compare(perfs[ids[j]]) > 0
	})
	return ids, nil
}

// argBest returns the index of the best performance. Only strictly better
// values replace the current best, so the earliest wins ties.
func argBest(perfs []model.Perf) int {
	best := 0
	for i := 1; i < len(perfs); i++ {
		if perfs[i].Compare(perfs[best]) > 0 {
			best = i
		}
	}
	return best
}

func (s *Searcher) add(id int) error {
	if err := s.m.AddCandidate(id); err != nil {
		return err
	}
	return s.m.Report(s.r)
}

func (s *Searcher) remove(id int) error {
	if err := s.m.RemoveCandidate(id); err != nil {
		return err
	}
	return s.m.Report(s.r)
}

// Sort adds candidates in ranked order, up to the iteration cap.
func (s *Searcher) Sort(ctx context.Context) error {
	return s.sortPrefix(ctx, s.maxIterations())
}

func (s *Searcher) sortPrefix(ctx context.Context, limit int) error {
	ids, err := s.rank()
	if err != nil {
		return err
	}
	for i := 0; i < len(ids) && i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.add(ids[i]); err != nil {
			return err
		}
	}
	return nil
}

// Forward runs forward selection. Each iteration scores every available
// candidate added to the ensemble and commits the best one. Without
// replacement the committed candidate leaves the pool.
func (s *Searcher) Forward(ctx context.Context, replacement bool) error {
	return s.forward(ctx, replacement, s.maxIterations())
}

func (s *Searcher) forward(ctx context.Context, replacement bool, limit int) error {
	available, err := s.rank()
	if err != nil {
		return err
	}

	for it := 0; len(available) > 0 && it < limit; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		perfs, err := s.m.Scan(ctx, available, false, s.opts.Workers)
		if err != nil {
			return err
		}
		best := argBest(perfs)
		id := available[best]
		s.logger.Debug("Forward step",
			log.IterationKey, it,
			log.CandidateIDKey, id,
			log.BestValueKey, perfs[best].Value,
		)
		if err := s.add(id); err != nil {
			return err
		}
		if !replacement {
			available = append(available[:best], available[best+1:]...)
		}
	}
	return nil
}

// Backward starts from the full library and repeatedly commits the removal
// that scores best, stopping at two members.
func (s *Searcher) Backward(ctx context.Context) error {
	members, err := s.rank()
	if err != nil {
		return err
	}
	for _, id := range members {
		if err := s.m.AddCandidate(id); err != nil {
			return err
		}
	}
	if err := s.m.Report(s.r); err != nil {
		return err
	}

	for len(members) > 2 {
		if err := ctx.Err(); err != nil {
			return err
		}
		perfs, err := s.m.Scan(ctx, members, true, s.opts.Workers)
		if err != nil {
			return err
		}
		best := argBest(perfs)
		id := members[best]
		s.logger.Debug("Backward step",
			log.EnsembleSizeKey, len(members),
			log.CandidateIDKey, id,
			log.BestValueKey, perfs[best].Value,
		)
		if err := s.remove(id); err != nil {
			return err
		}
		members = append(members[:best], members[best+1:]...)
	}
	return nil
}

// GreatestIncrease sweeps the ranked candidates from best to worst on a
// scratch aggregate, records the change each one causes when it joins all
// better-ranked candidates, and commits candidates by decreasing gain. The
// best candidate anchors the sweep and is always committed first.
func (s *Searcher) GreatestIncrease(ctx context.Context) error {
	ids, err := s.rank()
	if err != nil {
		return err
	}

	lib := s.m.Library()
	train := lib.Split(lib.Train())
	ev := s.m.Evaluator()
	scratch := ensemble.NewPredictions(train.Targets)

	gains := make(map[int]float64, len(ids))
	var prev model.Perf
	for i, id := range ids {
		c, err := lib.Candidate(lib.Train(), id)
		if err != nil {
			return err
		}
		if err := scratch.Add(c, 1); err != nil {
			return err
		}
		perf := scratch.JustPerf(ev)
		if i == 0 {
			gains[id] = math.Inf(1)
		} else {
			gain := perf.Value - prev.Value
			if !perf.HigherIsBetter {
				gain = -gain
			}
			gains[id] = gain
		}
		prev = perf
	}

	sort.SliceStable(ids, func(i, j int) bool { return gains[ids[i]] > gains[ids[j]] })

	limit := s.maxIterations()
	for i := 0; i < len(ids) && i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.add(ids[i]); err != nil {
			return err
		}
	}
	return nil
}

// SortThenForward finds the ranked prefix with the best training performance,
// commits it, and spends the rest of the iteration budget on forward
// selection with replacement.
func (s *Searcher) SortThenForward(ctx context.Context) error {
	k, err := s.bestPrefix()
	if err != nil {
		return err
	}
	limit := s.maxIterations()
	if k > limit {
		k = limit
	}
	s.logger.Debug("Sort prefix chosen", log.EnsembleSizeKey, k)

	if err := s.sortPrefix(ctx, k); err != nil {
		return err
	}
	if rest := limit - k; rest > 0 {
		return s.forward(ctx, true, rest)
	}
	return nil
}

// bestPrefix returns the length of the ranked prefix whose mean scores best.
// The prefix always contains the best single candidate.
func (s *Searcher) bestPrefix() (int, error) {
	ids, err := s.rank()
	if err != nil {
		return 0, err
	}

	lib := s.m.Library()
	ev := s.m.Evaluator()
	scratch := ensemble.NewPredictions(lib.Split(lib.Train()).Targets)

	var best model.Perf
	k := 0
	for i, id := range ids {
		c, err := lib.Candidate(lib.Train(), id)
		if err != nil {
			return 0, err
		}
		if err := scratch.Add(c, 1); err != nil {
			return 0, err
		}
		perf := scratch.JustPerf(ev)
		if i == 0 || perf.Compare(best) > 0 {
			best = perf
			k = i + 1
		}
	}
	return k, nil
}

// EachModel reports every candidate on its own, in ranked order, without
// building an ensemble.
func (s *Searcher) EachModel(ctx context.Context) error {
	ids, err := s.rank()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.m.ReportCandidate(id, s.r); err != nil {
			return err
		}
	}
	return nil
}
