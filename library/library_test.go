package library

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/ensemble/core/model"
	"github.com/YuminosukeSato/ensemble/dataset"
	"github.com/YuminosukeSato/ensemble/ensemble"
	"github.com/YuminosukeSato/ensemble/metrics"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func validFS() fstest.MapFS {
	return fstest.MapFS{
		"train/targets.train": file("1\n0\n1\n0\n"),
		"train/a.train":       file("0.9\n0.1\n0.8\n0.2\n"),
		"train/b.train":       file("0.5\n0.5\n0.5\n0.5\n"),
		"train/notes.txt":     file("ignored"),
		"test/targets.test":   file("0\n1\n1\n"),
		"test/a.test":         file("0.2\n0.7\n0.9\n"),
		"test/b.test":         file("0.5\n0.5\n0.5\n"),
		"README":              file("ignored"),
	}
}

func TestLoad(t *testing.T) {
	lib, err := Load(validFS(), "train")
	require.NoError(t, err)

	require.Equal(t, 2, lib.NumSplits())
	assert.Equal(t, "test", lib.Split(0).Name, "splits are ordered by directory name")
	assert.Equal(t, "train", lib.Split(1).Name)
	assert.Equal(t, 1, lib.Train())
	assert.Equal(t, 2, lib.Size())

	c, err := lib.Candidate(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "b.train", c.Name())
	assert.Equal(t, 1, c.ID())
	assert.Equal(t, 3, lib.Split(0).Targets.Len())

	_, err = lib.Candidate(0, 2)
	assert.True(t, errors.Is(err, errors.ErrUnknownCandidate))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(fstest.MapFS)
		train  string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing targets",
			mutate: func(fsys fstest.MapFS) { delete(fsys, "test/targets.test") },
			check: func(t *testing.T, err error) {
				var e *errors.MissingTargetsError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "test", e.Split)
				assert.Equal(t, 0, e.Found)
			},
		},
		{
			name:   "duplicate targets",
			mutate: func(fsys fstest.MapFS) { fsys["test/targets.csv"] = file("1\n") },
			check: func(t *testing.T, err error) {
				var e *errors.MissingTargetsError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 2, e.Found)
			},
		},
		{
			name:   "candidate count differs",
			mutate: func(fsys fstest.MapFS) { delete(fsys, "test/b.test") },
			check: func(t *testing.T, err error) {
				var e *errors.LibraryInconsistencyError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 2, e.Expected)
				assert.Equal(t, 1, e.Got)
			},
		},
		{
			name:   "prediction length differs",
			mutate: func(fsys fstest.MapFS) { fsys["train/b.train"] = file("0.5\n0.5\n") },
			check: func(t *testing.T, err error) {
				var e *errors.SizeMismatchError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 4, e.Expected)
				assert.Equal(t, 2, e.Got)
			},
		},
		{
			name:   "malformed prediction",
			mutate: func(fsys fstest.MapFS) { fsys["test/a.test"] = file("0.2\nx\n0.9\n") },
			check: func(t *testing.T, err error) {
				var e *errors.FormatError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "test/a.test", e.Source)
				assert.Equal(t, 2, e.Line)
			},
		},
		{
			name:   "unknown train split",
			mutate: func(fstest.MapFS) {},
			train:  "valid",
			check: func(t *testing.T, err error) {
				var e *errors.ValidationError
				require.True(t, errors.As(err, &e))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := validFS()
			tt.mutate(fsys)
			train := tt.train
			if train == "" {
				train = "train"
			}
			lib, err := Load(fsys, train)
			assert.Nil(t, lib)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestLoadWarnsOnNameMismatch(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(func(error) {})

	fsys := validFS()
	delete(fsys, "test/b.test")
	fsys["test/c.test"] = file("0.5\n0.5\n0.5\n")

	_, err := Load(fsys, "train")
	require.NoError(t, err)
	require.Len(t, warned, 1)
	assert.Contains(t, warned[0].Error(), `"b"`)
	assert.Contains(t, warned[0].Error(), `"c"`)
}

// testLibrary builds a two-split library. On the training split candidate 0
// ranks perfectly, candidate 1 is uninformative and candidate 2 is inverted.
func testLibrary(t *testing.T) *Library {
	t.Helper()
	build := func(name string, labels []int, preds ...[]float64) Split {
		tg, err := dataset.NewTargets(labels)
		require.NoError(t, err)
		s := Split{Name: name, Targets: tg}
		for id, p := range preds {
			c, err := ensemble.NewCandidate(id, string(rune('a'+id))+"."+name, p, tg)
			require.NoError(t, err)
			s.Candidates = append(s.Candidates, c)
		}
		return s
	}
	train := build("train", []int{1, 0, 1, 0},
		[]float64{0.75, 0.25, 0.625, 0.375},
		[]float64{0.5, 0.5, 0.5, 0.5},
		[]float64{0.25, 0.75, 0.375, 0.625},
	)
	test := build("test", []int{0, 1, 1},
		[]float64{0.25, 0.75, 0.5},
		[]float64{0.5, 0.5, 0.5},
		[]float64{0.75, 0.25, 0.5},
	)
	lib, err := New([]Split{train, test}, 0)
	require.NoError(t, err)
	return lib
}

func newTestManager(t *testing.T, decay float64, opts ...Option) *Manager {
	ev := metrics.NewEvaluator(metrics.DefaultConfig(), metrics.ROC)
	return NewManager(testLibrary(t), ev, model.NewRunState(decay, 1, 0), opts...)
}

func TestManagerAddRemove(t *testing.T) {
	m := newTestManager(t, 0.5)

	require.NoError(t, m.AddCandidate(0))
	require.NoError(t, m.AddCandidate(1))
	require.NoError(t, m.AddCandidate(1))

	assert.Equal(t, 3, m.Size())
	assert.Equal(t, 3, m.Bag(1).Models(), "every split is updated")
	assert.Equal(t, 0.125, m.State().Weight())
	assert.Equal(t, map[int]int{0: 1, 1: 2}, m.Composition().Counts())

	// train example 0: (0.75*1 + 0.5*0.5 + 0.5*0.25) / 3
	assert.InDelta(t, 1.125/3, m.Train().Proba(0), 1e-12)

	require.NoError(t, m.RemoveCandidate(1))
	require.NoError(t, m.RemoveCandidate(1))
	assert.Equal(t, 1, m.Size())
	assert.Equal(t, 0.75, m.Train().Proba(0))
	assert.Equal(t, 0.25, m.Bag(1).Proba(0))

	err := m.RemoveCandidate(2)
	assert.True(t, errors.Is(err, errors.ErrNotInEnsemble))
}

func TestManagerTentativeMoves(t *testing.T) {
	m := newTestManager(t, 0)
	require.NoError(t, m.AddCandidate(1))

	perf, err := m.TryAdd(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, perf.Value)
	assert.Equal(t, "ROC", perf.Name)
	assert.Equal(t, 1, m.Size(), "tentative add is undone")
	assert.Equal(t, 0.5, m.Train().Proba(0))

	perf, err = m.TryRemove(1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, perf.Value, "an empty ensemble ties every example")
	assert.Equal(t, 1, m.Size())

	_, err = m.TryRemove(0)
	assert.True(t, errors.Is(err, errors.ErrNotInEnsemble))
}

func TestManagerScanParallelMatchesSequential(t *testing.T) {
	m := newTestManager(t, 0)
	require.NoError(t, m.AddCandidate(1))
	ids := []int{0, 1, 2, 0, 2}

	seq, err := m.Scan(context.Background(), ids, false, 1)
	require.NoError(t, err)
	par, err := m.Scan(context.Background(), ids, false, 3)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	assert.Equal(t, 1.0, seq[0].Value)
	assert.Equal(t, 0.0, seq[2].Value)
	assert.Equal(t, 1, m.Size())

	rm, err := m.Scan(context.Background(), []int{1}, true, 2)
	require.NoError(t, err)
	assert.Len(t, rm, 1)
}

func TestManagerScanLeavesTrainingBagUntouched(t *testing.T) {
	tg, err := dataset.NewTargets([]int{1, 0})
	require.NoError(t, err)
	s := Split{Name: "train", Targets: tg}
	for id, p := range [][]float64{{0.3, 0.3}, {0.1, 0.7}, {0.7, 0.2}, {0.6, 0.1}} {
		c, err := ensemble.NewCandidate(id, string(rune('a'+id))+".train", p, tg)
		require.NoError(t, err)
		s.Candidates = append(s.Candidates, c)
	}
	lib, err := New([]Split{s}, 0)
	require.NoError(t, err)
	ev := metrics.NewEvaluator(metrics.DefaultConfig(), metrics.ROC)
	m := NewManager(lib, ev, model.NewRunState(0, 1, 0))

	require.NoError(t, m.AddCandidate(0))
	require.Equal(t, 0.5, m.Train().JustPerf(m.Evaluator()).Value)

	ids := []int{1, 2, 3}
	var seq []model.Perf
	for i := 0; i < 3; i++ {
		seq, err = m.Scan(context.Background(), ids, false, 1)
		require.NoError(t, err)
	}
	_, err = m.Scan(context.Background(), []int{0}, true, 1)
	require.NoError(t, err)
	_, err = m.TryAdd(2)
	require.NoError(t, err)

	assert.Equal(t, 0.3, m.Train().Proba(0))
	assert.Equal(t, 0.3, m.Train().Proba(1))
	assert.Equal(t, 0.5, m.Train().JustPerf(m.Evaluator()).Value, "the tied pair stays tied")

	par, err := m.Scan(context.Background(), ids, false, 3)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestManagerReport(t *testing.T) {
	m := newTestManager(t, 0, WithBestTracking())

	var steps [][]Record
	r := ReporterFunc(func(records []Record) error {
		steps = append(steps, records)
		return nil
	})

	require.NoError(t, m.AddCandidate(0))
	require.NoError(t, m.Report(r))
	require.NoError(t, m.AddCandidate(2))
	require.NoError(t, m.Report(r))

	require.Len(t, steps, 2)
	require.Len(t, steps[0], 2*13, "BSP is only reported when selected")
	first := steps[0][2]
	assert.Equal(t, Record{Step: 1, Split: "train", Models: 1, Metric: "ROC", Value: 1, Name: "a.train"}, first)
	assert.Equal(t, "test", steps[0][13].Split)
	assert.Equal(t, 2, steps[1][0].Models)

	best, step := m.Best()
	require.Len(t, best, 2)
	assert.Equal(t, 1, step, "the worse second step does not replace the snapshot")
	assert.Equal(t, 1, best[0].Models())
	assert.Equal(t, 0.75, best[0].Proba(0))
}

func TestManagerReportsBootstrapWhenSelected(t *testing.T) {
	cfg := metrics.DefaultConfig()
	cfg.BootstrapSamples = 3
	ev := metrics.NewEvaluator(cfg, metrics.BSP)
	m := NewManager(testLibrary(t), ev, model.NewRunState(0, 5, cfg.BootstrapSamples))

	require.NoError(t, m.AddCandidate(0))
	assert.Equal(t, int64(8), m.Evaluator().Seed(), "seed advances by the resample count")

	var got []Record
	require.NoError(t, m.Report(ReporterFunc(func(records []Record) error {
		got = records
		return nil
	})))
	require.Len(t, got, 2*14)
	assert.Equal(t, "BSP", got[13].Metric)

	best, _ := m.Best()
	assert.Nil(t, best, "best tracking is off")
}

func TestManagerReportCandidate(t *testing.T) {
	m := newTestManager(t, 0)
	var got []Record
	require.NoError(t, m.ReportCandidate(2, ReporterFunc(func(records []Record) error {
		got = records
		return nil
	})))
	require.Len(t, got, 26)
	assert.Equal(t, "c.train", got[0].Name)
	assert.Equal(t, 0.0, got[2].Value)
	assert.Equal(t, 0, m.Size(), "reporting a candidate does not change the ensemble")
}

func TestNewValidation(t *testing.T) {
	lib := testLibrary(t)
	splits := lib.Splits()

	_, err := New(splits, 5)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = New([]Split{splits[0], {Name: "x", Targets: splits[1].Targets}}, 0)
	var le *errors.LibraryInconsistencyError
	assert.True(t, errors.As(err, &le))
}
