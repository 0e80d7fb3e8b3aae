package report

import (
	"encoding/json"
	"io"
	"os"

	"github.com/YuminosukeSato/ensemble/core/model"
	"github.com/YuminosukeSato/ensemble/library"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// SplitSummary is the outcome of a run on one split.
type SplitSummary struct {
	Name       string      `json:"name"`
	Final      float64     `json:"final"`
	Best       *float64    `json:"best,omitempty"`
	Trajectory *Trajectory `json:"trajectory,omitempty"`
}

// Summary describes a finished run.
type Summary struct {
	Strategy    string             `json:"strategy"`
	Metric      string             `json:"metric"`
	Train       string             `json:"train"`
	Steps       int                `json:"steps"`
	BestStep    int                `json:"best_step,omitempty"`
	Composition *model.Composition `json:"composition"`
	Run         model.RunSnapshot  `json:"run"`
	Splits      []SplitSummary     `json:"splits"`
}

// NewSummary collects the state of m after a run. h may be nil.
func NewSummary(strategy string, m *library.Manager, h *History) *Summary {
	ev := m.Evaluator()
	lib := m.Library()
	best, bestStep := m.Best()

	s := &Summary{
		Strategy:    strategy,
		Metric:      ev.Descriptor(ev.Selected()).Name,
		Train:       lib.Split(lib.Train()).Name,
		Steps:       m.Steps(),
		BestStep:    bestStep,
		Composition: m.Composition(),
		Run:         m.State().GetState(),
	}
	for i, split := range lib.Splits() {
		ss := SplitSummary{
			Name:  split.Name,
			Final: m.Bag(i).JustPerf(ev).Value,
		}
		if best != nil {
			v := best[i].JustPerf(ev).Value
			ss.Best = &v
		}
		if h != nil {
			if t, ok := h.Trajectory(split.Name); ok {
				ss.Trajectory = &t
			}
		}
		s.Splits = append(s.Splits, ss)
	}
	return s
}

// WriteJSON writes s as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(s), "encode summary")
}

// Save writes s to path.
func (s *Summary) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return s.WriteJSON(f)
}
