package report

import (
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/ensemble/library"
)

// Point is the value of the tracked metric after one reported step.
type Point struct {
	Step   int     `json:"step"`
	Models int     `json:"models"`
	Value  float64 `json:"value"`
}

// History keeps the trajectory of one metric on every split.
type History struct {
	mu     sync.Mutex
	metric string
	splits []string
	series map[string][]Point
}

// NewHistory tracks metric, e.g. "ROC".
func NewHistory(metric string) *History {
	return &History{metric: metric, series: make(map[string][]Point)}
}

// Metric returns the tracked metric name.
func (h *History) Metric() string { return h.metric }

// Step implements library.Reporter.
func (h *History) Step(records []library.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range records {
		if r.Metric != h.metric {
			continue
		}
		if _, ok := h.series[r.Split]; !ok {
			h.splits = append(h.splits, r.Split)
		}
		h.series[r.Split] = append(h.series[r.Split], Point{Step: r.Step, Models: r.Models, Value: r.Value})
	}
	return nil
}

// Splits returns the split names in the order they were first reported.
func (h *History) Splits() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.splits...)
}

// Series returns a copy of the points of split.
func (h *History) Series(split string) []Point {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Point(nil), h.series[split]...)
}

// Trajectory summarises the values a split went through.
type Trajectory struct {
	Steps  int     `json:"steps"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Last   float64 `json:"last"`
}

// Trajectory returns the statistics of split, or false when nothing was
// reported for it.
func (h *History) Trajectory(split string) (Trajectory, bool) {
	pts := h.Series(split)
	if len(pts) == 0 {
		return Trajectory{}, false
	}
	values := make([]float64, len(pts))
	for i, p := range pts {
		values[i] = p.Value
	}
	t := Trajectory{
		Steps: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		Last:  values[len(values)-1],
	}
	if len(values) > 1 {
		t.Mean, t.StdDev = stat.MeanStdDev(values, nil)
	} else {
		t.Mean = values[0]
	}
	return t, true
}
