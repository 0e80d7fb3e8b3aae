package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

func mustVector(t *testing.T, proba []float64, labels []int) *Vector {
	t.Helper()
	v, err := NewVector(proba, labels)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	return v
}

func TestEvaluateSeparable(t *testing.T) {
	s := mustVector(t, []float64{0.9, 0.1, 0.8, 0.2}, []int{1, 0, 1, 0})
	ev := NewEvaluator(DefaultConfig(), ROC)

	tests := []struct {
		metric    Metric
		want      float64
		tolerance float64
	}{
		{ACC, 1.0, 1e-12},
		{RMS, math.Sqrt(0.025), 1e-12}, // (0.01+0.01+0.04+0.04)/4
		{ROC, 1.0, 1e-12},
		{ALL, 2.0, 1e-12}, // 1*ACC + 0*RMS + 1*ROC
		{BEP, 1.0, 1e-12},
		{PRE, 1.0, 1e-12},
		{REC, 1.0, 1e-12},
		{FSC, 1.0, 1e-12},
		{APR, 0.5, 1e-12}, // first point at recall 0.5 only anchors the curve
		{LFT, 2.0, 1e-12}, // (2/2) * (4/2)
		{CST, 0.0, 1e-12},
		{NRM, 0.15, 1e-12},
		{MXE, -(math.Log(0.9+1e-8) + math.Log(0.8+1e-8)) / 2, 1e-12},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			got, err := ev.EvaluateChecked(tt.metric, s)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("%s = %v, want %v", tt.metric, got, tt.want)
			}
		})
	}
}

func TestEvaluateAllTied(t *testing.T) {
	s := mustVector(t, []float64{0.5, 0.5, 0.5, 0.5}, []int{1, 0, 1, 0})
	ev := NewEvaluator(DefaultConfig(), ACC)

	tests := []struct {
		metric Metric
		want   float64
	}{
		{ACC, 0.5},
		{RMS, 0.5},
		{ROC, 0.5},
		{BEP, 0.5},
		{PRE, 0.5},
		{REC, 1.0},
		{FSC, 2.0 / 3.0},
		{APR, 0.375},
		{LFT, 1.0},
		{CST, 1.0}, // two false positives at cost 0.5
		{NRM, 0.5},
		{ALL, 1.0},
	}

	for _, tt := range tests {
		got, err := ev.EvaluateChecked(tt.metric, s)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.metric, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", tt.metric, got, tt.want)
		}
	}
}

func TestROCInvariantUnderMonotoneTransform(t *testing.T) {
	proba := []float64{0.3, 0.7, 0.7, 0.2, 0.9, 0.1}
	labels := []int{0, 1, 0, 0, 1, 1}
	cubed := make([]float64, len(proba))
	for i, p := range proba {
		cubed[i] = 2*p*p*p + 1
	}

	a, err := roc(mustVector(t, proba, labels))
	if err != nil {
		t.Fatal(err)
	}
	b, err := roc(mustVector(t, cubed, labels))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("ROC changed under monotone transform: %v vs %v", a, b)
	}
	// pairs: (0.9,+) beats all 3 negatives, (0.7,+) beats 2 and ties 1, (0.1,+) beats none
	want := (3 + 2.5 + 0) / 9.0
	if math.Abs(a-want) > 1e-12 {
		t.Errorf("ROC = %v, want %v", a, want)
	}
}

func TestBEPTopRankedNegative(t *testing.T) {
	s := mustVector(t, []float64{0.9, 0.8, 0.7, 0.6}, []int{0, 1, 1, 0})
	got, err := bep(s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("BEP = %v, want 0.5", got)
	}
}

func TestPercentileConfusion(t *testing.T) {
	tests := []struct {
		name    string
		proba   []float64
		labels  []int
		percent float64
		want    Confusion
	}{
		{
			name:    "cut between distinct values",
			proba:   []float64{0.9, 0.1, 0.8, 0.2},
			labels:  []int{1, 0, 1, 0},
			percent: 25,
			want:    Confusion{TP: 1, FN: 1, FP: 0, TN: 2},
		},
		{
			name:    "cut inside tie block",
			proba:   []float64{0.5, 0.5, 0.5, 0.5},
			labels:  []int{1, 0, 1, 0},
			percent: 50,
			want:    Confusion{TP: 1, FN: 1, FP: 1, TN: 1},
		},
		{
			name:    "everything positive",
			proba:   []float64{0.3, 0.6},
			labels:  []int{0, 1},
			percent: 100,
			want:    Confusion{TP: 1, FN: 0, FP: 1, TN: 0},
		},
		{
			name:    "nothing positive",
			proba:   []float64{0.3, 0.6},
			labels:  []int{0, 1},
			percent: 0,
			want:    Confusion{TP: 0, FN: 1, FP: 0, TN: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PercentPositive = tt.percent
			got := NewEvaluator(cfg, ACC).Confusion(mustVector(t, tt.proba, tt.labels))
			if got != tt.want {
				t.Errorf("Confusion = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDegenerateMetrics(t *testing.T) {
	allPositive := mustVector(t, []float64{0.2, 0.7}, []int{1, 1})
	empty := mustVector(t, nil, nil)

	cfg := DefaultConfig()
	cfg.Threshold = 2 // nothing is predicted positive
	ev := NewEvaluator(cfg, ROC)

	tests := []struct {
		name   string
		metric Metric
		sample Sample
	}{
		{"ROC without negatives", ROC, allPositive},
		{"PRE without predicted positives", PRE, allPositive},
		{"LFT without predicted positives", LFT, allPositive},
		{"ACC on empty sample", ACC, empty},
		{"RMS on empty sample", RMS, empty},
		{"APR on empty sample", APR, empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.EvaluateChecked(tt.metric, tt.sample)
			var dm *errors.DegenerateMetricError
			if !errors.As(err, &dm) {
				t.Fatalf("expected DegenerateMetricError, got %v", err)
			}
			if got != 0 || dm.Result != 0 {
				t.Errorf("sentinel = %v/%v, want 0", got, dm.Result)
			}
			if dm.Metric != tt.metric.String() {
				t.Errorf("Metric = %q, want %q", dm.Metric, tt.metric)
			}
		})
	}
}

func TestScoreWarnsOnDegeneracy(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(func(error) {})

	ev := NewEvaluator(DefaultConfig(), ROC)
	got := ev.Score(mustVector(t, []float64{0.1, 0.4}, []int{0, 0}))
	if got != 0 {
		t.Errorf("Score = %v, want 0", got)
	}
	if len(warned) != 1 {
		t.Fatalf("expected one warning, got %d", len(warned))
	}
}

func TestBootstrap(t *testing.T) {
	s := mustVector(t, []float64{0.9, 0.1, 0.8, 0.2, 0.7, 0.3}, []int{1, 0, 1, 0, 1, 0})
	cfg := DefaultConfig()
	cfg.BootstrapSamples = 20
	cfg.Inner = ACC
	ev := NewEvaluator(cfg, BSP).WithSeed(42)

	got, err := ev.EvaluateChecked(BSP, s)
	if err != nil {
		t.Fatal(err)
	}
	// every resample of a perfectly thresholded sample is perfectly accurate
	if got != 1 {
		t.Errorf("BSP(ACC) = %v, want 1", got)
	}

	cfg.Inner = RMS
	ev = NewEvaluator(cfg, BSP).WithSeed(7)
	a, _ := ev.EvaluateChecked(BSP, s)
	b, _ := ev.EvaluateChecked(BSP, s)
	if a != b {
		t.Errorf("BSP not reproducible for a fixed seed: %v vs %v", a, b)
	}
	if ev.HigherIsBetter() {
		t.Error("BSP over RMS must be minimised")
	}

	cfg.BootstrapSamples = 0
	_, err = NewEvaluator(cfg, BSP).EvaluateChecked(BSP, s)
	var dm *errors.DegenerateMetricError
	if !errors.As(err, &dm) {
		t.Errorf("expected DegenerateMetricError without samples, got %v", err)
	}
}

func TestResample(t *testing.T) {
	s := mustVector(t, []float64{0.1, 0.2, 0.3}, []int{0, 1, 1})
	r := Resample(s, 3, 10)
	if r.Len() != 10 {
		t.Fatalf("Len = %d, want 10", r.Len())
	}
	pos := 0
	for i := 0; i < r.Len(); i++ {
		pos += r.Label(i)
		if r.Proba(i) == 0.1 && r.Label(i) != 0 {
			t.Errorf("pairing broken at %d", i)
		}
	}
	if pos != r.Positives() {
		t.Errorf("Positives = %d, counted %d", r.Positives(), pos)
	}
	if Resample(s, 3, 0).Len() != 3 {
		t.Error("points <= 0 should draw the sample size")
	}
}

func TestCompareAndDirection(t *testing.T) {
	tests := []struct {
		metric Metric
		a, b   float64
		want   int
	}{
		{ROC, 0.9, 0.8, 1},
		{ROC, 0.8, 0.9, -1},
		{RMS, 0.1, 0.2, 1},
		{MXE, 0.5, 0.4, -1},
		{CST, 1, 1, 0},
	}
	for _, tt := range tests {
		got := NewEvaluator(DefaultConfig(), tt.metric).Compare(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("%s.Compare(%v, %v) = %d, want %d", tt.metric, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseMetric(t *testing.T) {
	for _, m := range append(Reported(), BSP) {
		got, err := ParseMetric(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMetric(%q) = %v, %v", m, got, err)
		}
	}
	if got, err := ParseMetric(" roc "); err != nil || got != ROC {
		t.Errorf("ParseMetric is not case-insensitive: %v, %v", got, err)
	}
	if _, err := ParseMetric("AUC"); err == nil {
		t.Error("expected error for unknown metric")
	}
	if len(Reported()) != 13 {
		t.Errorf("Reported() has %d metrics, want 13", len(Reported()))
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg.Norm = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero norm")
	}
	cfg = DefaultConfig()
	cfg.Inner = BSP
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for nested bootstrap")
	}
}
