package metrics

import (
	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// Config holds the parameters of the individual measures.
type Config struct {
	// Threshold is the probability at or above which an example is predicted
	// positive.
	Threshold float64
	// PercentPositive, when >= 0, replaces Threshold: the top PercentPositive
	// percent of examples by probability are predicted positive.
	PercentPositive float64
	// Costs are the CST weights of true positives, false negatives, false
	// positives and true negatives, in that order.
	Costs [4]float64
	// Norm is the exponent of NRM.
	Norm float64
	// Weights are the ALL weights applied to ACC, RMS and ROC.
	Weights [3]float64
	// BootstrapSamples is the number of resamples averaged by BSP.
	BootstrapSamples int
	// BootstrapPoints is the size of each resample; 0 means the sample size.
	BootstrapPoints int
	// Inner is the measure BSP averages.
	Inner Metric
}

// DefaultConfig returns the default measure parameters.
func DefaultConfig() Config {
	return Config{
		Threshold:        0.5,
		PercentPositive:  -1,
		Costs:            [4]float64{0, 0.5, 0.5, 0},
		Norm:             1,
		Weights:          [3]float64{1, 1, 1},
		BootstrapSamples: 0,
		BootstrapPoints:  0,
		Inner:            ROC,
	}
}

// Validate checks the parameters that would make a measure meaningless.
func (c Config) Validate() error {
	if c.Norm <= 0 {
		return errors.NewValidationError("norm", "must be positive", c.Norm)
	}
	if c.PercentPositive > 100 {
		return errors.NewValidationError("percent_positive", "must not exceed 100", c.PercentPositive)
	}
	if c.BootstrapSamples < 0 {
		return errors.NewValidationError("bootstrap.samples", "must not be negative", c.BootstrapSamples)
	}
	if c.BootstrapPoints < 0 {
		return errors.NewValidationError("bootstrap.points", "must not be negative", c.BootstrapPoints)
	}
	if !c.Inner.Valid() || c.Inner == BSP {
		return errors.NewValidationError("bootstrap.inner", "must be a non-bootstrap metric", c.Inner.String())
	}
	return nil
}

// Evaluator computes measures under one Config and designates the measure
// being optimised. It is a small value type; WithSeed returns a copy so that
// concurrent scans can evaluate BSP without sharing state.
type Evaluator struct {
	cfg      Config
	selected Metric
	seed     int64
}

// NewEvaluator creates an evaluator optimising selected.
func NewEvaluator(cfg Config, selected Metric) Evaluator {
	return Evaluator{cfg: cfg, selected: selected}
}

// WithSeed returns a copy whose BSP resamples start at seed.
func (e Evaluator) WithSeed(seed int64) Evaluator {
	e.seed = seed
	return e
}

// Seed returns the current bootstrap seed.
func (e Evaluator) Seed() int64 { return e.seed }

// Config returns the measure parameters.
func (e Evaluator) Config() Config { return e.cfg }

// Selected returns the measure being optimised.
func (e Evaluator) Selected() Metric { return e.selected }

// HigherIsBetter reports the direction of the selected measure, resolving
// BSP to its inner measure.
func (e Evaluator) HigherIsBetter() bool {
	return e.direction(e.selected)
}

func (e Evaluator) direction(m Metric) bool {
	if m == BSP {
		return e.cfg.Inner.HigherIsBetter()
	}
	return m.HigherIsBetter()
}

// Descriptor describes m under this evaluator.
func (e Evaluator) Descriptor(m Metric) Descriptor {
	return Descriptor{Name: m.String(), HigherIsBetter: e.direction(m)}
}

// Compare orders two values of the selected measure: positive when a is
// strictly better than b, negative when strictly worse, zero when equal.
func (e Evaluator) Compare(a, b float64) int {
	switch {
	case a == b:
		return 0
	case (a > b) == e.HigherIsBetter():
		return 1
	default:
		return -1
	}
}

// Score evaluates the selected measure on s, raising a warning if it is
// ill-defined.
func (e Evaluator) Score(s Sample) float64 {
	return e.Evaluate(e.selected, s)
}

// Evaluate computes m on s. An ill-defined measure yields its sentinel value
// and emits a warning through errors.Warn.
func (e Evaluator) Evaluate(m Metric, s Sample) float64 {
	v, err := e.EvaluateChecked(m, s)
	if err != nil {
		errors.Warn(err)
	}
	return v
}

// EvaluateChecked computes m on s and returns the degeneracy, if any, instead
// of warning.
func (e Evaluator) EvaluateChecked(m Metric, s Sample) (float64, error) {
	switch m {
	case ACC, PRE, REC, FSC, LFT, CST:
		return e.confusionMetric(m, s)
	case RMS:
		return rms(s)
	case NRM:
		return nrm(s, e.cfg.Norm)
	case MXE:
		return mxe(s)
	case ROC:
		return roc(s)
	case BEP:
		return bep(s)
	case APR:
		return apr(s)
	case ALL:
		return e.all(s)
	case BSP:
		return e.bootstrap(s)
	default:
		return 0, errors.NewValidationError("metric", "unknown metric", int(m))
	}
}

// all combines ACC, RMS and ROC. Degeneracies of the parts are reported as
// the first one encountered.
func (e Evaluator) all(s Sample) (float64, error) {
	var first error
	part := func(m Metric) float64 {
		v, err := e.EvaluateChecked(m, s)
		if err != nil && first == nil {
			first = err
		}
		return v
	}
	w := e.cfg.Weights
	v := w[0]*part(ACC) + (1-w[1])*part(RMS) + w[2]*part(ROC)
	return v, first
}
