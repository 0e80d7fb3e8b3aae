// Package config loads the settings of a selection run from YAML.
package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/ensemble/core/model"
	"github.com/YuminosukeSato/ensemble/metrics"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
	"github.com/YuminosukeSato/ensemble/selection"
)

// Default values of a run.
const (
	DefaultMetric    = "RMS"
	DefaultThreshold = 0.5
	DefaultNorm      = 1
	DefaultWorkers   = 1
	DefaultLogLevel  = "info"
	DefaultOutputDir = "."
)

// BootstrapConfig enables the BSP measure. The selected metric becomes the
// measure averaged over the resamples.
type BootstrapConfig struct {
	Samples int   `yaml:"samples"`
	Points  int   `yaml:"points,omitempty"`
	Seed    int64 `yaml:"seed,omitempty"`
}

// Config is the configuration of one run.
type Config struct {
	// measure
	Metric          string    `yaml:"metric"`
	Weights         []float64 `yaml:"weights,omitempty"`
	Costs           []float64 `yaml:"costs,omitempty"`
	Norm            float64   `yaml:"norm,omitempty"`
	Threshold       float64   `yaml:"threshold,omitempty"`
	PercentPositive *float64  `yaml:"percent_positive,omitempty"`

	// search
	Strategy      string           `yaml:"strategy"`
	MaxIterations int              `yaml:"max_iterations,omitempty"`
	Decay         float64          `yaml:"decay,omitempty"`
	Bootstrap     *BootstrapConfig `yaml:"bootstrap,omitempty"`
	Workers       int              `yaml:"workers,omitempty"`

	// input and output
	Train                string `yaml:"train,omitempty"`
	Output               string `yaml:"output,omitempty"`
	OutputDir            string `yaml:"output_dir,omitempty"`
	WriteBestPredictions bool   `yaml:"write_best_predictions,omitempty"`
	Summary              string `yaml:"summary,omitempty"`
	Plot                 string `yaml:"plot,omitempty"`
	LogLevel             string `yaml:"log_level,omitempty"`
}

// Default returns a configuration with every default populated.
func Default() *Config {
	d := metrics.DefaultConfig()
	return &Config{
		Metric:    DefaultMetric,
		Weights:   d.Weights[:],
		Costs:     d.Costs[:],
		Norm:      DefaultNorm,
		Threshold: DefaultThreshold,
		Strategy:  string(selection.DefaultStrategy),
		Workers:   DefaultWorkers,
		OutputDir: DefaultOutputDir,
		LogLevel:  DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := metrics.ParseMetric(c.Metric); err != nil {
		return err
	}
	if _, err := selection.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if len(c.Weights) != 3 {
		return errors.NewValidationError("weights", "ALL takes exactly 3 weights", len(c.Weights))
	}
	if len(c.Costs) != 4 {
		return errors.NewValidationError("costs", "CST takes exactly 4 costs", len(c.Costs))
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.NewValidationError("threshold", "must be within [0, 1]", c.Threshold)
	}
	if c.PercentPositive != nil && (*c.PercentPositive < 0 || *c.PercentPositive > 100) {
		return errors.NewValidationError("percent_positive", "must be within [0, 100]", *c.PercentPositive)
	}
	if c.MaxIterations < 0 {
		return errors.NewValidationError("max_iterations", "must not be negative", c.MaxIterations)
	}
	if c.Decay < 0 || c.Decay > 1 {
		return errors.NewValidationError("decay", "must be within [0, 1]", c.Decay)
	}
	if c.Bootstrap != nil && c.Bootstrap.Samples <= 0 {
		return errors.NewValidationError("bootstrap.samples", "must be positive", c.Bootstrap.Samples)
	}
	if c.Workers < 0 {
		return errors.NewValidationError("workers", "must not be negative", c.Workers)
	}
	_, _, err := c.MetricConfig()
	return err
}

// MetricConfig returns the measure parameters and the measure to optimise.
// With bootstrapping enabled the optimised measure is BSP over the
// configured metric.
func (c *Config) MetricConfig() (metrics.Config, metrics.Metric, error) {
	m, err := metrics.ParseMetric(c.Metric)
	if err != nil {
		return metrics.Config{}, 0, err
	}

	mc := metrics.DefaultConfig()
	copy(mc.Weights[:], c.Weights)
	copy(mc.Costs[:], c.Costs)
	mc.Norm = c.Norm
	mc.Threshold = c.Threshold
	if c.PercentPositive != nil {
		mc.PercentPositive = *c.PercentPositive
	}

	selected := m
	if c.Bootstrap != nil {
		if m == metrics.BSP {
			return metrics.Config{}, 0, errors.NewValidationError("metric", "bootstrap needs a non-bootstrap metric", c.Metric)
		}
		mc.BootstrapSamples = c.Bootstrap.Samples
		mc.BootstrapPoints = c.Bootstrap.Points
		mc.Inner = m
		selected = metrics.BSP
	} else if m == metrics.BSP {
		return metrics.Config{}, 0, errors.NewValidationError("metric", "BSP requires a bootstrap section", c.Metric)
	}

	if err := mc.Validate(); err != nil {
		return metrics.Config{}, 0, err
	}
	return mc, selected, nil
}

// Evaluator builds the evaluator of the run.
func (c *Config) Evaluator() (metrics.Evaluator, error) {
	mc, selected, err := c.MetricConfig()
	if err != nil {
		return metrics.Evaluator{}, err
	}
	return metrics.NewEvaluator(mc, selected), nil
}

// RunState builds the initial run state.
func (c *Config) RunState() *model.RunState {
	if c.Bootstrap == nil {
		return model.NewRunState(c.Decay, 0, 0)
	}
	return model.NewRunState(c.Decay, c.Bootstrap.Seed, c.Bootstrap.Samples)
}

// SearchStrategy returns the parsed strategy.
func (c *Config) SearchStrategy() (selection.Strategy, error) {
	return selection.ParseStrategy(c.Strategy)
}

// SearchOptions returns the options of the searcher.
func (c *Config) SearchOptions() selection.Options {
	return selection.Options{MaxIterations: c.MaxIterations, Workers: c.Workers}
}
