package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/ensemble/config"
	"github.com/YuminosukeSato/ensemble/library"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
	"github.com/YuminosukeSato/ensemble/pkg/log"
	"github.com/YuminosukeSato/ensemble/report"
	"github.com/YuminosukeSato/ensemble/selection"
)

// selectFlags mirrors the configuration file. A flag only overrides the file
// when it was set on the command line.
type selectFlags struct {
	metric           string
	weights          []float64
	costs            []float64
	norm             float64
	threshold        float64
	percentPositive  float64
	strategy         string
	maxIterations    int
	decay            float64
	bootstrapSamples int
	bootstrapPoints  int
	bootstrapSeed    int64
	workers          int
	output           string
	outputDir        string
	writePredictions bool
	summary          string
	plot             string
	echo             bool
}

func (f *selectFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.metric, "metric", "m", config.DefaultMetric, "Metric to optimise: ACC, RMS, ROC, ALL, BEP, PRE, REC, FSC, APR, LFT, CST, NRM, MXE")
	fs.Float64SliceVar(&f.weights, "weights", nil, "ALL weights of ACC, RMS and ROC")
	fs.Float64SliceVar(&f.costs, "costs", nil, "CST costs of TP, FN, FP and TN")
	fs.Float64Var(&f.norm, "norm", config.DefaultNorm, "NRM exponent")
	fs.Float64VarP(&f.threshold, "threshold", "t", config.DefaultThreshold, "Probability at or above which an example is predicted positive")
	fs.Float64VarP(&f.percentPositive, "percent-positive", "p", 0, "Predict the top percent of examples positive instead of thresholding")
	fs.Float64VarP(&f.decay, "decay", "d", 0, "Weight decay applied after every committed move")
	fs.IntVar(&f.bootstrapSamples, "bootstrap-samples", 0, "Optimise the bootstrap average of the metric over this many resamples")
	fs.IntVar(&f.bootstrapPoints, "bootstrap-points", 0, "Examples per bootstrap resample (0: split size)")
	fs.Int64Var(&f.bootstrapSeed, "bootstrap-seed", 0, "Seed of the first bootstrap resample")
	fs.StringVarP(&f.output, "output", "o", "", "Name inserted in output file names")
	fs.StringVar(&f.outputDir, "output-dir", config.DefaultOutputDir, "Directory receiving the output files")
	fs.BoolVar(&f.echo, "echo", false, "Echo every performance record to stdout")
}

func (f *selectFlags) registerSearch(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.strategy, "strategy", "s", string(selection.DefaultStrategy), "Search strategy: sort, forward, forward-replace, backward, greatest-increase, sort-forward")
	fs.IntVarP(&f.maxIterations, "max-iterations", "n", 0, "Maximum committed steps (0: number of models)")
	fs.IntVarP(&f.workers, "workers", "w", config.DefaultWorkers, "Goroutines scoring candidate moves (0: one per CPU)")
	fs.BoolVar(&f.writePredictions, "write-predictions", false, "Write the predictions of the best ensemble of every split")
	fs.StringVar(&f.summary, "summary", "", "Write a JSON run summary to this file")
	fs.StringVar(&f.plot, "plot", "", "Plot the metric by ensemble size to this image file")
}

// apply overrides cfg with every flag set on the command line.
func (f *selectFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("metric") {
		cfg.Metric = f.metric
	}
	if changed("weights") {
		cfg.Weights = f.weights
	}
	if changed("costs") {
		cfg.Costs = f.costs
	}
	if changed("norm") {
		cfg.Norm = f.norm
	}
	if changed("threshold") {
		cfg.Threshold = f.threshold
	}
	if changed("percent-positive") {
		p := f.percentPositive
		cfg.PercentPositive = &p
	}
	if changed("strategy") {
		cfg.Strategy = f.strategy
	}
	if changed("max-iterations") {
		cfg.MaxIterations = f.maxIterations
	}
	if changed("decay") {
		cfg.Decay = f.decay
	}
	if changed("bootstrap-samples") || changed("bootstrap-points") || changed("bootstrap-seed") {
		if cfg.Bootstrap == nil {
			cfg.Bootstrap = &config.BootstrapConfig{}
		}
		if changed("bootstrap-samples") {
			cfg.Bootstrap.Samples = f.bootstrapSamples
		}
		if changed("bootstrap-points") {
			cfg.Bootstrap.Points = f.bootstrapPoints
		}
		if changed("bootstrap-seed") {
			cfg.Bootstrap.Seed = f.bootstrapSeed
		}
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if changed("write-predictions") {
		cfg.WriteBestPredictions = f.writePredictions
	}
	if changed("summary") {
		cfg.Summary = f.summary
	}
	if changed("plot") {
		cfg.Plot = f.plot
	}
}

func newSelectCommand(root *rootOptions) *cobra.Command {
	flags := &selectFlags{}
	cmd := &cobra.Command{
		Use:   "select <pred_folder> <train_name>",
		Short: "Select an ensemble from a prediction library",
		Long: `Select an ensemble from the prediction library in pred_folder, optimising
the chosen metric on the split named train_name.

One performance file is written per split. Each line holds the ensemble size,
a metric name, its value and the name of the last model added or removed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			cfg.Train = args[1]
			if err := cfg.Validate(); err != nil {
				return err
			}
			strategy, err := cfg.SearchStrategy()
			if err != nil {
				return err
			}
			return runSelection(cmd.Context(), cfg, args[0], strategy, flags.echo, cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	flags.registerSearch(cmd)
	return cmd
}

// runSelection loads the library, runs strategy and writes every output the
// configuration asks for.
func runSelection(ctx context.Context, cfg *config.Config, folder string, strategy selection.Strategy, echo bool, stdout io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := log.GetLoggerWithName("shotgun")

	lib, err := library.Load(os.DirFS(folder), cfg.Train)
	if err != nil {
		return errors.Wrapf(err, "load library %s", folder)
	}
	ev, err := cfg.Evaluator()
	if err != nil {
		return err
	}

	var mopts []library.Option
	if cfg.WriteBestPredictions || cfg.Summary != "" {
		mopts = append(mopts, library.WithBestTracking())
	}
	m := library.NewManager(lib, ev, cfg.RunState(), mopts...)

	splits := make([]string, lib.NumSplits())
	for i, s := range lib.Splits() {
		splits[i] = s.Name
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %s", cfg.OutputDir)
	}
	out, err := report.Create(cfg.OutputDir, report.FileNames(cfg.Output, splits, lib.Train()))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	text := out.Reporter()
	if echo {
		text = text.WithEcho(stdout)
	}
	history := report.NewHistory(ev.Descriptor(ev.Selected()).Name)

	searcher := selection.New(m, report.Multi{text, history}, cfg.SearchOptions())
	if err := searcher.Run(ctx, strategy); err != nil {
		return err
	}

	if cfg.WriteBestPredictions {
		if best, step := m.Best(); best != nil {
			if err := out.WriteBest(best); err != nil {
				return err
			}
			logger.Info("Best ensemble written", log.StepKey, step, log.PathKey, cfg.OutputDir)
		} else {
			logger.Warn("No ensemble to write", log.StrategyKey, string(strategy))
		}
	}
	if cfg.Summary != "" {
		path := filepath.Join(cfg.OutputDir, cfg.Summary)
		if err := report.NewSummary(string(strategy), m, history).Save(path); err != nil {
			return err
		}
		logger.Info("Summary written", log.PathKey, path)
	}
	if cfg.Plot != "" && len(history.Splits()) > 0 {
		path := filepath.Join(cfg.OutputDir, cfg.Plot)
		if err := report.PlotCurve(history, path); err != nil {
			return err
		}
		logger.Info("Plot written", log.PathKey, path)
	}
	return nil
}
