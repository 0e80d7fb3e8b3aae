// Package log defines standard attribute keys for ensemble selection.
//
// The keys follow a hierarchical naming convention (e.g. "ensemble.size",
// "split.name") so that step logs from different strategies can be filtered
// and compared.

package log

// Run and component context.
const (
	// ComponentKey identifies which package is emitting the record.
	// Examples: "selection", "library", "report"
	ComponentKey = "component"

	// OperationKey names the operation being performed.
	// Standard values: see the Operation* constants below.
	OperationKey = "operation"

	// StrategyKey names the search strategy of the run.
	// Examples: "sort", "forward", "backward", "sort-forward"
	StrategyKey = "selection.strategy"

	// StepKey is the index of the committed search step, starting at 1.
	StepKey = "selection.step"

	// IterationKey is the iteration of the strategy's main loop.
	IterationKey = "selection.iteration"
)

// Library shape.
const (
	// SplitKey names a labelled split such as "train" or "test".
	SplitKey = "split.name"

	// SplitsKey is the number of splits in the library.
	SplitsKey = "library.splits"

	// CandidatesKey is the number of candidate models in the library.
	CandidatesKey = "library.candidates"

	// SamplesKey is the number of examples in a split.
	SamplesKey = "data.samples"

	// PositivesKey is the number of positive labels in a split.
	PositivesKey = "data.positives"

	// PathKey is a filesystem path being read or written.
	PathKey = "io.path"
)

// Candidate and ensemble state.
const (
	// CandidateIDKey is the integer id shared by a candidate across splits.
	CandidateIDKey = "candidate.id"

	// CandidateNameKey is the file name of a candidate.
	CandidateNameKey = "candidate.name"

	// EnsembleSizeKey is the number of members currently in the ensemble.
	EnsembleSizeKey = "ensemble.size"

	// WeightKey is the weight a member was added with.
	WeightKey = "ensemble.weight"
)

// Metrics.
const (
	// MetricKey names the metric being optimised or reported.
	MetricKey = "metric.name"

	// MetricValueKey records a metric value.
	MetricValueKey = "metric.value"

	// BestValueKey records the best training value seen so far.
	BestValueKey = "metric.best"

	// RandomSeedKey records the current bootstrap seed.
	RandomSeedKey = "config.random_seed"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Standard attribute value constants.
const (
	OperationLoad   = "load"
	OperationSelect = "select"
	OperationReport = "report"
	OperationEval   = "eval"
	OperationWrite  = "write"
)
