// Package selection implements the greedy search strategies that compose an
// ensemble from a candidate library.
package selection

import (
	"strings"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// Strategy names a search strategy.
type Strategy string

const (
	// StrategySort adds candidates in order of individual performance.
	StrategySort Strategy = "sort"
	// StrategyForward is forward selection without replacement.
	StrategyForward Strategy = "forward"
	// StrategyForwardReplace is forward selection with replacement.
	StrategyForwardReplace Strategy = "forward-replace"
	// StrategyBackward is backward elimination from the full library.
	StrategyBackward Strategy = "backward"
	// StrategyGreatestIncrease commits candidates by marginal gain.
	StrategyGreatestIncrease Strategy = "greatest-increase"
	// StrategySortThenForward commits the best sort prefix and then runs
	// forward selection with replacement.
	StrategySortThenForward Strategy = "sort-forward"
	// StrategyEachModel only reports every candidate on its own.
	StrategyEachModel Strategy = "each-model"
)

// DefaultStrategy is used when no strategy is configured.
const DefaultStrategy = StrategySortThenForward

var strategyAliases = map[string]Strategy{
	"s":   StrategySort,
	"f":   StrategyForward,
	"fr":  StrategyForwardReplace,
	"b":   StrategyBackward,
	"g":   StrategyGreatestIncrease,
	"sfr": StrategySortThenForward,
	"x":   StrategyEachModel,
}

// Strategies lists every strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{
		StrategySort,
		StrategyForward,
		StrategyForwardReplace,
		StrategyBackward,
		StrategyGreatestIncrease,
		StrategySortThenForward,
		StrategyEachModel,
	}
}

// ParseStrategy accepts a strategy name or its short flag form ("sfr").
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := strategyAliases[key]; ok {
		return s, nil
	}
	for _, s := range Strategies() {
		if string(s) == key {
			return s, nil
		}
	}
	return "", errors.NewValidationError("strategy", "unknown search strategy", name)
}

func (s Strategy) String() string { return string(s) }
