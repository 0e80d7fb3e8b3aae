// Package library holds the candidate library an ensemble is selected from
// and the bag manager that keeps one aggregate per split in sync with the
// ensemble composition.
package library

import (
	"strings"

	"github.com/YuminosukeSato/ensemble/dataset"
	"github.com/YuminosukeSato/ensemble/ensemble"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
	"github.com/YuminosukeSato/ensemble/pkg/log"
)

// Split is one labelled subset of examples with its candidates' predictions.
// Candidates[id] is the same underlying model in every split.
type Split struct {
	Name       string
	Targets    *dataset.Targets
	Candidates []*ensemble.Predictions
}

// Library is a validated set of splits, one of which drives the search.
type Library struct {
	splits []Split
	train  int
}

// New validates splits and returns a library searching on splits[train].
func New(splits []Split, train int) (*Library, error) {
	if len(splits) == 0 {
		return nil, errors.NewValidationError("splits", "at least one split is required", 0)
	}
	if train < 0 || train >= len(splits) {
		return nil, errors.NewValidationError("train", "split index out of range", train)
	}

	want := len(splits[train].Candidates)
	for _, s := range splits {
		if s.Targets == nil {
			return nil, errors.NewMissingTargetsError(s.Name, 0)
		}
		if len(s.Candidates) != want {
			return nil, errors.NewLibraryInconsistencyError(s.Name, want, len(s.Candidates))
		}
		for id, c := range s.Candidates {
			if c.Len() != s.Targets.Len() {
				return nil, errors.NewSizeMismatchError(c.Name(), s.Targets.Len(), c.Len())
			}
			if c.ID() != id {
				return nil, errors.NewValidationError("candidate.id", "must equal its position in the split", c.ID())
			}
		}
	}

	lib := &Library{splits: splits, train: train}
	lib.checkNames()
	return lib, nil
}

// checkNames warns when a candidate id maps to differently named files in
// different splits. Ids are positional, so this usually means a file is
// missing from one split and every later id is shifted.
func (l *Library) checkNames() {
	ref := l.splits[l.train]
	for _, s := range l.splits {
		for id, c := range s.Candidates {
			a, b := baseName(ref.Candidates[id].Name()), baseName(c.Name())
			if a != b {
				errors.Warn(errors.Newf("candidate %d is %q in split %s but %q in split %s", id, a, ref.Name, b, s.Name))
			}
		}
	}
}

func baseName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// Splits returns all splits in order.
func (l *Library) Splits() []Split { return l.splits }

// Split returns split i.
func (l *Library) Split(i int) Split { return l.splits[i] }

// NumSplits returns the number of splits.
func (l *Library) NumSplits() int { return len(l.splits) }

// Train returns the index of the split the search optimises on.
func (l *Library) Train() int { return l.train }

// Size returns the number of candidates per split.
func (l *Library) Size() int { return len(l.splits[0].Candidates) }

// Candidate returns candidate id on split s.
func (l *Library) Candidate(s, id int) (*ensemble.Predictions, error) {
	if id < 0 || id >= l.Size() {
		return nil, errors.Wrapf(errors.ErrUnknownCandidate, "id %d", id)
	}
	return l.splits[s].Candidates[id], nil
}

func (l *Library) logSummary(logger log.Logger) {
	for _, s := range l.splits {
		logger.Info("Split loaded",
			log.SplitKey, s.Name,
			log.SamplesKey, s.Targets.Len(),
			log.PositivesKey, s.Targets.Positives(),
			log.CandidatesKey, len(s.Candidates),
		)
	}
}
