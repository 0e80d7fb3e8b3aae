package library

import (
	"io/fs"
	"path"

	"github.com/YuminosukeSato/ensemble/dataset"
	"github.com/YuminosukeSato/ensemble/ensemble"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
	"github.com/YuminosukeSato/ensemble/pkg/log"
)

const targetsBase = "targets"

// Load discovers a library laid out as one directory per split:
//
//	train/targets.train  train/knn.train  train/svm.train
//	test/targets.test    test/knn.test    test/svm.test
//
// Each split directory holds exactly one targets.* file. Candidates are the
// files whose extension equals the directory name, ordered by file name; the
// position in that order is the candidate id. train names the split the
// search optimises on.
func Load(fsys fs.FS, train string) (*Library, error) {
	logger := log.GetLoggerWithName("library").With(log.OperationKey, log.OperationLoad)

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "read library root")
	}

	var splits []Split
	trainIdx := -1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := loadSplit(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		if s.Name == train {
			trainIdx = len(splits)
		}
		splits = append(splits, s)
	}
	if len(splits) == 0 {
		return nil, errors.NewValidationError("library", "no split directories found", ".")
	}
	if trainIdx < 0 {
		return nil, errors.NewValidationError("train", "split not found", train)
	}

	lib, err := New(splits, trainIdx)
	if err != nil {
		return nil, err
	}
	lib.logSummary(logger)
	return lib, nil
}

func loadSplit(fsys fs.FS, name string) (Split, error) {
	files, err := fs.ReadDir(fsys, name)
	if err != nil {
		return Split{}, errors.Wrapf(err, "read split %s", name)
	}

	var targetFiles, candidateFiles []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := path.Ext(f.Name())
		if ext == "" {
			continue
		}
		switch {
		case f.Name()[:len(f.Name())-len(ext)] == targetsBase:
			targetFiles = append(targetFiles, f.Name())
		case ext[1:] == name:
			candidateFiles = append(candidateFiles, f.Name())
		}
	}
	if len(targetFiles) != 1 {
		return Split{}, errors.NewMissingTargetsError(name, len(targetFiles))
	}

	targets, err := readTargets(fsys, path.Join(name, targetFiles[0]))
	if err != nil {
		return Split{}, err
	}

	s := Split{Name: name, Targets: targets}
	for id, file := range candidateFiles {
		preds, err := readPredictions(fsys, path.Join(name, file))
		if err != nil {
			return Split{}, err
		}
		c, err := ensemble.NewCandidate(id, file, preds, targets)
		if err != nil {
			return Split{}, err
		}
		s.Candidates = append(s.Candidates, c)
	}
	return s, nil
}

func readTargets(fsys fs.FS, p string) (*dataset.Targets, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p)
	}
	defer f.Close()
	return dataset.ReadTargets(f, p)
}

func readPredictions(fsys fs.FS, p string) ([]float64, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p)
	}
	defer f.Close()
	return dataset.ReadPredictions(f, p)
}
