// Package shotgun selects ensembles from libraries of precomputed model
// predictions.
//
// Instead of training models, shotgun takes the probabilities that many
// already trained binary classifiers produced on the same labelled splits
// and greedily composes the ensemble whose mean prediction optimises one
// metric on a training split. Every committed step is reported on all splits.
//
// # Features
//
//   - Fourteen metrics: ACC, RMS, ROC, ALL, BEP, PRE, REC, FSC, APR, LFT, CST, NRM, MXE, BSP
//   - Sort, forward selection with and without replacement, backward
//     elimination, greatest increase and the sort-then-forward hybrid
//   - Weight decay and seeded bootstrap estimates of any metric
//   - Parallel scoring of candidate moves with deterministic results
//
// # Installation
//
//	go install github.com/YuminosukeSato/ensemble/cmd/shotgun@latest
//
// # Quick Start
//
// A prediction folder holds one directory per split:
//
//	preds/train/targets.train  preds/train/knn.train  preds/train/svm.train
//	preds/test/targets.test    preds/test/knn.test    preds/test/svm.test
//
// Select an ensemble optimising ROC area on the training split:
//
//	shotgun select --metric roc --strategy sort-forward --write-predictions preds train
//
// The same from Go:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//
//	    "github.com/YuminosukeSato/ensemble/core/model"
//	    "github.com/YuminosukeSato/ensemble/library"
//	    "github.com/YuminosukeSato/ensemble/metrics"
//	    "github.com/YuminosukeSato/ensemble/selection"
//	)
//
//	func main() {
//	    lib, err := library.Load(os.DirFS("preds"), "train")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    ev := metrics.NewEvaluator(metrics.DefaultConfig(), metrics.ROC)
//	    m := library.NewManager(lib, ev, model.NewRunState(0, 0, 0))
//	    s := selection.New(m, nil, selection.DefaultOptions())
//	    if err := s.Run(context.Background(), selection.StrategySortThenForward); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    log.Println("ensemble:", m.Composition().IDs())
//	}
//
// # Packages
//
// The module is organized into several packages:
//
//   - dataset: Target sets and prediction file parsing
//   - metrics: The measures, their configuration and bootstrap resampling
//   - core/model: Model contract, run state and ensemble composition
//   - core/parallel: Parallel processing utilities
//   - ensemble: Prediction aggregators and the N-class reduction
//   - library: Candidate library discovery and the bag manager
//   - selection: Search strategies
//   - report: Performance streams, best predictions, summaries and plots
//   - config: YAML run configuration
//   - cmd/shotgun: Command line interface
//
// # License
//
// shotgun is released under the MIT License.
package shotgun
