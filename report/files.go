package report

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/YuminosukeSato/ensemble/core/model"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
	"github.com/YuminosukeSato/ensemble/pkg/log"
)

// FileSet names the output files of one split.
type FileSet struct {
	Split string
	Perf  string
	Preds string
}

// FileNames derives the output file names of every split. With an output
// name the files are perf.<output>.<split> and preds.<output>.<split>.
// Without one the training split writes perf.train.1 and preds.train and the
// other splits, in order, perf.testN.1 and preds.testN.
func FileNames(output string, splits []string, train int) []FileSet {
	out := make([]FileSet, len(splits))
	no := 1
	for i, s := range splits {
		if output != "" {
			out[i] = FileSet{Split: s, Perf: "perf." + output + "." + s, Preds: "preds." + output + "." + s}
			continue
		}
		base := "train"
		if i != train {
			base = "test" + strconv.Itoa(no)
			no++
		}
		out[i] = FileSet{Split: s, Perf: "perf." + base + ".1", Preds: "preds." + base}
	}
	return out
}

// WritePredictions writes the mean prediction of every example of m, one
// per line.
func WritePredictions(w io.Writer, m model.Model) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < m.Len(); i++ {
		if _, err := bw.WriteString(strconv.FormatFloat(m.Proba(i), 'g', -1, 64) + "\n"); err != nil {
			return errors.Wrap(err, "write predictions")
		}
	}
	return errors.Wrap(bw.Flush(), "flush predictions")
}

// Outputs owns the performance files of a run.
type Outputs struct {
	dir   string
	names []FileSet
	files []*os.File
	bufs  []*bufio.Writer
}

// Create opens one performance file per split in dir.
func Create(dir string, names []FileSet) (*Outputs, error) {
	o := &Outputs{dir: dir, names: names}
	for _, n := range names {
		f, err := os.Create(filepath.Join(dir, n.Perf))
		if err != nil {
			_ = o.Close()
			return nil, errors.Wrapf(err, "create %s", n.Perf)
		}
		o.files = append(o.files, f)
		o.bufs = append(o.bufs, bufio.NewWriter(f))
	}
	return o, nil
}

// Reporter returns a text reporter writing to the opened files.
func (o *Outputs) Reporter() *TextReporter {
	streams := make(map[string]io.Writer, len(o.names))
	for i, n := range o.names {
		streams[n.Split] = o.bufs[i]
	}
	return NewTextReporter(streams)
}

// WriteBest writes the predictions of best, one model per split in the
// order the names were given.
func (o *Outputs) WriteBest(best []model.Model) error {
	if len(best) != len(o.names) {
		return errors.NewSizeMismatchError("report.WriteBest", len(o.names), len(best))
	}
	logger := log.GetLoggerWithName("report").With(log.OperationKey, log.OperationWrite)
	for i, n := range o.names {
		p := filepath.Join(o.dir, n.Preds)
		if err := writeFile(p, best[i]); err != nil {
			return err
		}
		logger.Debug("Best predictions written", log.SplitKey, n.Split, log.PathKey, p)
	}
	return nil
}

func writeFile(path string, m model.Model) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return WritePredictions(f, m)
}

// Close flushes and closes every file and returns the first error.
func (o *Outputs) Close() error {
	var first error
	for i, f := range o.files {
		if err := o.bufs[i].Flush(); err != nil && first == nil {
			first = errors.Wrapf(err, "flush %s", f.Name())
		}
		if err := f.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "close %s", f.Name())
		}
	}
	return first
}
