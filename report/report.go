// Package report writes what a search produces: the per-split performance
// streams, the predictions of the best ensemble, a JSON run summary and a
// plot of the selected metric across steps.
package report

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/YuminosukeSato/ensemble/library"
	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// FormatRecord renders a record as one performance line:
//
//	<models> <METRIC> <value> <name>
func FormatRecord(r library.Record) string {
	return fmt.Sprintf("%d %s %s %s", r.Models, r.Metric, strconv.FormatFloat(r.Value, 'g', -1, 64), r.Name)
}

// TextReporter writes each record to the stream of its split. Records of
// splits without a stream are skipped.
type TextReporter struct {
	mu      sync.Mutex
	streams map[string]io.Writer
	echo    io.Writer
}

// NewTextReporter creates a reporter writing to streams, keyed by split name.
func NewTextReporter(streams map[string]io.Writer) *TextReporter {
	return &TextReporter{streams: streams}
}

// WithEcho additionally writes every record, prefixed by its split name, to w.
func (r *TextReporter) WithEcho(w io.Writer) *TextReporter {
	r.echo = w
	return r
}

// Step implements library.Reporter.
func (r *TextReporter) Step(records []library.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		line := FormatRecord(rec)
		if w, ok := r.streams[rec.Split]; ok {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return errors.Wrapf(err, "write report of split %s", rec.Split)
			}
		}
		if r.echo != nil {
			if _, err := fmt.Fprintln(r.echo, rec.Split, line); err != nil {
				return errors.Wrap(err, "echo report")
			}
		}
	}
	return nil
}

// Multi fans every step out to several reporters, stopping at the first error.
type Multi []library.Reporter

// Step implements library.Reporter.
func (m Multi) Step(records []library.Record) error {
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Step(records); err != nil {
			return err
		}
	}
	return nil
}
