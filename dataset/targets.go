// Package dataset reads the labelled splits an ensemble library is built from.
//
// A split consists of one targets file holding a 0/1 label per line and any
// number of prediction files holding one probability per line. Only the first
// whitespace-delimited token of a line is significant; anything after it is
// ignored.
package dataset

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// Targets holds the ground-truth labels of one split together with the
// positive and negative counts the ranking metrics depend on.
type Targets struct {
	labels    []int
	positives int
}

// NewTargets builds Targets from a label slice. Every label must be 0 or 1.
func NewTargets(labels []int) (*Targets, error) {
	t := &Targets{labels: make([]int, len(labels))}
	for i, l := range labels {
		if l != 0 && l != 1 {
			return nil, errors.NewFormatError("", i+1, strconv.Itoa(l), "label must be 0 or 1")
		}
		t.labels[i] = l
		t.positives += l
	}
	return t, nil
}

// ReadTargets parses one integer label per line from r. source is only used
// to annotate errors.
func ReadTargets(r io.Reader, source string) (*Targets, error) {
	t := &Targets{}
	err := scanTokens(r, source, func(line int, tok string) error {
		v, err := strconv.Atoi(tok)
		if err != nil || (v != 0 && v != 1) {
			return errors.NewFormatError(source, line, tok, "label must be 0 or 1")
		}
		t.labels = append(t.labels, v)
		t.positives += v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ReadPredictions parses one real-valued probability per line from r.
func ReadPredictions(r io.Reader, source string) ([]float64, error) {
	var preds []float64
	err := scanTokens(r, source, func(line int, tok string) error {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return errors.NewFormatError(source, line, tok, "prediction is not a real number")
		}
		preds = append(preds, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}

func scanTokens(r io.Reader, source string, fn func(line int, tok string) error) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			return errors.NewFormatError(source, line, sc.Text(), "empty line")
		}
		if err := fn(line, fields[0]); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrapf(err, "reading %s", source)
	}
	return nil
}

// Len returns the number of examples.
func (t *Targets) Len() int { return len(t.labels) }

// Label returns the label of example i.
func (t *Targets) Label(i int) int { return t.labels[i] }

// Positives returns the number of examples labelled 1.
func (t *Targets) Positives() int { return t.positives }

// Negatives returns the number of examples labelled 0.
func (t *Targets) Negatives() int { return len(t.labels) - t.positives }

// Labels returns a copy of the labels.
func (t *Targets) Labels() []int {
	out := make([]int, len(t.labels))
	copy(out, t.labels)
	return out
}

// Clone returns an independent copy.
func (t *Targets) Clone() *Targets {
	return &Targets{labels: t.Labels(), positives: t.positives}
}

// Relabel overwrites the label of example i and keeps the counts consistent.
func (t *Targets) Relabel(i, label int) {
	if label != 0 && label != 1 {
		panic("dataset: label must be 0 or 1")
	}
	t.positives += label - t.labels[i]
	t.labels[i] = label
}
