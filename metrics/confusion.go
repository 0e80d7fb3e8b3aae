package metrics

import (
	"math"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// Confusion is a 2x2 confusion matrix. Cells are real-valued because
// percentile thresholds split tie blocks fractionally.
type Confusion struct {
	TP float64 // a: predicted 1, label 1
	FN float64 // b: predicted 0, label 1
	FP float64 // c: predicted 1, label 0
	TN float64 // d: predicted 0, label 0
}

// Total returns the number of examples counted.
func (c Confusion) Total() float64 { return c.TP + c.FN + c.FP + c.TN }

// Confusion computes the confusion matrix of s under the evaluator's
// threshold, or under its percentile rule when PercentPositive >= 0.
func (e Evaluator) Confusion(s Sample) Confusion {
	if e.cfg.PercentPositive >= 0 {
		return percentileConfusion(s, e.cfg.PercentPositive)
	}
	return thresholdConfusion(s, e.cfg.Threshold)
}

func thresholdConfusion(s Sample, threshold float64) Confusion {
	var c Confusion
	for i := 0; i < s.Len(); i++ {
		predicted := s.Proba(i) >= threshold
		switch {
		case predicted && s.Label(i) == 1:
			c.TP++
		case predicted:
			c.FP++
		case s.Label(i) == 1:
			c.FN++
		default:
			c.TN++
		}
	}
	return c
}

// percentileConfusion predicts the top pct percent of examples positive. When
// the cut falls inside a block of tied probabilities, the remaining positive
// predictions are shared across the block in proportion to its labels.
func percentileConfusion(s Sample, pct float64) Confusion {
	n := s.Len()
	if n == 0 {
		return Confusion{}
	}
	p, y := ranked(s)
	k := int(float64(n) * pct / 100)

	var thresh float64
	switch {
	case k >= n:
		thresh = p[n-1] - 1
	case k <= 0:
		thresh = p[0] + 1
	default:
		thresh = (p[k-1] + p[k]) / 2
	}

	var c Confusion
	i := 0
	for i < n && p[i] > thresh {
		if y[i] == 1 {
			c.TP++
		} else {
			c.FP++
		}
		i++
	}

	remaining := float64(k - i)
	if remaining > 0 {
		var cnt, ones float64
		for j := i; j < n && math.Abs(p[j]-thresh) <= errors.Epsilon; j++ {
			cnt++
			ones += float64(y[j])
		}
		if cnt > 0 {
			c.TP += remaining * ones / cnt
			c.FP += remaining * (cnt - ones) / cnt
		}
	}

	c.FN = float64(s.Positives()) - c.TP
	c.TN = float64(s.Negatives()) - c.FP
	return c
}

func (e Evaluator) confusionMetric(m Metric, s Sample) (float64, error) {
	c := e.Confusion(s)
	switch m {
	case ACC:
		v, ok := errors.SafeDivide(c.TP+c.TN, c.Total())
		if !ok {
			return degenerate(ACC, "empty sample")
		}
		return v, nil
	case PRE:
		return precision(c)
	case REC:
		return recall(c)
	case FSC:
		pr, perr := precision(c)
		rc, rerr := recall(c)
		if perr != nil {
			return 0, perr
		}
		if rerr != nil {
			return 0, rerr
		}
		v, ok := errors.SafeDivide(2*pr*rc, pr+rc)
		if !ok {
			return degenerate(FSC, "precision and recall are both zero")
		}
		return v, nil
	case LFT:
		if s.Positives() == 0 {
			return degenerate(LFT, "no positive labels")
		}
		predicted := c.TP + c.FP
		if predicted < errors.Epsilon {
			return degenerate(LFT, "no predicted positives")
		}
		return (c.TP / float64(s.Positives())) * (float64(s.Len()) / predicted), nil
	case CST:
		k := e.cfg.Costs
		return k[0]*c.TP + k[1]*c.FN + k[2]*c.FP + k[3]*c.TN, nil
	}
	return 0, errors.NewValidationError("metric", "not a confusion-matrix metric", m.String())
}

func precision(c Confusion) (float64, error) {
	v, ok := errors.SafeDivide(c.TP, c.TP+c.FP)
	if !ok {
		return degenerate(PRE, "no predicted positives")
	}
	return v, nil
}

func recall(c Confusion) (float64, error) {
	v, ok := errors.SafeDivide(c.TP, c.TP+c.FN)
	if !ok {
		return degenerate(REC, "no positive labels")
	}
	return v, nil
}
