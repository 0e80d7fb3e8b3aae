package metrics

// Ranking measures walk the sample in descending probability order. Examples
// with equal probability form a tie block and are treated as a single
// operating point.

// roc computes the area under the ROC curve by the trapezoid rule.
func roc(s Sample) (float64, error) {
	pos, neg := s.Positives(), s.Negatives()
	if pos == 0 {
		return degenerate(ROC, "no positive labels")
	}
	if neg == 0 {
		return degenerate(ROC, "no negative labels")
	}
	p, y := ranked(s)
	n := len(p)

	var tp, fp int
	var area, tprPrev, fprPrev float64
	for j := 0; j < n; j++ {
		tp += y[j]
		fp += 1 - y[j]
		if j == n-1 || p[j] != p[j+1] {
			tpr := float64(tp) / float64(pos)
			fpr := float64(fp) / float64(neg)
			area += 0.5 * (tpr + tprPrev) * (fpr - fprPrev)
			tprPrev, fprPrev = tpr, fpr
		}
	}
	return area, nil
}

// prPoints calls visit for every precision/recall point of s. Inside a tie
// block of cnt examples holding ones positives, the i-th point assumes
// i*ones/cnt true positives. Iteration stops when visit returns false.
func prPoints(p []float64, y []int, positives int, visit func(precision, recall float64) bool) {
	n := len(p)
	var tp, fp, lastTP, lastFP, cnt, ones int
	for j := 0; j < n; j++ {
		cnt++
		ones += y[j]
		tp += y[j]
		fp += 1 - y[j]
		if j < n-1 && p[j] == p[j+1] {
			continue
		}
		share := float64(ones) / float64(cnt)
		for i := 1; i <= cnt; i++ {
			hits := float64(lastTP) + float64(i)*share
			precision := hits / float64(lastTP+lastFP+i)
			recall := hits / float64(positives)
			if !visit(precision, recall) {
				return
			}
		}
		cnt, ones = 0, 0
		lastTP, lastFP = tp, fp
	}
}

// bep computes the precision/recall break-even point: the first point where
// precision equals recall, or the linear interpolation across the first
// segment where precision falls below recall. The first crossing wins, but
// points with zero recall do not count as crossings: a top-ranked negative
// has precision 0 = recall 0 and would otherwise end the walk at 0 before
// any positive is seen. A curve that never crosses yields 0.
func bep(s Sample) (float64, error) {
	if s.Positives() == 0 {
		return degenerate(BEP, "no positive labels")
	}
	p, y := ranked(s)

	var result float64
	precPrev, recPrev := -1.0, 0.0
	prPoints(p, y, s.Positives(), func(precision, recall float64) bool {
		if precision == recall && recall > 0 {
			result = precision
			return false
		}
		if precision < recall && precPrev > recPrev {
			if recPrev == recall {
				result = recall
				return false
			}
			slope := (precPrev - precision) / (recPrev - recall)
			result = (precision - slope*recall) / (1 - slope)
			return false
		}
		precPrev, recPrev = precision, recall
		return true
	})
	return result, nil
}

// apr computes average precision as the trapezoidal area between consecutive
// precision/recall points. The first point only anchors the curve.
func apr(s Sample) (float64, error) {
	if s.Positives() == 0 {
		return degenerate(APR, "no positive labels")
	}
	p, y := ranked(s)

	var area float64
	precPrev, recPrev := -1.0, 0.0
	prPoints(p, y, s.Positives(), func(precision, recall float64) bool {
		if precPrev > 0 {
			area += 0.5 * (precision + precPrev) * (recall - recPrev)
		}
		precPrev, recPrev = precision, recall
		return true
	})
	return area, nil
}
