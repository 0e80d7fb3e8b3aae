package report

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// PlotCurve draws the tracked metric against the ensemble size, one line per
// split, and saves it to filename. The image format follows the extension
// (.png, .svg, .pdf, ...).
func PlotCurve(h *History, filename string) error {
	splits := h.Splits()
	if len(splits) == 0 {
		return errors.NewValidationError("history", "no reported steps to plot", h.Metric())
	}

	p := plot.New()
	p.Title.Text = h.Metric() + " by ensemble size"
	p.X.Label.Text = "Models"
	p.Y.Label.Text = h.Metric()
	p.Add(plotter.NewGrid())

	for i, split := range splits {
		series := h.Series(split)
		pts := make(plotter.XYs, len(series))
		for j, pt := range series {
			pts[j] = plotter.XY{X: float64(pt.Models), Y: pt.Value}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "plot split %s", split)
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(split, l)
	}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "save plot %s", filename)
	}
	return nil
}
