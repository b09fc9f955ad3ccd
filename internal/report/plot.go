package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RenderRegretPlot draws one mean-regret line per policy and saves the plot
// to path. The image format follows the file extension; PNG by convention.
func RenderRegretPlot(rep *BatchReport, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time step"
	p.Y.Label.Text = "cumulative regret"
	p.Legend.Top = true
	p.Legend.Left = true

	var lines []any
	for _, ps := range rep.Policies {
		if len(ps.MeanRegretCurve) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(ps.MeanRegretCurve))
		for t, regret := range ps.MeanRegretCurve {
			pts[t].X = float64(t + 1)
			pts[t].Y = regret
		}
		lines = append(lines, string(ps.Policy), pts)
	}
	if len(lines) == 0 {
		return fmt.Errorf("no completed runs to plot")
	}

	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("adding regret lines: %w", err)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
