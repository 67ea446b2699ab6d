package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/nvandessel/reportsummary/internal/family"
	"github.com/nvandessel/reportsummary/internal/models"
)

// xys pairs the axis with position i of result.
func xys(result models.AveragedResult, i int) plotter.XYs {
	axis := result.Axis()
	pts := make(plotter.XYs, len(axis))
	for j, x := range axis {
		pts[j].X = x
		pts[j].Y = result.Values[i][j]
	}
	return pts
}

// linePlot draws each position as a line with point markers.
func linePlot(fam family.Family, result models.AveragedResult, title, yLabel string, positions []int) (*plot.Plot, error) {
	p := newPlot(title, fam.XLabel, yLabel)

	for n, i := range positions {
		if i <= 0 || i >= len(result.Values) {
			return nil, fmt.Errorf("%s: position %d out of range", fam.Name, i)
		}
		pts := xys(result, i)

		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: line for %s: %w", fam.Name, result.Label(i), err)
		}
		l.Color = plotutil.Color(n)
		l.Width = vg.Points(1.5)

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: points for %s: %w", fam.Name, result.Label(i), err)
		}
		s.GlyphStyle.Color = plotutil.Color(n)
		s.GlyphStyle.Shape = plotutil.Shape(n)
		s.GlyphStyle.Radius = vg.Points(2.5)

		p.Add(l, s)
		p.Legend.Add(legend(fam, result, i), l, s)
	}

	clampAxes(p, fam)
	return p, nil
}

// clampAxes pins both axes to start at zero and applies the family's
// fixed Y ceiling.
func clampAxes(p *plot.Plot, fam family.Family) {
	p.X.Min = 0
	p.Y.Min = math.Min(0, p.Y.Min)
	if fam.YMax > 0 {
		p.Y.Max = fam.YMax
	}
	if p.Y.Max <= p.Y.Min {
		p.Y.Max = p.Y.Min + 1
	}
	if p.X.Max <= p.X.Min {
		p.X.Max = p.X.Min + 1
	}
}

// drawBarCumulative stacks a bar chart of position 1 above a cumulative
// line of position 2.
func drawBarCumulative(dc draw.Canvas, fam family.Family, result models.AveragedResult) error {
	if len(result.Values) < 3 {
		return fmt.Errorf("%s: bar chart needs share and cumulative series: %w", fam.Name, ErrNothingToDraw)
	}

	top := newPlot(fam.Title, "", fam.YLabel)
	bars, err := plotter.NewBarChart(plotter.Values(result.Values[1]), barWidth(len(result.Axis())))
	if err != nil {
		return fmt.Errorf("%s: bar chart: %w", fam.Name, err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	top.Add(bars)
	top.Legend.Add(legend(fam, result, 1), bars)

	names := make([]string, len(result.Axis()))
	for j, x := range result.Axis() {
		names[j] = fmt.Sprintf("%g", x)
	}
	top.NominalX(names...)
	top.Y.Min = 0

	bottom, err := linePlot(fam, result, "", legend(fam, result, 2), []int{2})
	if err != nil {
		return err
	}
	bottom.Legend.Top = false

	canvases := plot.Align([][]*plot.Plot{{top}, {bottom}}, draw.Tiles{
		Rows: 2,
		Cols: 1,
		PadY: vg.Millimeter * 4,
	}, dc)
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])
	return nil
}

func barWidth(n int) vg.Length {
	switch {
	case n > 40:
		return vg.Points(3)
	case n > 15:
		return vg.Points(8)
	default:
		return vg.Points(16)
	}
}

// drawPanels lays the family's panels out two per row, or one per row when
// the count is odd so every tile is filled.
func drawPanels(dc draw.Canvas, fam family.Family, result models.AveragedResult) error {
	if len(fam.Panels) == 0 {
		p, err := linePlot(fam, result, fam.Title, fam.YLabel, nonAxisPositions(result))
		if err != nil {
			return err
		}
		p.Draw(dc)
		return nil
	}

	cols := 2
	if len(fam.Panels)%2 != 0 {
		cols = 1
	}
	rows := (len(fam.Panels) + cols - 1) / cols

	grid := make([][]*plot.Plot, rows)
	for r := range grid {
		grid[r] = make([]*plot.Plot, cols)
	}
	for n, panel := range fam.Panels {
		p, err := linePlot(fam, result, panel.Title, panel.YLabel, panel.Positions)
		if err != nil {
			return err
		}
		grid[n/cols][n%cols] = p
	}

	canvases := plot.Align(grid, draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}, dc)
	for r := range grid {
		for c := range grid[r] {
			grid[r][c].Draw(canvases[r][c])
		}
	}
	return nil
}
