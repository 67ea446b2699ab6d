package render

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/nvandessel/reportsummary/internal/family"
	"github.com/nvandessel/reportsummary/internal/models"
)

// arcSteps is the number of polygon edges used for a full circle.
const arcSteps = 180

// pieChart implements plot.Plotter for a set of non-negative shares.
type pieChart struct {
	values []float64
	colors []color.Color
}

// Plot draws the slices counter-clockwise from twelve o'clock.
func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := 0.0
	for _, v := range pc.values {
		total += v
	}
	if total <= 0 {
		return
	}

	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	center := vg.Point{X: c.Min.X + w/2, Y: c.Min.Y + h/2}
	radius := vg.Length(math.Min(float64(w), float64(h))) / 2 * 0.9

	start := math.Pi / 2
	for i, v := range pc.values {
		if v <= 0 {
			continue
		}
		sweep := 2 * math.Pi * v / total
		c.FillPolygon(pc.colors[i], arc(center, radius, start, sweep))
		start += sweep
	}
}

// arc returns the outline of a pie slice.
func arc(center vg.Point, radius vg.Length, start, sweep float64) []vg.Point {
	steps := int(math.Ceil(arcSteps * sweep / (2 * math.Pi)))
	if steps < 1 {
		steps = 1
	}
	pts := make([]vg.Point, 0, steps+2)
	pts = append(pts, center)
	for s := 0; s <= steps; s++ {
		a := start + sweep*float64(s)/float64(steps)
		pts = append(pts, vg.Point{
			X: center.X + radius*vg.Length(math.Cos(a)),
			Y: center.Y + radius*vg.Length(math.Sin(a)),
		})
	}
	return pts
}

// swatch is a legend thumbnail filled with one colour.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

// pieSlices maps a scalar result to slice values and legend names. A
// delivery tuple (created, delivered, probability) becomes delivered versus
// undelivered; other tuples are drawn as-is.
func pieSlices(fam family.Family, result models.AveragedResult) ([]float64, []string) {
	created := slices.Index(result.Labels, "created")
	delivered := slices.Index(result.Labels, "delivered")
	if created >= 0 && delivered >= 0 && created < len(result.Scalars) && delivered < len(result.Scalars) {
		d := result.Scalars[delivered]
		u := math.Max(0, result.Scalars[created]-d)
		return []float64{d, u}, []string{"Delivered", "Not delivered"}
	}

	names := make([]string, len(result.Scalars))
	for i := range result.Scalars {
		names[i] = legend(fam, result, i)
	}
	return slices.Clone(result.Scalars), names
}

func piePlot(fam family.Family, result models.AveragedResult) (*plot.Plot, error) {
	values, names := pieSlices(fam, result)

	total := 0.0
	for _, v := range values {
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("%s: pie slice %g is not a share", fam.Name, v)
		}
		total += v
	}
	if total == 0 {
		return nil, fmt.Errorf("%s: all shares are zero: %w", fam.Name, ErrNothingToDraw)
	}

	pc := &pieChart{values: values, colors: make([]color.Color, len(values))}
	for i := range values {
		pc.colors[i] = plotutil.Color(i)
	}

	p := newPlot(fam.Title, "", "")
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(pc)
	for i, name := range names {
		p.Legend.Add(fmt.Sprintf("%s (%.1f%%)", name, 100*values[i]/total), swatch{color: pc.colors[i]})
	}
	return p, nil
}
