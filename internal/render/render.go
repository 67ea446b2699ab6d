// Package render draws averaged metric families as charts with gonum/plot
// and assembles them into a multi-page PDF.
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/family"
	"github.com/nvandessel/reportsummary/internal/models"
)

// ErrNothingToDraw is returned for results with no data points.
var ErrNothingToDraw = errors.New("nothing to draw")

// Chart pairs a family with its averaged result.
type Chart struct {
	Family family.Family
	Result models.AveragedResult
}

// PlotRenderer writes one chart file per family.
type PlotRenderer struct {
	Format constants.ChartFormat
	Width  vg.Length
	Height vg.Length
}

// NewPlotRenderer creates a renderer for the given format and page size in
// inches. Non-positive sizes fall back to the defaults.
func NewPlotRenderer(format constants.ChartFormat, widthIn, heightIn float64) *PlotRenderer {
	if !format.Valid() {
		format = constants.ChartPNG
	}
	if widthIn <= 0 {
		widthIn = constants.DefaultChartWidth
	}
	if heightIn <= 0 {
		heightIn = constants.DefaultChartHeight
	}
	return &PlotRenderer{
		Format: format,
		Width:  vg.Length(widthIn) * vg.Inch,
		Height: vg.Length(heightIn) * vg.Inch,
	}
}

// OutputPath returns the file a family is rendered to inside outDir.
func (r *PlotRenderer) OutputPath(fam family.Family, outDir string) string {
	return filepath.Join(outDir, fam.Output+"."+r.Format.String())
}

// Render draws fam into outDir and returns the written path.
func (r *PlotRenderer) Render(fam family.Family, result models.AveragedResult, outDir string) (string, error) {
	c, err := draw.NewFormattedCanvas(r.Width, r.Height, r.Format.String())
	if err != nil {
		return "", fmt.Errorf("creating %s canvas: %w", r.Format, err)
	}
	if err := Draw(draw.New(c), fam, result); err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := r.OutputPath(fam, outDir)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating chart file: %w", err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// WritePDF draws every chart on its own page of a single PDF at path.
func (r *PlotRenderer) WritePDF(path string, charts []Chart) error {
	if len(charts) == 0 {
		return fmt.Errorf("no charts for %s: %w", filepath.Base(path), ErrNothingToDraw)
	}

	doc := vgpdf.New(r.Width, r.Height)
	for i, ch := range charts {
		if i > 0 {
			doc.NextPage()
		}
		if err := Draw(draw.New(doc), ch.Family, ch.Result); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating pdf: %w", err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing pdf: %w", err)
	}
	return f.Close()
}

// Draw renders one family onto dc according to its chart kind.
func Draw(dc draw.Canvas, fam family.Family, result models.AveragedResult) error {
	if result.Kind == models.ResultKindScalar {
		if len(result.Scalars) == 0 {
			return fmt.Errorf("%s: %w", fam.Name, ErrNothingToDraw)
		}
	} else if len(result.Values) < 2 || len(result.Axis()) == 0 {
		return fmt.Errorf("%s: %w", fam.Name, ErrNothingToDraw)
	}

	switch fam.Chart {
	case family.ChartLine:
		p, err := linePlot(fam, result, fam.Title, fam.YLabel, nonAxisPositions(result))
		if err != nil {
			return err
		}
		p.Draw(dc)
	case family.ChartBarCumulative:
		return drawBarCumulative(dc, fam, result)
	case family.ChartPanels:
		return drawPanels(dc, fam, result)
	case family.ChartPie:
		p, err := piePlot(fam, result)
		if err != nil {
			return err
		}
		p.Draw(dc)
	default:
		return fmt.Errorf("%s: unsupported chart kind %q", fam.Name, fam.Chart)
	}
	return nil
}

func nonAxisPositions(result models.AveragedResult) []int {
	positions := make([]int, 0, len(result.Values)-1)
	for i := 1; i < len(result.Values); i++ {
		positions = append(positions, i)
	}
	return positions
}

func legend(fam family.Family, result models.AveragedResult, i int) string {
	if i < len(fam.Legends) && fam.Legends[i] != "" {
		return fam.Legends[i]
	}
	return result.Label(i)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = true
	return p
}
