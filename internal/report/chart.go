// Package report renders charts of leaf measurements.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ironsheep/leafmeter/internal/morphometry"
)

// ErrNoLeaves is returned when there is nothing to plot.
var ErrNoLeaves = errors.New("no leaves to chart")

// Chart dimensions.
const (
	ChartWidth  = 12 * vg.Inch
	ChartHeight = 5 * vg.Inch
)

var (
	barColor     = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	meanColor    = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	scatterColor = color.RGBA{R: 30, G: 90, B: 180, A: 255}
)

// AreaPlot draws one bar per leaf with its calibrated area, plus a line at
// the average area.
func AreaPlot(res morphometry.AnalysisResult) (*plot.Plot, error) {
	if len(res.Leaves) == 0 {
		return nil, ErrNoLeaves
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Leaf area (%d leaves)", res.NumberOfLeaves)
	p.X.Label.Text = "Leaf"
	p.Y.Label.Text = "Area"

	values := make(plotter.Values, len(res.Leaves))
	names := make([]string, len(res.Leaves))
	for i, m := range res.Leaves {
		values[i] = m.Area
		names[i] = strconv.Itoa(m.ID)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	mean := res.Aggregated.AverageArea
	meanLine, err := plotter.NewLine(plotter.XYs{
		{X: -0.5, Y: mean},
		{X: float64(len(values)) - 0.5, Y: mean},
	})
	if err != nil {
		return nil, err
	}
	meanLine.Color = meanColor
	meanLine.Width = vg.Points(1)
	meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(meanLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Top = true
	p.Y.Min = 0

	return p, nil
}

// ShapePlot scatters leaf width against leaf length.
func ShapePlot(res morphometry.AnalysisResult) (*plot.Plot, error) {
	if len(res.Leaves) == 0 {
		return nil, ErrNoLeaves
	}

	p := plot.New()
	p.Title.Text = "Width vs length"
	p.X.Label.Text = "Length"
	p.Y.Label.Text = "Width"

	pts := make(plotter.XYs, len(res.Leaves))
	for i, m := range res.Leaves {
		pts[i] = plotter.XY{X: m.Length, Y: m.Width}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = scatterColor
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	p.X.Min = 0
	p.Y.Min = 0

	return p, nil
}

// Render draws the area and shape plots side by side and writes them to w
// as PNG.
func Render(w io.Writer, res morphometry.AnalysisResult) error {
	area, err := AreaPlot(res)
	if err != nil {
		return err
	}
	shape, err := ShapePlot(res)
	if err != nil {
		return err
	}

	img := vgimg.New(ChartWidth, ChartHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: 2,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	plots := [][]*plot.Plot{{area, shape}}
	canvases := plot.Align(plots, tiles, dc)
	for j, p := range plots[0] {
		p.Draw(canvases[0][j])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return nil
}

// WriteChart renders the chart of res into a PNG file at path.
func WriteChart(path string, res morphometry.AnalysisResult) error {
	if ext := filepath.Ext(path); ext != ".png" {
		return fmt.Errorf("chart file must have .png extension, got %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := Render(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
