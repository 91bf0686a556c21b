package report

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/leafmeter/internal/morphometry"
)

func sampleResult() morphometry.AnalysisResult {
	leaves := []morphometry.LeafMeasurement{
		{ID: 1, Area: 12.5, Perimeter: 15, Width: 2.5, Length: 6, WidthToLengthRatio: 2.5 / 6},
		{ID: 2, Area: 9.0, Perimeter: 13, Width: 2, Length: 5.5, WidthToLengthRatio: 2 / 5.5},
		{ID: 3, Area: 15.25, Perimeter: 17, Width: 3, Length: 6.5, WidthToLengthRatio: 3 / 6.5},
	}
	return morphometry.AnalysisResult{
		NumberOfLeaves: len(leaves),
		Leaves:         leaves,
		Aggregated:     morphometry.Summarize(leaves),
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("chart is not a PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= b.Dy() || b.Dy() == 0 {
		t.Errorf("chart size = %dx%d, want a wide non-empty image", b.Dx(), b.Dy())
	}
}

func TestPlotsRejectEmptyResult(t *testing.T) {
	empty := morphometry.AnalysisResult{Leaves: []morphometry.LeafMeasurement{}}

	if _, err := AreaPlot(empty); !errors.Is(err, ErrNoLeaves) {
		t.Errorf("AreaPlot error = %v, want ErrNoLeaves", err)
	}
	if _, err := ShapePlot(empty); !errors.Is(err, ErrNoLeaves) {
		t.Errorf("ShapePlot error = %v, want ErrNoLeaves", err)
	}
	if err := Render(&bytes.Buffer{}, empty); !errors.Is(err, ErrNoLeaves) {
		t.Errorf("Render error = %v, want ErrNoLeaves", err)
	}
}

func TestAreaPlotRanges(t *testing.T) {
	p, err := AreaPlot(sampleResult())
	if err != nil {
		t.Fatalf("AreaPlot failed: %v", err)
	}
	if p.Y.Min != 0 {
		t.Errorf("Y.Min = %v, want 0", p.Y.Min)
	}
	if p.Y.Max < 15.25 {
		t.Errorf("Y.Max = %v, want at least the largest area", p.Y.Max)
	}
}

func TestWriteChart(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "leaves.png")
	if err := WriteChart(path, sampleResult()); err != nil {
		t.Fatalf("WriteChart failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}

	if err := WriteChart(filepath.Join(dir, "leaves.svg"), sampleResult()); err == nil {
		t.Error("WriteChart should reject a non-PNG path")
	}
}
