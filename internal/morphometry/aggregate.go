package morphometry

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/leafmeter/internal/geometry"
)

// LeafMeasurement holds the calibrated metrics of one leaf.
type LeafMeasurement struct {
	// ID is the 1-based position of the leaf in the input order.
	ID int `json:"id"`

	// Area is the enclosed area in calibrated area units.
	Area float64 `json:"area"`

	// Perimeter is the boundary length in calibrated linear units.
	Perimeter float64 `json:"perimeter"`

	// Width is the shorter principal extent, Length the longer one.
	Width  float64 `json:"width"`
	Length float64 `json:"length"`

	// WidthToLengthRatio is Width / Length, or 0 when Length is 0.
	WidthToLengthRatio float64 `json:"widthToLengthRatio"`

	// Centroid is the area centroid in pixel coordinates.
	Centroid geometry.PointF `json:"centroid"`

	// Method tells how width and length were measured.
	Method string `json:"method"`
}

// AggregatedMetrics summarises the leaves of one image. Standard deviations
// are population (not sample) deviations.
type AggregatedMetrics struct {
	TotalArea                  float64 `json:"totalArea"`
	AverageArea                float64 `json:"averageArea"`
	StandardDeviationArea      float64 `json:"standardDeviationArea"`
	AveragePerimeter           float64 `json:"averagePerimeter"`
	StandardDeviationPerimeter float64 `json:"standardDeviationPerimeter"`
	AverageWidth               float64 `json:"averageWidth"`
	StandardDeviationWidth     float64 `json:"standardDeviationWidth"`
	AverageLength              float64 `json:"averageLength"`
	StandardDeviationLength    float64 `json:"standardDeviationLength"`
	AverageRatio               float64 `json:"averageWidthToLengthRatio"`
	StandardDeviationRatio     float64 `json:"standardDeviationWidthToLengthRatio"`
}

// AnalysisResult is the outcome of measuring every leaf of one image.
type AnalysisResult struct {
	// NumberOfLeaves equals len(Leaves).
	NumberOfLeaves int `json:"numberOfLeaves"`

	// Leaves lists the measurements in input order.
	Leaves []LeafMeasurement `json:"leaves"`

	// Aggregated holds the summary statistics; all zero without leaves.
	Aggregated AggregatedMetrics `json:"aggregatedMetrics"`
}

// Aggregate measures every leaf, applies the scale factors and summarises
// the results.
//
// Leaves are processed in input order and numbered from 1. A failure measuring
// any leaf aborts the whole aggregation.
func Aggregate(leaves []geometry.Contour, scale ScaleFactors) (AnalysisResult, error) {
	measurements := make([]LeafMeasurement, 0, len(leaves))
	for i, leaf := range leaves {
		ext, err := Measure(leaf)
		if err != nil {
			return AnalysisResult{}, fmt.Errorf("failed to measure leaf %d: %w", i+1, err)
		}

		width := min(ext.Width, ext.Length) * scale.Linear
		length := max(ext.Width, ext.Length) * scale.Linear
		ratio := 0.0
		if length != 0 {
			ratio = width / length
		}

		measurements = append(measurements, LeafMeasurement{
			ID:                 i + 1,
			Area:               leaf.Area() * scale.Area,
			Perimeter:          leaf.Perimeter() * scale.Linear,
			Width:              width,
			Length:             length,
			WidthToLengthRatio: ratio,
			Centroid:           leaf.Centroid(),
			Method:             ext.Method,
		})
	}

	return AnalysisResult{
		NumberOfLeaves: len(measurements),
		Leaves:         measurements,
		Aggregated:     Summarize(measurements),
	}, nil
}

// Summarize computes totals, means and population standard deviations over
// the given measurements. An empty slice yields all zeros.
func Summarize(ms []LeafMeasurement) AggregatedMetrics {
	if len(ms) == 0 {
		return AggregatedMetrics{}
	}

	column := func(get func(LeafMeasurement) float64) []float64 {
		out := make([]float64, len(ms))
		for i, m := range ms {
			out[i] = get(m)
		}
		return out
	}

	areas := column(func(m LeafMeasurement) float64 { return m.Area })
	perimeters := column(func(m LeafMeasurement) float64 { return m.Perimeter })
	widths := column(func(m LeafMeasurement) float64 { return m.Width })
	lengths := column(func(m LeafMeasurement) float64 { return m.Length })
	ratios := column(func(m LeafMeasurement) float64 { return m.WidthToLengthRatio })

	var agg AggregatedMetrics
	agg.TotalArea = floats.Sum(areas)
	agg.AverageArea, agg.StandardDeviationArea = stat.PopMeanStdDev(areas, nil)
	agg.AveragePerimeter, agg.StandardDeviationPerimeter = stat.PopMeanStdDev(perimeters, nil)
	agg.AverageWidth, agg.StandardDeviationWidth = stat.PopMeanStdDev(widths, nil)
	agg.AverageLength, agg.StandardDeviationLength = stat.PopMeanStdDev(lengths, nil)
	agg.AverageRatio, agg.StandardDeviationRatio = stat.PopMeanStdDev(ratios, nil)
	return agg
}
