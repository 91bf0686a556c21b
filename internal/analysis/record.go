package analysis

import (
	"strconv"

	"github.com/ironsheep/leafmeter/internal/morphometry"
)

// Record is the structured result emitted by the CLI, the HTTP endpoint and
// the MCP tools.
type Record struct {
	NumberOfLeaves int              `json:"numberOfLeaves"`
	Leaves         []LeafRecord     `json:"leaves"`
	Aggregated     AggregatedRecord `json:"aggregatedMetrics"`
	ProcessedImage string           `json:"processedImage,omitempty"`
}

// LeafRecord is the per-leaf part of a Record.
type LeafRecord struct {
	ID                 int      `json:"id"`
	Area               float64  `json:"area"`
	Perimeter          float64  `json:"perimeter"`
	Width              float64  `json:"width"`
	Length             float64  `json:"length"`
	WidthToLengthRatio float64  `json:"widthToLengthRatio"`
	CX                 *float64 `json:"cx,omitempty"`
	CY                 *float64 `json:"cy,omitempty"`
}

// AggregatedRecord holds the summary statistics of a Record.
type AggregatedRecord struct {
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
}

// Decimal places kept for each per-leaf metric when rounding.
const (
	areaDecimals      = 4
	perimeterDecimals = 4
	widthDecimals     = 4
	lengthDecimals    = 5
	ratioDecimals     = 6
)

// Record converts the report into its wire form.
//
// With round set, per-leaf metrics are rounded to a fixed number of decimals;
// aggregates are always computed from, and reported at, full precision. With
// centroids set, each leaf carries its pixel centroid as cx and cy.
func (r *Report) Record(round, centroids bool) Record {
	leaves := make([]LeafRecord, 0, len(r.Result.Leaves))
	for _, m := range r.Result.Leaves {
		lr := LeafRecord{
			ID:                 m.ID,
			Area:               m.Area,
			Perimeter:          m.Perimeter,
			Width:              m.Width,
			Length:             m.Length,
			WidthToLengthRatio: m.WidthToLengthRatio,
		}
		if round {
			lr.Area = roundTo(lr.Area, areaDecimals)
			lr.Perimeter = roundTo(lr.Perimeter, perimeterDecimals)
			lr.Width = roundTo(lr.Width, widthDecimals)
			lr.Length = roundTo(lr.Length, lengthDecimals)
			lr.WidthToLengthRatio = roundTo(lr.WidthToLengthRatio, ratioDecimals)
		}
		if centroids {
			cx, cy := m.Centroid.X, m.Centroid.Y
			lr.CX, lr.CY = &cx, &cy
		}
		leaves = append(leaves, lr)
	}

	rec := Record{
		NumberOfLeaves: r.Result.NumberOfLeaves,
		Leaves:         leaves,
		Aggregated:     aggregatedRecord(r.Result.Aggregated),
	}
	if r.Overlay != nil {
		rec.ProcessedImage = r.Overlay.ImageBase64
	}
	return rec
}

func aggregatedRecord(a morphometry.AggregatedMetrics) AggregatedRecord {
	return AggregatedRecord{
		TotalArea:                  a.TotalArea,
		AverageArea:                a.AverageArea,
		StandardDeviationArea:      a.StandardDeviationArea,
		AveragePerimeter:           a.AveragePerimeter,
		StandardDeviationPerimeter: a.StandardDeviationPerimeter,
		AverageWidth:               a.AverageWidth,
		StandardDeviationWidth:     a.StandardDeviationWidth,
		AverageLength:              a.AverageLength,
		StandardDeviationLength:    a.StandardDeviationLength,
		AverageRatio:               a.AverageRatio,
	}
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return out
}
