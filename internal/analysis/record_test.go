package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/leafmeter/internal/geometry"
	"github.com/ironsheep/leafmeter/internal/imaging"
	"github.com/ironsheep/leafmeter/internal/morphometry"
)

func sampleReport() *Report {
	return &Report{
		Result: morphometry.AnalysisResult{
			NumberOfLeaves: 1,
			Leaves: []morphometry.LeafMeasurement{{
				ID:                 1,
				Area:               1.23456789,
				Perimeter:          9.87654321,
				Width:              0.333333333,
				Length:             0.666666666,
				WidthToLengthRatio: 0.5000004999,
				Centroid:           geometry.PointF{X: 12.5, Y: 40.25},
			}},
			Aggregated: morphometry.AggregatedMetrics{
				TotalArea:              1.23456789,
				AverageArea:            1.23456789,
				AverageRatio:           0.5000004999,
				StandardDeviationRatio: 0,
			},
		},
	}
}

func TestRecordRounding(t *testing.T) {
	rec := sampleReport().Record(true, false)

	want := LeafRecord{
		ID:                 1,
		Area:               1.2346,
		Perimeter:          9.8765,
		Width:              0.3333,
		Length:             0.66667,
		WidthToLengthRatio: 0.5,
	}
	if diff := cmp.Diff(want, rec.Leaves[0]); diff != "" {
		t.Errorf("rounded leaf mismatch (-want +got):\n%s", diff)
	}
	// Aggregates stay at full precision.
	if rec.Aggregated.TotalArea != 1.23456789 {
		t.Errorf("TotalArea = %v, want unrounded 1.23456789", rec.Aggregated.TotalArea)
	}
}

func TestRecordUnrounded(t *testing.T) {
	rec := sampleReport().Record(false, true)

	leaf := rec.Leaves[0]
	if leaf.Area != 1.23456789 || leaf.WidthToLengthRatio != 0.5000004999 {
		t.Errorf("values were rounded: %+v", leaf)
	}
	if leaf.CX == nil || leaf.CY == nil || *leaf.CX != 12.5 || *leaf.CY != 40.25 {
		t.Errorf("centroid = %v, %v, want 12.5, 40.25", leaf.CX, leaf.CY)
	}
}

func TestRecordJSONKeys(t *testing.T) {
	data, err := json.Marshal(sampleReport().Record(true, false))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"numberOfLeaves", "leaves", "aggregatedMetrics"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if _, ok := doc["processedImage"]; ok {
		t.Error("processedImage should be omitted without an overlay")
	}

	leaf := doc["leaves"].([]any)[0].(map[string]any)
	for _, key := range []string{"id", "area", "perimeter", "width", "length", "widthToLengthRatio"} {
		if _, ok := leaf[key]; !ok {
			t.Errorf("missing leaf key %q", key)
		}
	}
	if _, ok := leaf["cx"]; ok {
		t.Error("cx should be omitted unless centroids are requested")
	}

	agg := doc["aggregatedMetrics"].(map[string]any)
	for _, key := range []string{
		"totalArea", "averageArea", "standardDeviationArea",
		"averagePerimeter", "standardDeviationPerimeter",
		"averageWidth", "standardDeviationWidth",
		"averageLength", "standardDeviationLength",
		"averageWidthToLengthRatio",
	} {
		if _, ok := agg[key]; !ok {
			t.Errorf("missing aggregate key %q", key)
		}
	}
}

func TestRecordEmptyLeavesIsList(t *testing.T) {
	report := &Report{Result: morphometry.AnalysisResult{Leaves: []morphometry.LeafMeasurement{}}}

	data, err := json.Marshal(report.Record(true, false))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var doc struct {
		Leaves []any `json:"leaves"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc.Leaves == nil {
		t.Errorf("leaves should encode as [], got %s", data)
	}
}

func TestRecordProcessedImage(t *testing.T) {
	report := sampleReport()
	report.Overlay = &imaging.OverlayResult{ImageBase64: "aGVsbG8="}

	if got := report.Record(true, false).ProcessedImage; got != "aGVsbG8=" {
		t.Errorf("ProcessedImage = %q", got)
	}
}

func TestErrorRecord(t *testing.T) {
	data, err := json.Marshal(NewErrorRecord(errors.New("boom")))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"error":"boom"}` {
		t.Errorf("error record = %s", data)
	}
}
