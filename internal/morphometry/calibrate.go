package morphometry

import (
	"math"

	"github.com/ironsheep/leafmeter/internal/geometry"
)

// ScaleFactors converts pixel measurements into real-world units.
type ScaleFactors struct {
	// Linear converts pixel lengths (perimeter, width, length).
	Linear float64 `json:"linear"`

	// Area converts pixel areas.
	Area float64 `json:"area"`

	// Calibrated is false when no reference square was available and both
	// factors are the 1.0 identity.
	Calibrated bool `json:"calibrated"`

	// ReferenceIndex is the position of the reference square among the
	// squares passed to Calibrate, or -1.
	ReferenceIndex int `json:"reference_index"`
}

// Identity returns the uncalibrated scale factors.
func Identity() ScaleFactors {
	return ScaleFactors{Linear: 1, Area: 1, ReferenceIndex: -1}
}

// Calibrate derives scale factors from the first square.
//
// Parameters:
//   - squares: Reference square boundaries in tracer order. Only the first is
//     used; further squares are ignored.
//   - realArea: The real-world area of the reference square, in the unit the
//     results should be expressed in (e.g. 1.0 for a 1 cm² square).
//
// The linear factor is sqrt(realArea) divided by the square's mean side
// (perimeter / 4). The area factor is realArea divided by the square's pixel
// area, falling back to 1.0 for a zero-area square. With no squares the
// identity is returned.
func Calibrate(squares []geometry.Contour, realArea float64) ScaleFactors {
	if len(squares) == 0 {
		return Identity()
	}

	ref := squares[0]
	sf := ScaleFactors{Linear: 1, Area: 1, Calibrated: true, ReferenceIndex: 0}

	if side := ref.Perimeter() / 4; side > 0 {
		sf.Linear = math.Sqrt(realArea) / side
	}
	if area := ref.Area(); area > 0 {
		sf.Area = realArea / area
	}
	return sf
}
