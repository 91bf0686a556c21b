package morphometry

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/leafmeter/internal/geometry"
)

// MinPCAPoints is the smallest boundary that is measured with principal
// component analysis.
const MinPCAPoints = 5

// Measurement methods reported in Extents.Method.
const (
	MethodPCA         = "pca"
	MethodMinAreaRect = "min_area_rect"
)

// ErrPCA is wrapped by Measure when the principal axes cannot be computed.
var ErrPCA = errors.New("principal component analysis failed")

// Extents holds the oriented size of a boundary in pixels.
type Extents struct {
	// Width is the shorter extent.
	Width float64 `json:"width"`

	// Length is the longer extent.
	Length float64 `json:"length"`

	// Method is MethodPCA or MethodMinAreaRect.
	Method string `json:"method"`
}

// Measure computes the orientation-corrected width and length of a leaf
// boundary in pixels.
//
// Boundaries with at least MinPCAPoints vertices are centred on their mean
// point and projected onto their principal axes (descending variance). The
// projected coordinates are reduced to float32 and measured with an integer
// bounding rectangle, so each extent counts whole pixels. Smaller boundaries
// use the minimum-area rotated rectangle.
//
// # Errors
//
//   - Returns an error wrapping ErrPCA if the decomposition fails
func Measure(leaf geometry.Contour) (Extents, error) {
	if len(leaf) < MinPCAPoints {
		r := leaf.MinAreaRect()
		return orient(r.Width, r.Height, MethodMinAreaRect), nil
	}

	n := len(leaf)
	data := mat.NewDense(n, 2, nil)
	for i, p := range leaf {
		data.Set(i, 0, float64(p.X))
		data.Set(i, 1, float64(p.Y))
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return Extents{}, fmt.Errorf("%w: %d points", ErrPCA, n)
	}
	var axes mat.Dense
	pc.VectorsTo(&axes)
	if r, c := axes.Dims(); r != 2 || c != 2 {
		return Extents{}, fmt.Errorf("%w: unexpected axes shape %dx%d", ErrPCA, r, c)
	}

	meanX := stat.Mean(mat.Col(nil, 0, data), nil)
	meanY := stat.Mean(mat.Col(nil, 1, data), nil)

	major := make([]float32, n)
	minor := make([]float32, n)
	for i, p := range leaf {
		dx := float64(p.X) - meanX
		dy := float64(p.Y) - meanY
		major[i] = float32(dx*axes.At(0, 0) + dy*axes.At(1, 0))
		minor[i] = float32(dx*axes.At(0, 1) + dy*axes.At(1, 1))
	}

	box := geometry.BoundingRectF32(major, minor)
	return orient(float64(box.Width), float64(box.Height), MethodPCA), nil
}

func orient(a, b float64, method string) Extents {
	if a > b {
		a, b = b, a
	}
	return Extents{Width: a, Length: b, Method: method}
}
