package detection

import (
	"math"

	"github.com/ironsheep/leafmeter/internal/geometry"
)

// Class is the category assigned to a traced boundary.
type Class string

// Boundary classes.
const (
	ClassSquare  Class = "square"
	ClassLeaf    Class = "leaf"
	ClassDiscard Class = "discard"
)

// Thresholds holds the tunable parameters of the shape classifier.
type Thresholds struct {
	// MinArea is the exclusive lower bound on boundary area, in square pixels.
	// Smaller boundaries are treated as noise.
	MinArea float64 `json:"min_area"`

	// MaxArea is the exclusive upper bound on boundary area.
	MaxArea float64 `json:"max_area"`

	// MaxCosine is the largest |cos| allowed at any corner of a reference
	// square. 0.3 admits corners between roughly 72.5 and 107.5 degrees.
	MaxCosine float64 `json:"max_cosine"`

	// SimplifyTolerance scales the boundary perimeter into the polygon
	// approximation tolerance.
	SimplifyTolerance float64 `json:"simplify_tolerance"`
}

// DefaultThresholds returns the classifier parameters used for calibrated
// leaf scans.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinArea:           1000,
		MaxArea:           1e10,
		MaxCosine:         0.3,
		SimplifyTolerance: 0.02,
	}
}

// Shape is a classified boundary together with the measurements that
// decided its class.
type Shape struct {
	// Index is the position of the boundary in the tracer output.
	Index int `json:"index"`

	// Class is the assigned category.
	Class Class `json:"class"`

	// Area is the enclosed area in square pixels.
	Area float64 `json:"area"`

	// Perimeter is the closed arc length in pixels.
	Perimeter float64 `json:"perimeter"`

	// Vertices is the simplified polygon used for the square test.
	Vertices geometry.Contour `json:"vertices"`

	// Convex reports whether the simplified polygon is convex.
	Convex bool `json:"convex"`

	// MaxCosine is the largest corner |cos| for 4-vertex convex polygons,
	// zero otherwise.
	MaxCosine float64 `json:"max_cosine"`

	// Boundary is the traced boundary.
	Boundary geometry.Contour `json:"-"`
}

// ClassifyShapes assigns a class to every boundary, discards included, in
// input order.
func ClassifyShapes(boundaries []geometry.Contour, th Thresholds) []Shape {
	shapes := make([]Shape, 0, len(boundaries))
	for i, b := range boundaries {
		shapes = append(shapes, classifyOne(i, b, th))
	}
	return shapes
}

// Classify partitions boundaries into reference squares and leaves. Both
// lists preserve input order; discarded boundaries are dropped.
func Classify(boundaries []geometry.Contour, th Thresholds) (squares, leaves []geometry.Contour) {
	for _, s := range ClassifyShapes(boundaries, th) {
		switch s.Class {
		case ClassSquare:
			squares = append(squares, s.Boundary)
		case ClassLeaf:
			leaves = append(leaves, s.Boundary)
		}
	}
	return squares, leaves
}

func classifyOne(index int, boundary geometry.Contour, th Thresholds) Shape {
	perimeter := boundary.Perimeter()
	approx := boundary.ApproxPolyDP(th.SimplifyTolerance * perimeter)
	area := boundary.Area()

	shape := Shape{
		Index:     index,
		Class:     ClassDiscard,
		Area:      area,
		Perimeter: perimeter,
		Vertices:  approx,
		Boundary:  boundary,
	}

	if area <= th.MinArea || area >= th.MaxArea {
		return shape
	}

	shape.Class = ClassLeaf
	if len(approx) != 4 {
		return shape
	}

	shape.Convex = approx.IsConvex()
	if !shape.Convex {
		return shape
	}

	shape.MaxCosine = maxCornerCosine(approx)
	if shape.MaxCosine < th.MaxCosine {
		shape.Class = ClassSquare
	}
	return shape
}

// maxCornerCosine returns the largest |cos| over the corners at vertices 1, 2
// and 3 of a quadrilateral.
func maxCornerCosine(q geometry.Contour) float64 {
	maxCos := 0.0
	for j := 2; j < 5; j++ {
		c := math.Abs(angleCosine(q[j%4], q[j-2], q[j-1]))
		maxCos = math.Max(maxCos, c)
	}
	return maxCos
}

// angleCosine returns the cosine of the angle at p0 between rays p0->p1 and
// p0->p2.
func angleCosine(p1, p2, p0 geometry.Point) float64 {
	dx1 := int64(p1.X) - int64(p0.X)
	dy1 := int64(p1.Y) - int64(p0.Y)
	dx2 := int64(p2.X) - int64(p0.X)
	dy2 := int64(p2.Y) - int64(p0.Y)
	den := math.Sqrt(float64((dx1*dx1+dy1*dy1)*(dx2*dx2+dy2*dy2))) + 1e-10
	return float64(dx1*dx2+dy1*dy2) / den
}
