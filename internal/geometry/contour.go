package geometry

import (
	"image"
	"math"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// PointF is a 2D coordinate with sub-pixel precision.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
//
// Width and Height count pixels, so a single point has a 1x1 rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contour is an ordered boundary polygon. The last vertex connects back to the
// first one; the closing point is never repeated.
type Contour []Point

// FromImagePoints converts a slice of image.Point into a Contour.
func FromImagePoints(pts []image.Point) Contour {
	c := make(Contour, len(pts))
	for i, p := range pts {
		c[i] = Point{X: p.X, Y: p.Y}
	}
	return c
}

// ImagePoints returns the contour as image.Point values, for drawing.
func (c Contour) ImagePoints() []image.Point {
	pts := make([]image.Point, len(c))
	for i, p := range c {
		pts[i] = image.Pt(p.X, p.Y)
	}
	return pts
}

// Perimeter returns the closed arc length of the contour.
//
// Each segment length is a float32 square root, accumulated in float64.
// Contours with fewer than two points have zero perimeter.
func (c Contour) Perimeter() float64 {
	n := len(c)
	if n <= 1 {
		return 0
	}

	var perimeter float64
	prev := c[n-1]
	for _, p := range c {
		dx := float32(p.X - prev.X)
		dy := float32(p.Y - prev.Y)
		perimeter += float64(float32(math.Sqrt(float64(dx*dx + dy*dy))))
		prev = p
	}
	return perimeter
}

// SignedArea returns the oriented shoelace area of the contour. The sign
// depends on the traversal direction.
func (c Contour) SignedArea() float64 {
	n := len(c)
	if n < 3 {
		return 0
	}

	var a float64
	prev := c[n-1]
	for _, p := range c {
		a += float64(prev.X)*float64(p.Y) - float64(prev.Y)*float64(p.X)
		prev = p
	}
	return a * 0.5
}

// Area returns the absolute enclosed area of the contour in square pixels.
func (c Contour) Area() float64 {
	return math.Abs(c.SignedArea())
}

// BoundingRect returns the smallest axis-aligned rectangle containing every
// vertex. An empty contour yields the zero Rect.
func (c Contour) BoundingRect() Rect {
	if len(c) == 0 {
		return Rect{}
	}

	minX, minY := c[0].X, c[0].Y
	maxX, maxY := minX, minY
	for _, p := range c[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// Centroid returns the area centroid of the polygon computed from its first
// order moments. Degenerate polygons (zero area) fall back to the mean of the
// vertices.
func (c Contour) Centroid() PointF {
	if len(c) == 0 {
		return PointF{}
	}

	var m00, m10, m01 float64
	prev := c[len(c)-1]
	for _, p := range c {
		xi, yi := float64(prev.X), float64(prev.Y)
		xj, yj := float64(p.X), float64(p.Y)
		cross := xi*yj - xj*yi
		m00 += cross
		m10 += cross * (xi + xj)
		m01 += cross * (yi + yj)
		prev = p
	}

	if m00 != 0 {
		m00 *= 0.5
		return PointF{X: m10 / (6 * m00), Y: m01 / (6 * m00)}
	}

	var sx, sy float64
	for _, p := range c {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(c))
	return PointF{X: sx / n, Y: sy / n}
}

// BoundingRectF32 returns the integer bounding rectangle of a float32 point
// set. Both extremes are floored before measuring, so the extent along an axis
// is floor(max) - floor(min) + 1.
func BoundingRectF32(xs, ys []float32) Rect {
	if len(xs) == 0 || len(xs) != len(ys) {
		return Rect{}
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		minX = min(minX, xs[i])
		maxX = max(maxX, xs[i])
		minY = min(minY, ys[i])
		maxY = max(maxY, ys[i])
	}

	x0 := int(math.Floor(float64(minX)))
	y0 := int(math.Floor(float64(minY)))
	x1 := int(math.Floor(float64(maxX)))
	y1 := int(math.Floor(float64(maxY)))
	return Rect{X: x0, Y: y0, Width: x1 - x0 + 1, Height: y1 - y0 + 1}
}
