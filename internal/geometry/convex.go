package geometry

import (
	"math"
	"sort"
)

// IsConvex reports whether the polygon is strictly convex.
//
// Every turn must have the same orientation. A zero turn (three collinear
// consecutive vertices) or a repeated vertex counts as both orientations, so
// such polygons are reported as non-convex. Polygons with fewer than three
// vertices are never convex.
func (c Contour) IsConvex() bool {
	n := len(c)
	if n < 3 {
		return false
	}

	prev := c[n-2]
	cur := c[n-1]
	dx0 := int64(cur.X - prev.X)
	dy0 := int64(cur.Y - prev.Y)
	orientation := 0

	for i := 0; i < n; i++ {
		prev = cur
		cur = c[i]

		dx := int64(cur.X - prev.X)
		dy := int64(cur.Y - prev.Y)
		dxdy0 := dx * dy0
		dydx0 := dy * dx0

		switch {
		case dydx0 > dxdy0:
			orientation |= 1
		case dydx0 < dxdy0:
			orientation |= 2
		default:
			orientation |= 3
		}
		if orientation == 3 {
			return false
		}

		dx0, dy0 = dx, dy
	}
	return true
}

// ConvexHull returns the convex hull of the contour's vertices in
// counter-clockwise order (in a y-up frame) using Andrew's monotone chain.
// Collinear points on the hull boundary are dropped. Inputs with fewer than
// three distinct points return those distinct points.
func (c Contour) ConvexHull() Contour {
	pts := make(Contour, len(c))
	copy(pts, c)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Deduplicate.
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return pts
	}

	cross := func(o, a, b Point) int64 {
		return int64(a.X-o.X)*int64(b.Y-o.Y) - int64(a.Y-o.Y)*int64(b.X-o.X)
	}

	hull := make(Contour, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// RotatedRect is a rectangle of arbitrary orientation.
type RotatedRect struct {
	// Center is the rectangle centre in pixel coordinates.
	Center PointF `json:"center"`

	// Width is the side length along the direction given by Angle.
	Width float64 `json:"width"`

	// Height is the side length perpendicular to Width.
	Height float64 `json:"height"`

	// Angle is the direction of the Width side, in degrees.
	Angle float64 `json:"angle"`
}

// MinAreaRect returns the minimum-area rectangle enclosing the contour.
//
// The search uses rotating calipers over the convex hull: the optimal
// rectangle has one side collinear with a hull edge. A single point yields a
// zero-size rectangle and two distinct points a zero-height one.
func (c Contour) MinAreaRect() RotatedRect {
	hull := c.ConvexHull()
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: PointF{X: float64(hull[0].X), Y: float64(hull[0].Y)}}
	case 2:
		a, b := hull[0], hull[1]
		dx := float64(b.X - a.X)
		dy := float64(b.Y - a.Y)
		return RotatedRect{
			Center: PointF{X: float64(a.X+b.X) / 2, Y: float64(a.Y+b.Y) / 2},
			Width:  math.Hypot(dx, dy),
			Angle:  math.Atan2(dy, dx) * 180 / math.Pi,
		}
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	n := len(hull)
	for i := 0; i < n; i++ {
		a, b := hull[i], hull[(i+1)%n]
		ex := float64(b.X - a.X)
		ey := float64(b.Y - a.Y)
		l := math.Hypot(ex, ey)
		if l == 0 {
			continue
		}
		ux, uy := ex/l, ey/l // edge direction
		vx, vy := -uy, ux    // edge normal

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			px := float64(p.X - a.X)
			py := float64(p.Y - a.Y)
			u := px*ux + py*uy
			v := px*vx + py*vy
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}

		w, h := maxU-minU, maxV-minV
		if area := w * h; area < bestArea {
			bestArea = area
			cu, cv := (minU+maxU)/2, (minV+maxV)/2
			best = RotatedRect{
				Center: PointF{
					X: float64(a.X) + cu*ux + cv*vx,
					Y: float64(a.Y) + cu*uy + cv*vy,
				},
				Width:  w,
				Height: h,
				Angle:  math.Atan2(uy, ux) * 180 / math.Pi,
			}
		}
	}
	return best
}
