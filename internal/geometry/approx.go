package geometry

import "math"

// span is a half-open run of contour indices [start, end) walked forward with
// wrap-around.
type span struct {
	start, end int
}

// ApproxPolyDP simplifies a closed contour with the Douglas-Peucker algorithm.
//
// epsilon is the maximum distance between the original curve and its
// approximation. The result follows the OpenCV closed-curve variant:
//
//  1. Two approximately farthest points are located with three passes of a
//     farthest-point search.
//  2. The two arcs between them are split recursively until every point lies
//     within epsilon of its chord.
//  3. A final pass removes vertices lying on almost straight diagonal runs.
//
// The returned slice is newly allocated; the input is not modified.
func (c Contour) ApproxPolyDP(epsilon float64) Contour {
	count := len(c)
	if count == 0 {
		return Contour{}
	}

	eps := epsilon * epsilon
	dst := make(Contour, 0, count)

	// Phase 1: locate a pair of far-apart points.
	var (
		pos      int
		startPt  Point
		rightEnd int
		leEps    bool
	)
	for iter := 0; iter < 3; iter++ {
		pos = (pos + rightEnd) % count
		startPt = c[pos]
		maxDist := 0.0
		for j := 1; j < count; j++ {
			pt := c[(pos+j)%count]
			dx := float64(pt.X - startPt.X)
			dy := float64(pt.Y - startPt.Y)
			if d := dx*dx + dy*dy; d > maxDist {
				maxDist = d
				rightEnd = j
			}
		}
		leEps = maxDist <= eps
	}

	// Phase 2: seed the work stack with both arcs.
	var stack []span
	if leEps {
		dst = append(dst, startPt)
	} else {
		first := pos % count
		far := (rightEnd + first) % count
		stack = append(stack, span{start: far, end: first}, span{start: first, end: far})
	}

	// Phase 3: recursive splitting, depth-first along the contour order.
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		endPt := c[s.end]
		startPt = c[s.start]
		p := (s.start + 1) % count

		split := -1
		if p != s.end {
			dx := float64(endPt.X - startPt.X)
			dy := float64(endPt.Y - startPt.Y)
			maxDist := 0.0
			for p != s.end {
				pt := c[p]
				d := math.Abs(float64(pt.Y-startPt.Y)*dx - float64(pt.X-startPt.X)*dy)
				if d > maxDist {
					maxDist = d
					split = p
				}
				p = (p + 1) % count
			}
			if maxDist*maxDist <= eps*(dx*dx+dy*dy) {
				split = -1
			}
		}

		if split < 0 {
			dst = append(dst, startPt)
			continue
		}
		stack = append(stack, span{start: split, end: s.end}, span{start: s.start, end: split})
	}

	return removeStraightRuns(dst, eps)
}

// removeStraightRuns drops vertices that sit on an almost straight diagonal
// segment between their neighbours. The buffer is treated as a ring starting
// at its last element.
func removeStraightRuns(pts Contour, eps float64) Contour {
	count := len(pts)
	newCount := count
	if count == 0 {
		return pts
	}

	pos := count - 1
	read := func() Point {
		p := pts[pos]
		pos++
		if pos >= count {
			pos = 0
		}
		return p
	}

	startPt := read()
	wpos := pos
	pt := read()

	for i := 0; i < count && newCount > 2; i++ {
		endPt := read()

		dx := float64(endPt.X - startPt.X)
		dy := float64(endPt.Y - startPt.Y)
		dist := math.Abs(float64(pt.X-startPt.X)*dy - float64(pt.Y-startPt.Y)*dx)
		inner := float64(pt.X-startPt.X)*float64(endPt.X-pt.X) +
			float64(pt.Y-startPt.Y)*float64(endPt.Y-pt.Y)

		if dist*dist <= 0.5*eps*(dx*dx+dy*dy) && dx != 0 && dy != 0 && inner >= 0 {
			newCount--
			startPt = endPt
			pts[wpos] = startPt
			wpos++
			if wpos >= count {
				wpos = 0
			}
			pt = read()
			i++
			continue
		}

		startPt = pt
		pts[wpos] = startPt
		wpos++
		if wpos >= count {
			wpos = 0
		}
		pt = endPt
	}

	return pts[:newCount]
}
