package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/leafmeter/internal/geometry"
)

// Tracer extracts boundary polygons from a binary mask.
//
// Any non-zero mask pixel is foreground. Implementations return every border
// (outer borders and hole borders alike) as a flat list, with runs of
// collinear border pixels compressed to their end points.
type Tracer interface {
	Trace(mask *image.Gray) ([]geometry.Contour, error)
}

// Tracer backend names accepted by NewTracer.
const (
	BackendSuzuki = "suzuki"
	BackendOpenCV = "opencv"
)

// ErrUnknownBackend is returned by NewTracer for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown contour backend")

// ErrBackendUnavailable is returned when a backend is recognised but was not
// compiled into this binary.
var ErrBackendUnavailable = errors.New("contour backend not available in this build")

// NewTracer returns the contour tracer registered under name. An empty name
// selects the built-in Suzuki-Abe tracer.
func NewTracer(name string) (Tracer, error) {
	switch name {
	case "", BackendSuzuki:
		return SuzukiTracer{}, nil
	case BackendOpenCV:
		return openCVTracer()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Freeman chain directions, counter-clockwise from "right" in image
// coordinates (y grows downward).
var chainDeltas = [8]image.Point{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

// Pixel labels in the tracing buffer.
const (
	pixelForeground int8 = 1
	pixelVisited    int8 = 2
	pixelRightEdge  int8 = 2 | -128
)

// SuzukiTracer implements the Suzuki-Abe border following algorithm
// ("Topological Structural Analysis of Digitized Binary Images by Border
// Following", 1985) in list mode with simple chain compression.
//
// The mask is surrounded by a one pixel background frame, so foreground
// touching the image edge still produces closed borders. Borders are returned
// in reverse discovery order, matching the ordering of OpenCV's list mode.
type SuzukiTracer struct{}

// Trace implements Tracer.
func (SuzukiTracer) Trace(mask *image.Gray) ([]geometry.Contour, error) {
	if mask == nil {
		return nil, errors.New("nil mask")
	}

	b := mask.Bounds()
	w, h := b.Dx()+2, b.Dy()+2
	buf := make([]int8, w*h)
	for y := 0; y < b.Dy(); y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x, v := range row {
			if v != 0 {
				buf[(y+1)*w+x+1] = pixelForeground
			}
		}
	}

	f := follower{buf: buf, stride: w}
	for i, d := range chainDeltas {
		f.deltas[i] = d.Y*w + d.X
		f.deltas[i+8] = f.deltas[i]
	}

	// Offset maps padded buffer coordinates back into mask coordinates.
	offset := image.Pt(b.Min.X-1, b.Min.Y-1)

	var found []geometry.Contour
	for y := 1; y < h-1; y++ {
		prev := int8(0)
		for x := 1; x < w-1; x++ {
			p := buf[y*w+x]
			if p == prev {
				continue
			}

			hole := false
			if !(prev == 0 && p == pixelForeground) {
				// A hole border starts at a labelled pixel followed by background.
				if p != 0 || prev < 1 {
					prev = p
					continue
				}
				hole = true
			}

			ox := x
			if hole {
				ox = x - 1
			}
			found = append(found, f.follow(image.Pt(ox, y), hole, offset))

			prev = buf[y*w+x]
		}
	}

	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found, nil
}

// follower walks one border through a labelled buffer.
type follower struct {
	buf    []int8
	stride int
	deltas [16]int
}

// follow traces the border starting at origin and labels its pixels.
// Outer borders begin their search towards the left neighbour, hole borders
// towards the right one; both sides are background by construction.
func (f *follower) follow(origin image.Point, hole bool, offset image.Point) geometry.Contour {
	i0 := origin.Y*f.stride + origin.X
	pt := origin

	s := 4
	if hole {
		s = 0
	}
	sEnd := s

	// Clockwise search for the first non-zero neighbour.
	var i1 int
	for {
		s = (s - 1) & 7
		i1 = i0 + f.deltas[s]
		if f.buf[i1] != 0 || s == sEnd {
			break
		}
	}

	if s == sEnd {
		f.buf[i0] = pixelRightEdge
		return geometry.Contour{{X: pt.X + offset.X, Y: pt.Y + offset.Y}}
	}

	var contour geometry.Contour
	i3 := i0
	prevS := s ^ 4
	for {
		sEnd = s

		// Counter-clockwise search for the next border pixel.
		var i4 int
		for s < 15 {
			s++
			i4 = i3 + f.deltas[s]
			if f.buf[i4] != 0 {
				break
			}
		}
		s &= 7

		if uint(s-1) < uint(sEnd) {
			f.buf[i3] = pixelRightEdge
		} else if f.buf[i3] == pixelForeground {
			f.buf[i3] = pixelVisited
		}

		if s != prevS {
			contour = append(contour, geometry.Point{X: pt.X + offset.X, Y: pt.Y + offset.Y})
			prevS = s
		}
		pt = pt.Add(chainDeltas[s])

		if i4 == i0 && i3 == i1 {
			break
		}
		i3 = i4
		s = (s + 4) & 7
	}
	return contour
}
