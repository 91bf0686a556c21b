package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/leafmeter/internal/geometry"
)

// OverlayOptions controls how the annotated analysis image is drawn.
type OverlayOptions struct {
	// LeafColor is the hex stroke color for leaf boundaries.
	LeafColor string `json:"leaf_color"`

	// SquareColor is the hex stroke color for reference square boundaries.
	SquareColor string `json:"square_color"`

	// Thickness is the stroke width in pixels.
	Thickness int `json:"thickness"`

	// Labels draws each leaf's 1-based number at its centroid.
	Labels bool `json:"labels"`

	// MaxDimension downsizes the result so neither side exceeds it.
	// Zero keeps the original size.
	MaxDimension int `json:"max_dimension"`
}

// DefaultOverlayOptions returns red leaves, green squares, 2 px strokes and
// numbered labels at full resolution.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		LeafColor:   "#FF0000",
		SquareColor: "#00FF00",
		Thickness:   2,
		Labels:      true,
	}
}

// OverlayResult contains the encoded annotated image.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// RenderOverlay draws leaf and square boundaries on a copy of img.
//
// Contour coordinates are relative to the top-left corner of img, as produced
// by tracing its Silhouette. Leaves are numbered in slice order starting at 1, matching the leaf ids of
// the analysis result. The source image is not modified.
func RenderOverlay(img image.Image, leaves, squares []geometry.Contour, opts OverlayOptions) (image.Image, error) {
	if img == nil {
		return nil, ErrNilImage
	}

	leafColor, err := ParseColor(opts.LeafColor)
	if err != nil {
		return nil, fmt.Errorf("invalid leaf color: %w", err)
	}
	squareColor, err := ParseColor(opts.SquareColor)
	if err != nil {
		return nil, fmt.Errorf("invalid square color: %w", err)
	}
	thickness := max(opts.Thickness, 1)

	canvas := clone.AsRGBA(img)
	for _, sq := range squares {
		strokeContour(canvas, sq, squareColor, thickness)
	}
	for _, leaf := range leaves {
		strokeContour(canvas, leaf, leafColor, thickness)
	}

	if opts.Labels {
		for i, leaf := range leaves {
			c := leaf.Centroid()
			drawLabel(canvas, image.Pt(int(c.X), int(c.Y)), fmt.Sprintf("%d", i+1), leafColor)
		}
	}

	var out image.Image = canvas
	if md := opts.MaxDimension; md > 0 {
		b := canvas.Bounds()
		if b.Dx() > md || b.Dy() > md {
			out = imaging.Fit(canvas, md, md, imaging.Lanczos)
		}
	}
	return out, nil
}

// EncodePNG encodes img as PNG and wraps it in an OverlayResult.
func EncodePNG(img image.Image) (*OverlayResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &OverlayResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// strokeContour draws the closed polygon c.
func strokeContour(dst *image.RGBA, c geometry.Contour, col color.Color, thickness int) {
	n := len(c)
	if n == 0 {
		return
	}
	if n == 1 {
		stamp(dst, c[0].X, c[0].Y, col, thickness)
		return
	}
	for i := 0; i < n; i++ {
		a, b := c[i], c[(i+1)%n]
		drawLine(dst, a.X, a.Y, b.X, b.Y, col, thickness)
	}
}

// drawLine rasterises a segment with Bresenham's algorithm, stamping a square
// brush of the given thickness at every step.
func drawLine(dst *image.RGBA, x0, y0, x1, y1 int, col color.Color, thickness int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		stamp(dst, x0, y0, col, thickness)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// stamp paints a square brush at (x, y), relative to the top-left of dst.
func stamp(dst *image.RGBA, x, y int, col color.Color, thickness int) {
	lo := -(thickness - 1) / 2
	hi := thickness / 2
	b := dst.Bounds()
	for oy := lo; oy <= hi; oy++ {
		for ox := lo; ox <= hi; ox++ {
			p := image.Pt(x+ox, y+oy).Add(b.Min)
			if p.In(b) {
				dst.Set(p.X, p.Y, col)
			}
		}
	}
}

// drawLabel writes text centred on at, over a small filled box so the number
// stays readable on top of the leaf.
func drawLabel(dst *image.RGBA, at image.Point, text string, bg color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	off := dst.Bounds().Min
	box := image.Rect(at.X-width/2-2, at.Y-height/2-1, at.X+width/2+3, at.Y+height/2+2).Add(off)
	draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(contrastText(bg)),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(off.X + at.X - width/2),
			Y: fixed.I(off.Y+at.Y-height/2) + metrics.Ascent,
		},
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
