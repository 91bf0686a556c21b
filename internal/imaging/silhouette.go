package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/ernyoke/imger/histogram"
	"github.com/ernyoke/imger/threshold"
)

// ErrNilImage is returned when a nil image is passed for processing.
var ErrNilImage = errors.New("nil image")

// Grayscale converts img to an 8-bit luminance image with the BT.601 weights
// (0.299 R + 0.587 G + 0.114 B). Translucent pixels are composited onto white
// paper first so transparent backgrounds do not turn into dark foreground.
//
// The result always has bounds starting at (0, 0).
func Grayscale(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, ErrNilImage
	}

	b := img.Bounds()
	src := img
	if o, ok := img.(interface{ Opaque() bool }); !ok || !o.Opaque() {
		paper := imaging.New(b.Dx(), b.Dy(), color.White)
		src = imaging.Overlay(paper, img, image.Pt(0, 0), 1.0)
	}

	lum := imaging.Grayscale(src)
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := lum.Pix[y*lum.Stride : y*lum.Stride+4*b.Dx()]
		out := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x := range out {
			out[x] = row[4*x]
		}
	}
	return gray, nil
}

// Silhouette extracts the binary foreground mask of a scanned sheet and
// returns it together with the Otsu level it was cut at.
//
// The image is converted to grayscale and thresholded in inverted binary
// mode: pixels at or below the level become 255 (foreground), lighter pixels
// become 0. Dark leaves and the dark reference square on light paper
// therefore end up as foreground, including on a pure two-tone scan where
// the ink sits exactly on the level.
//
// The mask has bounds starting at (0, 0) and the size of img.
func Silhouette(img image.Image) (*image.Gray, uint8, error) {
	gray, err := Grayscale(img)
	if err != nil {
		return nil, 0, err
	}

	level := OtsuLevel(gray)
	if level == 255 {
		mask := image.NewGray(gray.Bounds())
		for i := range mask.Pix {
			mask.Pix[i] = 255
		}
		return mask, level, nil
	}

	// Threshold keeps pixel < t as foreground, so t+1 keeps the level itself.
	mask, err := threshold.Threshold(gray, level+1, threshold.ThreshBinaryInv)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to threshold image: %w", err)
	}
	return mask, level, nil
}

// OtsuLevel returns the gray level that maximises the between-class variance
// of gray, where the dark class holds every pixel at or below the level. A
// single-tone image yields 0.
func OtsuLevel(gray *image.Gray) uint8 {
	hist := histogram.HistogramGray(gray)
	size := gray.Bounds().Size()
	total := uint64(size.X * size.Y)

	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i) * float64(n)
	}

	var (
		sumDark    float64
		weightDark uint64
		best       float64
		level      uint8
	)
	for i, n := range hist {
		weightDark += n
		if weightDark == 0 {
			continue
		}
		weightLight := total - weightDark
		if weightLight == 0 {
			break
		}
		sumDark += float64(i) * float64(n)

		meanDark := sumDark / float64(weightDark)
		meanLight := (sumAll - sumDark) / float64(weightLight)
		d := meanDark - meanLight
		variance := float64(weightDark) * float64(weightLight) * d * d
		if variance > best {
			best = variance
			level = uint8(i)
		}
	}
	return level
}

// ForegroundFraction returns the share of non-zero pixels in mask, in [0, 1].
func ForegroundFraction(mask *image.Gray) float64 {
	b := mask.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	fg := 0
	for y := 0; y < b.Dy(); y++ {
		for _, v := range mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()] {
			if v != 0 {
				fg++
			}
		}
	}
	return float64(fg) / float64(total)
}
