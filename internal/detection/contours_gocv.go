//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/leafmeter/internal/geometry"
)

// GoCVTracer delegates border following to OpenCV's findContours through
// gocv, using list retrieval and simple chain approximation.
type GoCVTracer struct{}

func openCVTracer() (Tracer, error) {
	return GoCVTracer{}, nil
}

// Trace implements Tracer.
func (GoCVTracer) Trace(mask *image.Gray) ([]geometry.Contour, error) {
	if mask == nil {
		return nil, fmt.Errorf("nil mask")
	}

	b := mask.Bounds()
	packed := make([]byte, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		copy(packed[y*b.Dx():(y+1)*b.Dx()], mask.Pix[y*mask.Stride:y*mask.Stride+b.Dx()])
	}

	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, packed)
	if err != nil {
		return nil, fmt.Errorf("failed to create mat: %w", err)
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	result := make([]geometry.Contour, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := geometry.FromImagePoints(contours.At(i).ToPoints())
		for j := range c {
			c[j].X += b.Min.X
			c[j].Y += b.Min.Y
		}
		result = append(result, c)
	}
	return result, nil
}
