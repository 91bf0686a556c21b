package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// newSheet creates a white w x h RGBA image with the given rectangles painted
// in ink.
func newSheet(w, h int, ink color.Color, rects ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, ink)
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// writeSheet writes img as PNG into a temp dir and returns its path.
func writeSheet(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.png")
	if err := os.WriteFile(path, encodePNG(t, img), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, newSheet(40, 30, color.Black))

	img, format, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("dimensions = %dx%d, want 40x30", b.Dx(), b.Dy())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrEmptyImage},
		{"garbage", []byte("not an image"), nil},
		{"truncated png", encodePNG(t, newSheet(10, 10, color.Black))[:20], nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Decode error = %v, want *DecodeError", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeBase64(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(encodePNG(t, newSheet(8, 6, color.Black)))

	for _, in := range []string{raw, "data:image/png;base64," + raw, "  " + raw + "\n"} {
		img, _, err := DecodeBase64(in)
		if err != nil {
			t.Fatalf("DecodeBase64 failed: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
			t.Errorf("dimensions = %dx%d, want 8x6", b.Dx(), b.Dy())
		}
	}

	_, _, err := DecodeBase64("%%% not base64 %%%")
	var de *DecodeError
	if !errors.As(err, &de) || de.Source != "base64" {
		t.Errorf("DecodeBase64 error = %v, want *DecodeError from base64", err)
	}

	_, _, err = DecodeBase64(base64.StdEncoding.EncodeToString([]byte("plain text")))
	if !errors.As(err, &de) || de.Source != "base64" {
		t.Errorf("DecodeBase64 error = %v, want *DecodeError from base64", err)
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	path := writeSheet(t, newSheet(100, 80, color.Black))

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img1.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x80", b.Dx(), b.Dy())
	}

	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	cache := NewImageCache()

	_, err := cache.Load("/nonexistent/path/to/sheet.png")
	var de *DecodeError
	if !errors.As(err, &de) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load error = %v, want DecodeError wrapping ErrNotExist", err)
	}

	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := cache.Load(path); !errors.As(err, &de) {
		t.Errorf("Load error = %v, want *DecodeError", err)
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads should not be cached, Len() = %d", cache.Len())
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache()
	a := writeSheet(t, newSheet(10, 10, color.Black))
	b := writeSheet(t, newSheet(12, 12, color.Black))

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(a)
	cache.Evict("/nonexistent/path")
	if cache.Len() != 1 {
		t.Errorf("after Evict Len() = %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear Len() = %d, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	path := writeSheet(t, newSheet(50, 50, color.Gray{Y: 128}))

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}
