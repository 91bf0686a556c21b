package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder (flatbed scanners)
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DecodeError reports input that could not be turned into a raster image:
// unreadable files, invalid base64, or bytes in no registered image format.
type DecodeError struct {
	// Source describes where the data came from ("file", "bytes", "base64").
	Source string

	// Err is the underlying cause.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image from %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrEmptyImage is wrapped in a DecodeError when the input holds no data or
// decodes to an image without pixels.
var ErrEmptyImage = errors.New("empty image")

// Decode decodes raw encoded image bytes (PNG, JPEG, GIF, BMP, TIFF or WebP).
//
// Returns:
//   - image.Image: The decoded image.
//   - string: The format name reported by the decoder (e.g. "png").
//   - error: A *DecodeError if the data is empty or not a supported image.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &DecodeError{Source: "bytes", Err: ErrEmptyImage}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Source: "bytes", Err: err}
	}
	if img.Bounds().Empty() {
		return nil, "", &DecodeError{Source: "bytes", Err: ErrEmptyImage}
	}
	return img, format, nil
}

// DecodeBase64 decodes a base64 encoded image. A data URL prefix such as
// "data:image/png;base64," is accepted and stripped.
func DecodeBase64(s string) (image.Image, string, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", &DecodeError{Source: "base64", Err: err}
	}

	img, format, err := Decode(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Source = "base64"
		}
		return nil, "", err
	}
	return img, format, nil
}

// ImageCache provides thread-safe caching of decoded images keyed by file
// path.
//
// The analysis pipeline never mutates a decoded image, so cached images can be
// shared across concurrent analyses.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Batch runs over many scans should Evict each file once it has been analysed.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/scans/sheet-01.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Evict("/scans/sheet-01.png")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) result in separate cache entries.
//
// # Errors
//
//   - Returns a *DecodeError if the file cannot be read
//   - Returns a *DecodeError if the file is not a supported image
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Source: "file", Err: err}
	}

	img, _, err := Decode(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Source = "file " + path
		}
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. Unknown paths
// are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
