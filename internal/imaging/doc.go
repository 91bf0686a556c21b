// Package imaging handles the raster side of leaf measurement: decoding
// scanned sheets, extracting the binary silhouette, and drawing the annotated
// overlay.
//
// All pixel coordinates in this package are 0-based with (0,0) at the top-left
// corner, X increasing rightward and Y increasing downward. Silhouette masks
// always start at (0,0), so contours traced from them can be drawn back onto
// the source image with RenderOverlay without any offset.
//
// # Silhouettes
//
// Silhouette converts to BT.601 luminance, finds Otsu's level with OtsuLevel
// and keeps every pixel at or below it: dark leaves and the dark reference
// square on light paper become foreground (255). Transparent regions are
// treated as paper.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless and never mutates its input image.
//
// # Error Handling
//
// Undecodable input, from bytes, base64 or a file, is reported as *DecodeError
// so callers can tell bad input from processing failures with errors.As.
package imaging
