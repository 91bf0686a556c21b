// Package morphometry turns classified leaf boundaries into calibrated
// measurements.
//
// The package has three stages:
//
//   - [Calibrate] derives pixel-to-real-world scale factors from the first
//     reference square
//   - [Measure] computes the orientation-corrected width and length of one
//     leaf in pixels
//   - [Aggregate] applies the scale factors to every leaf and summarises the
//     results with totals, means and population standard deviations
//
// # Units
//
// Areas scale with the area factor (realArea / squarePixelArea) and lengths
// with the linear factor (sqrt(realArea) / squareSideInPixels). Both are 1.0
// when no reference square was found, in which case every metric stays in
// pixels.
//
// # Orientation
//
// Width and length are measured along the leaf's principal axes: the boundary
// is centred on its mean point, projected onto the eigenvectors of its
// covariance, and the axis-aligned box of the projection gives the extents.
// Boundaries with fewer than [MinPCAPoints] vertices use the minimum-area
// rotated rectangle instead. Width is always the shorter extent.
package morphometry
