// Package detection finds and classifies the silhouettes in a scanned leaf
// sheet.
//
// Detection is split in two stages: tracing the borders of a binary mask into
// polygons, then deciding for every polygon whether it is the reference
// square, a leaf, or noise.
//
// # Contour Tracing
//
// A [Tracer] turns a binary mask into boundary polygons. Two backends exist:
//
//   - [SuzukiTracer]: a pure Go Suzuki-Abe border follower (default)
//   - GoCVTracer: OpenCV's findContours through gocv, compiled in with the
//     "gocv" build tag
//
// Both return every border of the mask (outer borders and hole borders) in a
// flat list, with straight runs compressed to their end points. Use
// [NewTracer] to pick a backend by name.
//
// # Shape Classification
//
// [Classify] applies a fixed sequence of geometric tests to each polygon:
//
//  1. Area filter: the enclosed area must lie strictly between
//     Thresholds.MinArea and Thresholds.MaxArea
//  2. Polygon approximation with a tolerance proportional to the perimeter
//  3. Square test: exactly four vertices, strictly convex, and every corner
//     cosine below Thresholds.MaxCosine
//
// Polygons that pass the area filter but fail the square test are leaves.
// Classification never reorders its input; the first square in tracer order
// becomes the calibration reference downstream.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
package detection
