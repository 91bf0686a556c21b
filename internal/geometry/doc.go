// Package geometry provides the planar primitives used to measure traced
// silhouette boundaries.
//
// A [Contour] is an ordered, implicitly closed polygon of integer pixel
// coordinates as produced by border following. The package derives the
// quantities the shape classifier and the morphometry engine need:
//
//   - Perimeter and area (closed arc length, shoelace formula)
//   - Polygon simplification (Douglas-Peucker for closed curves)
//   - Convexity and convex hull
//   - Minimum-area rotated rectangle
//   - Centroid from polygon moments
//   - Bounding rectangles for integer and float32 point sets
//
// # Numeric Conventions
//
// The routines reproduce the numeric behaviour of the OpenCV functions of the
// same purpose (arcLength, contourArea, approxPolyDP, isContourConvex,
// minAreaRect, boundingRect). Segment lengths are accumulated from float32
// square roots, areas are computed exactly from integer coordinates, and the
// float32 bounding rectangle floors both extremes before adding one.
//
// # Coordinate System
//
// Coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
package geometry
