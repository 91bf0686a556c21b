// Package analysis runs the leaf measurement pipeline on one image.
//
// An Analyzer chains the pieces of the other internal packages:
//
//	image ─► imaging.Silhouette ─► detection.Tracer ─► detection.ClassifyShapes
//	      ─► morphometry.Calibrate ─► morphometry.Aggregate ─► Report
//
// A Report holds everything the run found; Report.Record converts it into the
// JSON record returned by the CLI, the HTTP API and the MCP tools. Failures are
// reported as *DecodeError, ErrInvalidReferenceArea or *UnexpectedError, and
// ErrorRecord is their JSON form.
//
// Runs are independent. An Analyzer can be shared between goroutines.
package analysis
