package analysis

import (
	"fmt"
	"image"
	"log"
	"math"
	"runtime/debug"

	"github.com/ironsheep/leafmeter/internal/config"
	"github.com/ironsheep/leafmeter/internal/detection"
	"github.com/ironsheep/leafmeter/internal/geometry"
	"github.com/ironsheep/leafmeter/internal/imaging"
	"github.com/ironsheep/leafmeter/internal/morphometry"
)

// Logf receives diagnostic messages. It never writes to the result channel.
type Logf func(format string, v ...any)

// Analyzer runs the leaf measurement pipeline on single images.
//
// An Analyzer is immutable after New and safe for concurrent use; every call
// owns its intermediate data. The only shared component is the image cache
// used by AnalyzeFile, which is itself safe for concurrent use.
type Analyzer struct {
	cfg    config.Config
	tracer detection.Tracer
	cache  *imaging.ImageCache
	logf   Logf
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithLogf routes diagnostics to logf instead of the standard logger.
func WithLogf(logf Logf) Option {
	return func(a *Analyzer) {
		if logf != nil {
			a.logf = logf
		}
	}
}

// WithTracer overrides the contour tracer selected by the configuration.
func WithTracer(t detection.Tracer) Option {
	return func(a *Analyzer) {
		if t != nil {
			a.tracer = t
		}
	}
}

// WithCache shares an image cache between analyzers.
func WithCache(c *imaging.ImageCache) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.cache = c
		}
	}
}

// New creates an Analyzer from a validated configuration.
func New(cfg config.Config, opts ...Option) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &Analyzer{
		cfg:  cfg,
		logf: log.Printf,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.tracer == nil {
		t, err := detection.NewTracer(cfg.Pipeline.ContourBackend)
		if err != nil {
			return nil, fmt.Errorf("failed to create contour tracer: %w", err)
		}
		a.tracer = t
	}
	if a.cache == nil {
		a.cache = imaging.NewImageCache()
	}
	return a, nil
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() config.Config {
	return a.cfg
}

// Cache returns the image cache used by AnalyzeFile.
func (a *Analyzer) Cache() *imaging.ImageCache {
	return a.cache
}

// RunOptions are the per-image inputs of an analysis.
type RunOptions struct {
	// ReferenceArea is the real-world area of the reference square. Zero
	// selects the configured default.
	ReferenceArea float64

	// Overlay renders the annotated image. The configuration can also enable
	// it for every run.
	Overlay bool
}

// Report is the full outcome of one analysis run.
type Report struct {
	// Width and Height are the analysed image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// ReferenceArea is the real-world square area the scale was derived from.
	ReferenceArea float64 `json:"reference_area"`

	// OtsuLevel is the gray level the silhouette was cut at. Pixels at or
	// below it are foreground.
	OtsuLevel uint8 `json:"otsu_level"`

	// ForegroundFraction is the share of pixels in the silhouette mask.
	ForegroundFraction float64 `json:"foreground_fraction"`

	// Scale holds the calibration factors.
	Scale morphometry.ScaleFactors `json:"scale"`

	// Shapes lists every traced boundary with its classification.
	Shapes []detection.Shape `json:"shapes"`

	// Squares and Leaves are the classified boundaries in tracer order.
	Squares []geometry.Contour `json:"-"`
	Leaves  []geometry.Contour `json:"-"`

	// Result is the calibrated leaf measurement.
	Result morphometry.AnalysisResult `json:"result"`

	// Overlay is the annotated image, nil unless requested.
	Overlay *imaging.OverlayResult `json:"overlay,omitempty"`
}

// Analyze runs the pipeline on a decoded image.
//
// The steps are: silhouette extraction, contour tracing, classification,
// calibration against the first reference square, measurement and
// aggregation, and optionally overlay rendering. A missing reference square
// is not an error: the identity scale is used and a warning is logged.
//
// # Errors
//
//   - ErrInvalidReferenceArea for a negative, NaN or infinite reference area
//   - *UnexpectedError for any failure inside the pipeline, including panics
func (a *Analyzer) Analyze(img image.Image, opts RunOptions) (*Report, error) {
	return a.guard(func() (*Report, error) {
		return a.analyze(img, opts)
	})
}

// guard runs one analysis invocation, decoding included, and turns a panic
// anywhere inside it into an *UnexpectedError.
func (a *Analyzer) guard(run func() (*Report, error)) (report *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logf("analysis panic: %v\n%s", r, debug.Stack())
			report = nil
			err = &UnexpectedError{Err: fmt.Errorf("%v", r)}
		}
	}()
	return run()
}

func (a *Analyzer) analyze(img image.Image, opts RunOptions) (*Report, error) {
	realArea := opts.ReferenceArea
	if realArea == 0 {
		realArea = a.cfg.Pipeline.ReferenceArea
	}
	if math.IsNaN(realArea) || math.IsInf(realArea, 0) || realArea <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidReferenceArea, realArea)
	}
	if img == nil {
		return nil, &UnexpectedError{Err: imaging.ErrNilImage}
	}

	mask, level, err := imaging.Silhouette(img)
	if err != nil {
		return nil, &UnexpectedError{Err: err}
	}

	boundaries, err := a.tracer.Trace(mask)
	if err != nil {
		return nil, &UnexpectedError{Err: fmt.Errorf("failed to trace contours: %w", err)}
	}

	shapes := detection.ClassifyShapes(boundaries, a.cfg.Pipeline.Thresholds)
	var squares, leaves []geometry.Contour
	for _, s := range shapes {
		switch s.Class {
		case detection.ClassSquare:
			squares = append(squares, s.Boundary)
		case detection.ClassLeaf:
			leaves = append(leaves, s.Boundary)
		}
	}
	a.logf("found %d boundaries: %d squares, %d leaves", len(boundaries), len(squares), len(leaves))

	scale := morphometry.Calibrate(squares, realArea)
	if !scale.Calibrated {
		a.logf("warning: no reference square found, reporting pixel units")
	} else if len(squares) > 1 {
		a.logf("warning: %d reference squares found, calibrating with the first", len(squares))
	}

	result, err := morphometry.Aggregate(leaves, scale)
	if err != nil {
		return nil, &UnexpectedError{Err: err}
	}

	b := img.Bounds()
	report := &Report{
		Width:              b.Dx(),
		Height:             b.Dy(),
		ReferenceArea:      realArea,
		OtsuLevel:          level,
		ForegroundFraction: imaging.ForegroundFraction(mask),
		Scale:              scale,
		Shapes:             shapes,
		Squares:            squares,
		Leaves:             leaves,
		Result:             result,
	}

	if opts.Overlay || a.cfg.Pipeline.RenderOverlay {
		overlay, err := imaging.RenderOverlay(img, leaves, squares, a.cfg.Overlay)
		if err != nil {
			return nil, &UnexpectedError{Err: fmt.Errorf("failed to render overlay: %w", err)}
		}
		if report.Overlay, err = imaging.EncodePNG(overlay); err != nil {
			return nil, &UnexpectedError{Err: err}
		}
	}

	a.logf("measured %d leaves, total area %.4f", result.NumberOfLeaves, result.Aggregated.TotalArea)
	return report, nil
}

// AnalyzeBytes decodes an encoded image and analyses it.
func (a *Analyzer) AnalyzeBytes(data []byte, opts RunOptions) (*Report, error) {
	return a.guard(func() (*Report, error) {
		img, _, err := imaging.Decode(data)
		if err != nil {
			return nil, err
		}
		return a.analyze(img, opts)
	})
}

// AnalyzeBase64 decodes a base64 (or data URL) image and analyses it.
func (a *Analyzer) AnalyzeBase64(s string, opts RunOptions) (*Report, error) {
	return a.guard(func() (*Report, error) {
		img, _, err := imaging.DecodeBase64(s)
		if err != nil {
			return nil, err
		}
		return a.analyze(img, opts)
	})
}

// AnalyzeFile loads an image through the cache and analyses it.
func (a *Analyzer) AnalyzeFile(path string, opts RunOptions) (*Report, error) {
	return a.guard(func() (*Report, error) {
		img, err := a.cache.Load(path)
		if err != nil {
			return nil, err
		}
		return a.analyze(img, opts)
	})
}
