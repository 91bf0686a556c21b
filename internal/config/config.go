// Package config holds the runtime configuration of leafmeter: classifier
// thresholds, calibration defaults, overlay styling and server settings.
//
// Configuration is resolved in three layers, later layers winning:
//
//  1. Built-in defaults from Default()
//  2. An optional JSON file passed to Load (fields omitted from the file keep
//     their defaults, so partial files are safe)
//  3. LEAFMETER_* environment variables applied by ApplyEnv
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/leafmeter/internal/detection"
	"github.com/ironsheep/leafmeter/internal/imaging"
)

// Config is the root configuration.
type Config struct {
	Pipeline PipelineConfig         `json:"pipeline"`
	Overlay  imaging.OverlayOptions `json:"overlay"`
	Server   ServerConfig           `json:"server"`
}

// PipelineConfig controls classification, calibration and result formatting.
type PipelineConfig struct {
	// Thresholds are the shape classifier parameters.
	Thresholds detection.Thresholds `json:"thresholds"`

	// ContourBackend names the tracer ("suzuki" or "opencv").
	ContourBackend string `json:"contour_backend"`

	// ReferenceArea is the real-world area of the reference square used when
	// a request does not provide one.
	ReferenceArea float64 `json:"reference_area"`

	// RoundLeafMetrics rounds per-leaf values in output records.
	RoundLeafMetrics bool `json:"round_leaf_metrics"`

	// IncludeCentroids adds each leaf's pixel centroid to output records.
	IncludeCentroids bool `json:"include_centroids"`

	// RenderOverlay attaches the annotated image to every result.
	RenderOverlay bool `json:"render_overlay"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string `json:"addr"`

	// MaxUploadBytes caps request bodies.
	MaxUploadBytes int64 `json:"max_upload_bytes"`

	// AllowedOrigin is sent as Access-Control-Allow-Origin.
	AllowedOrigin string `json:"allowed_origin"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Pipeline: PipelineConfig{
			Thresholds:       detection.DefaultThresholds(),
			ContourBackend:   detection.BackendSuzuki,
			ReferenceArea:    1.0,
			RoundLeafMetrics: true,
		},
		Overlay: imaging.DefaultOverlayOptions(),
		Server: ServerConfig{
			Addr:           ":5000",
			MaxUploadBytes: 32 << 20,
			AllowedOrigin:  "*",
		},
	}
}

const maxFileSize = 1 << 20

// Load reads a JSON configuration file on top of the defaults.
// The file must have a .json extension and be at most 1MB.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LEAFMETER_* environment variables.
//
// Recognised variables:
//   - LEAFMETER_REFERENCE_AREA: Pipeline.ReferenceArea
//   - LEAFMETER_MIN_AREA / LEAFMETER_MAX_AREA: area thresholds
//   - LEAFMETER_MAX_COSINE: square corner tolerance
//   - LEAFMETER_CONTOUR_BACKEND: tracer name
//   - LEAFMETER_ROUND: Pipeline.RoundLeafMetrics
//   - LEAFMETER_OVERLAY: Pipeline.RenderOverlay
//   - LEAFMETER_ADDR: Server.Addr
//   - LEAFMETER_ALLOWED_ORIGIN: Server.AllowedOrigin
func (c *Config) ApplyEnv() error {
	floatsByKey := map[string]*float64{
		"LEAFMETER_REFERENCE_AREA": &c.Pipeline.ReferenceArea,
		"LEAFMETER_MIN_AREA":       &c.Pipeline.Thresholds.MinArea,
		"LEAFMETER_MAX_AREA":       &c.Pipeline.Thresholds.MaxArea,
		"LEAFMETER_MAX_COSINE":     &c.Pipeline.Thresholds.MaxCosine,
	}
	for key, dst := range floatsByKey {
		if v := getEnv(key, ""); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = f
		}
	}

	boolsByKey := map[string]*bool{
		"LEAFMETER_ROUND":   &c.Pipeline.RoundLeafMetrics,
		"LEAFMETER_OVERLAY": &c.Pipeline.RenderOverlay,
	}
	for key, dst := range boolsByKey {
		if v := getEnv(key, ""); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = b
		}
	}

	c.Pipeline.ContourBackend = getEnv("LEAFMETER_CONTOUR_BACKEND", c.Pipeline.ContourBackend)
	c.Server.Addr = getEnv("LEAFMETER_ADDR", c.Server.Addr)
	c.Server.AllowedOrigin = getEnv("LEAFMETER_ALLOWED_ORIGIN", c.Server.AllowedOrigin)

	return c.Validate()
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	th := c.Pipeline.Thresholds
	if th.MinArea < 0 {
		return fmt.Errorf("min_area must be non-negative, got %v", th.MinArea)
	}
	if th.MaxArea <= th.MinArea {
		return fmt.Errorf("max_area (%v) must exceed min_area (%v)", th.MaxArea, th.MinArea)
	}
	if th.MaxCosine <= 0 || th.MaxCosine > 1 {
		return fmt.Errorf("max_cosine must be in (0, 1], got %v", th.MaxCosine)
	}
	if th.SimplifyTolerance <= 0 {
		return fmt.Errorf("simplify_tolerance must be positive, got %v", th.SimplifyTolerance)
	}
	if err := ValidateReferenceArea(c.Pipeline.ReferenceArea); err != nil {
		return err
	}
	if _, err := imaging.ParseColor(c.Overlay.LeafColor); err != nil {
		return fmt.Errorf("overlay leaf_color: %w", err)
	}
	if _, err := imaging.ParseColor(c.Overlay.SquareColor); err != nil {
		return fmt.Errorf("overlay square_color: %w", err)
	}
	if c.Overlay.Thickness < 1 {
		return fmt.Errorf("overlay thickness must be at least 1, got %d", c.Overlay.Thickness)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}

// ValidateReferenceArea rejects reference areas that cannot produce a
// positive scale: zero, negative, NaN or infinite values.
func ValidateReferenceArea(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
		return fmt.Errorf("reference_area must be a positive finite number, got %v", a)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
