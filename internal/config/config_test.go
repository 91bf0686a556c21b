package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/leafmeter/internal/detection"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if cfg.Pipeline.Thresholds != detection.DefaultThresholds() {
		t.Errorf("default thresholds = %+v", cfg.Pipeline.Thresholds)
	}
	if cfg.Pipeline.ReferenceArea != 1.0 {
		t.Errorf("default reference area = %v, want 1.0", cfg.Pipeline.ReferenceArea)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := writeFile(t, "leafmeter.json", `{
		"pipeline": {"reference_area": 4.0, "thresholds": {"min_area": 500}},
		"overlay": {"leaf_color": "#0000FF"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Pipeline.ReferenceArea != 4.0 {
		t.Errorf("ReferenceArea = %v, want 4.0", cfg.Pipeline.ReferenceArea)
	}
	if cfg.Pipeline.Thresholds.MinArea != 500 {
		t.Errorf("MinArea = %v, want 500", cfg.Pipeline.Thresholds.MinArea)
	}
	// Omitted fields keep their defaults.
	if cfg.Pipeline.Thresholds.MaxCosine != 0.3 {
		t.Errorf("MaxCosine = %v, want default 0.3", cfg.Pipeline.Thresholds.MaxCosine)
	}
	if cfg.Overlay.LeafColor != "#0000FF" || cfg.Overlay.SquareColor != "#00FF00" {
		t.Errorf("overlay colors = %q / %q", cfg.Overlay.LeafColor, cfg.Overlay.SquareColor)
	}
	if !cfg.Pipeline.RoundLeafMetrics {
		t.Error("RoundLeafMetrics default lost")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{"wrong extension", func(t *testing.T) string { return writeFile(t, "cfg.yaml", "{}") }, ".json extension"},
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.json") }, "stat"},
		{"bad json", func(t *testing.T) string { return writeFile(t, "bad.json", "{") }, "parse"},
		{"invalid values", func(t *testing.T) string {
			return writeFile(t, "neg.json", `{"pipeline": {"reference_area": -1}}`)
		}, "reference_area"},
		{"too large", func(t *testing.T) string {
			return writeFile(t, "big.json", `{"x":"`+strings.Repeat("a", maxFileSize)+`"}`)
		}, "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LEAFMETER_REFERENCE_AREA", "2.5")
	t.Setenv("LEAFMETER_MAX_COSINE", "0.25")
	t.Setenv("LEAFMETER_OVERLAY", "true")
	t.Setenv("LEAFMETER_ADDR", ":8080")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Pipeline.ReferenceArea != 2.5 {
		t.Errorf("ReferenceArea = %v, want 2.5", cfg.Pipeline.ReferenceArea)
	}
	if cfg.Pipeline.Thresholds.MaxCosine != 0.25 {
		t.Errorf("MaxCosine = %v, want 0.25", cfg.Pipeline.Thresholds.MaxCosine)
	}
	if !cfg.Pipeline.RenderOverlay {
		t.Error("RenderOverlay should be enabled")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Pipeline.ContourBackend != detection.BackendSuzuki {
		t.Errorf("ContourBackend = %q, want default", cfg.Pipeline.ContourBackend)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("LEAFMETER_MIN_AREA", "lots")
	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("ApplyEnv should reject a non-numeric LEAFMETER_MIN_AREA")
	}
}

func TestValidateReferenceArea(t *testing.T) {
	for _, a := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := ValidateReferenceArea(a); err == nil {
			t.Errorf("ValidateReferenceArea(%v) should fail", a)
		}
	}
	if err := ValidateReferenceArea(0.25); err != nil {
		t.Errorf("ValidateReferenceArea(0.25) failed: %v", err)
	}
}
