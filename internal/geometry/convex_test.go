package geometry

import (
	"math"
	"testing"
)

func TestIsConvex(t *testing.T) {
	tests := []struct {
		name    string
		contour Contour
		want    bool
	}{
		{"square", rect(0, 0, 10, 10), true},
		{"square reversed", Contour{Pt(10, 0), Pt(10, 10), Pt(0, 10), Pt(0, 0)}, true},
		{"triangle", Contour{Pt(0, 0), Pt(10, 0), Pt(5, 8)}, true},
		{"arrow head", Contour{Pt(0, 0), Pt(10, 5), Pt(0, 10), Pt(3, 5)}, false},
		{"collinear vertex", Contour{Pt(0, 0), Pt(5, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}, false},
		{"two points", Contour{Pt(0, 0), Pt(1, 1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.contour.IsConvex(); got != tt.want {
				t.Errorf("IsConvex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvexHull(t *testing.T) {
	c := Contour{Pt(0, 0), Pt(5, 5), Pt(10, 0), Pt(10, 10), Pt(0, 10), Pt(5, 2)}
	hull := c.ConvexHull()

	if len(hull) != 4 {
		t.Fatalf("ConvexHull returned %d points, want 4: %v", len(hull), hull)
	}
	if hull.Area() != 100 {
		t.Errorf("hull area = %v, want 100", hull.Area())
	}
	if !hull.IsConvex() {
		t.Error("hull should be convex")
	}
}

func TestMinAreaRect(t *testing.T) {
	t.Run("axis aligned", func(t *testing.T) {
		r := rect(0, 0, 40, 10).MinAreaRect()
		w, h := math.Min(r.Width, r.Height), math.Max(r.Width, r.Height)
		if math.Abs(w-10) > 1e-9 || math.Abs(h-40) > 1e-9 {
			t.Errorf("MinAreaRect sides = %v x %v, want 10 x 40", w, h)
		}
		if math.Abs(r.Center.X-20) > 1e-9 || math.Abs(r.Center.Y-5) > 1e-9 {
			t.Errorf("MinAreaRect center = %+v, want (20, 5)", r.Center)
		}
	})

	t.Run("rotated 3-4-5", func(t *testing.T) {
		// Rectangle with sides 5 (along (3,4)) and 10 (along (-8,6)).
		c := Contour{Pt(0, 0), Pt(3, 4), Pt(-5, 10), Pt(-8, 6)}
		r := c.MinAreaRect()
		w, h := math.Min(r.Width, r.Height), math.Max(r.Width, r.Height)
		if math.Abs(w-5) > 1e-9 || math.Abs(h-10) > 1e-9 {
			t.Errorf("MinAreaRect sides = %v x %v, want 5 x 10", w, h)
		}
	})

	t.Run("segment", func(t *testing.T) {
		r := Contour{Pt(0, 0), Pt(6, 8)}.MinAreaRect()
		if r.Width != 10 || r.Height != 0 {
			t.Errorf("MinAreaRect of segment = %v x %v, want 10 x 0", r.Width, r.Height)
		}
	})

	t.Run("point", func(t *testing.T) {
		r := Contour{Pt(3, 3), Pt(3, 3)}.MinAreaRect()
		if r.Width != 0 || r.Height != 0 || r.Center.X != 3 {
			t.Errorf("MinAreaRect of point = %+v", r)
		}
	})
}
