package renderer

import (
	"image"
	"testing"

	"github.com/ByLCY/memeforge/layout"
)

func TestSurfaceStartsEmpty(t *testing.T) {
	s := NewSurface()
	if s.Image() != nil || s.RGBA() != nil || s.Tainted() || s.Layout() != nil {
		t.Fatalf("new surface should be empty")
	}
	var nilSurface *Surface
	if nilSurface.Image() != nil || nilSurface.Tainted() {
		t.Fatalf("nil surface should behave as empty")
	}
}

func TestSurfaceHitTestPrefersTopmost(t *testing.T) {
	s := NewSurface()
	s.Replace(image.NewRGBA(image.Rect(0, 0, 200, 100)), false, &layout.Result{
		Frame: layout.Frame{Width: 100, Height: 50},
		Scale: layout.ExportScale,
		Boxes: []layout.BoxLayout{
			{ID: 1, Bounds: layout.Rect{X0: 10, Y0: 10, X1: 90, Y1: 40}},
			{ID: 2, Bounds: layout.Rect{X0: 40, Y0: 20, X1: 60, Y1: 30}},
		},
	})
	if id, ok := s.HitTest(0.5, 0.5); !ok || id != 2 {
		t.Fatalf("expected box 2 on top, got %d %v", id, ok)
	}
	if id, ok := s.HitTest(0.15, 0.3); !ok || id != 1 {
		t.Fatalf("expected box 1, got %d %v", id, ok)
	}
	if _, ok := s.HitTest(0.01, 0.01); ok {
		t.Fatalf("expected miss outside every box")
	}
}
