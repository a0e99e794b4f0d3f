package renderer

import (
	"image"

	"github.com/ByLCY/memeforge/layout"
)

// Surface is the export raster. It keeps its last content until a compositing
// pass completes, so a pass over an image that is not ready leaves it as is.
type Surface struct {
	img     *image.RGBA
	tainted bool
	layout  *layout.Result
}

// NewSurface returns an empty surface.
func NewSurface() *Surface { return &Surface{} }

// Replace installs the result of a finished compositing pass.
func (s *Surface) Replace(img *image.RGBA, tainted bool, res *layout.Result) {
	s.img = img
	s.tainted = tainted
	s.layout = res
}

// Image 返回当前画布内容；尚未合成时返回 nil。
func (s *Surface) Image() image.Image {
	if s == nil || s.img == nil {
		return nil
	}
	return s.img
}

// RGBA exposes the backing raster, nil before the first pass.
func (s *Surface) RGBA() *image.RGBA {
	if s == nil {
		return nil
	}
	return s.img
}

// Tainted reports whether the current content includes non-exportable pixels.
func (s *Surface) Tainted() bool { return s != nil && s.tainted }

// Layout returns the layout of the last pass.
func (s *Surface) Layout() *layout.Result {
	if s == nil {
		return nil
	}
	return s.layout
}

// HitTest returns the topmost box whose painted text covers the point given
// as fractions of the image size. Later boxes are on top.
func (s *Surface) HitTest(fx, fy float64) (int, bool) {
	res := s.Layout()
	if res == nil {
		return 0, false
	}
	x, y := fx*res.Frame.Width, fy*res.Frame.Height
	for i := len(res.Boxes) - 1; i >= 0; i-- {
		if res.Boxes[i].Bounds.Contains(x, y) {
			return res.Boxes[i].ID, true
		}
	}
	return 0, false
}
