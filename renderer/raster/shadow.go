package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ByLCY/memeforge/logging"
	"github.com/ByLCY/memeforge/style"
)

// castShadow paints the blurred silhouette of the next draw call onto dst.
// Blur and offset are in device pixels and ignore the scale transform; the
// Gaussian sigma is half the blur radius.
func castShadow(dst *image.RGBA, scale float64, sh style.Shadow, p *glyphPath) {
	if !sh.Enabled() || p.empty {
		return
	}
	sigma := sh.Blur / 2
	pad := math.Ceil(3*sigma) + 2
	area := image.Rect(
		int(math.Floor(p.bounds.X0*scale-pad)),
		int(math.Floor(p.bounds.Y0*scale-pad)),
		int(math.Ceil(p.bounds.X1*scale+pad)),
		int(math.Ceil(p.bounds.Y1*scale+pad)),
	)
	// 只保留偏移后仍可能落在画布内的区域
	limit := dst.Bounds().Inset(-int(pad)).Sub(image.Pt(int(math.Round(sh.OffsetX)), int(math.Round(sh.OffsetY))))
	area = area.Intersect(limit)
	if area.Empty() {
		return
	}

	layer := gg.NewContext(area.Dx(), area.Dy())
	layer.Translate(-float64(area.Min.X), -float64(area.Min.Y))
	layer.Scale(scale, scale)
	fill(layer, p, sh.Color)

	var silhouette image.Image = layer.Image()
	if sigma > 0 {
		silhouette = imaging.Blur(silhouette, sigma)
	}
	target := area.Add(image.Pt(int(math.Round(sh.OffsetX)), int(math.Round(sh.OffsetY))))
	draw.Draw(dst, target, silhouette, image.Point{}, draw.Over)
	logging.Logger().Debug("shadow layer", "w", area.Dx(), "h", area.Dy(), "sigma", sigma)
}

// drawPass is one paint call: stroke-only when stroke is set, fill-only
// otherwise.
type drawPass struct {
	stroke *style.Stroke
}

// shape returns the region the pass covers: the glyph outline itself, or the
// outline of its stroke.
func (dp drawPass) shape(p *glyphPath) *glyphPath {
	if dp.stroke == nil {
		return p
	}
	return p.strokeOutline(dp.stroke)
}

func fill(dc *gg.Context, p *glyphPath, c color.Color) {
	p.replay(dc)
	dc.SetColor(c)
	dc.SetFillRuleWinding()
	dc.Fill()
}
