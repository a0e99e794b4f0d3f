// Package raster composites captions onto a base image with fogleman/gg,
// shaping text with go-text (HarfBuzz) so right-to-left and mixed-script
// captions render the way the browser preview does.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"

	"github.com/ByLCY/memeforge/fonts"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/logging"
	"github.com/ByLCY/memeforge/renderer"
	"github.com/ByLCY/memeforge/style"
)

// Renderer draws caption boxes over a base image at a fixed export scale.
type Renderer struct {
	fonts *fonts.Registry
	scale float64
	lang  language.Language

	// go-text faces, the shaper and the segmenter keep internal caches and
	// must not be used concurrently.
	mu     sync.Mutex
	shaper shaping.HarfbuzzShaper
	seg    shaping.Segmenter
}

var (
	_ renderer.Compositor = (*Renderer)(nil)
	_ layout.Measurer     = (*Renderer)(nil)
)

// Options configures the raster compositor.
type Options struct {
	Fonts    *fonts.Registry // 为空时使用内置字体
	Scale    float64         // 为 0 时使用 layout.ExportScale
	Language string          // BCP 47 tag used for shaping, default "en"
}

// NewRenderer creates a compositor backed by the built-in fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a compositor with the given font registry.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		fonts: opts.Fonts,
		scale: opts.Scale,
		lang:  language.NewLanguage(opts.Language),
	}
	if r.fonts == nil {
		r.fonts = fonts.NewRegistry()
	}
	if r.scale <= 0 {
		r.scale = layout.ExportScale
	}
	if opts.Language == "" {
		r.lang = language.NewLanguage("en")
	}
	return r
}

// Fonts returns the registry used to resolve font stacks.
func (r *Renderer) Fonts() *fonts.Registry { return r.fonts }

// MeasureText implements layout.Measurer using the same shaping path as
// painting.
func (r *Renderer) MeasureText(f layout.Font, dir layout.Direction, s string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.measureText(f, dir, s)
}

func (r *Renderer) measureText(f layout.Font, dir layout.Direction, s string) (float64, error) {
	chain, err := r.fonts.Faces(f.Families, f.Bold, f.Italic)
	if err != nil {
		return 0, err
	}
	_, w := r.shapeLine(chain, f.Size, dir, s)
	return w, nil
}

// lockedMeasurer measures while Composite already holds r.mu.
type lockedMeasurer struct{ r *Renderer }

func (m lockedMeasurer) MeasureText(f layout.Font, dir layout.Direction, s string) (float64, error) {
	return m.r.measureText(f, dir, s)
}

// ErrNoSurface is returned when Composite is called without a destination.
var ErrNoSurface = errors.New("raster: nil surface")

// Composite 绘制底图与全部文本框。底图未就绪时不做任何事，画布保持原状。
//
// The output is scale*w × scale*h; all drawing uses base image coordinates
// through the scale transform. Boxes are painted in slice order, so later
// boxes cover earlier ones. A stroke pass, when enabled, always precedes the
// fill pass. Repeated calls with the same inputs produce identical pixels.
func (r *Renderer) Composite(dst *renderer.Surface, src renderer.Source, boxes []layout.TextBox) error {
	if dst == nil {
		return ErrNoSurface
	}
	if src == nil || !src.Ready() {
		logging.Logger().Debug("composite skipped, image not ready")
		return nil
	}
	base := src.Image()
	if base == nil {
		return nil
	}
	b := base.Bounds()
	if b.Empty() {
		return fmt.Errorf("底图尺寸为空")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := b.Dx(), b.Dy()
	img := image.NewRGBA(image.Rect(0, 0, int(float64(w)*r.scale), int(float64(h)*r.scale)))
	dc := gg.NewContextForRGBA(img)
	dc.Scale(r.scale, r.scale)
	dc.DrawImage(base, -b.Min.X, -b.Min.Y)

	frame := layout.Frame{Width: float64(w), Height: float64(h)}
	res := &layout.Result{Frame: frame, Scale: r.scale}
	for _, box := range boxes {
		bl, err := r.drawBox(dc, img, frame, box)
		if err != nil {
			return fmt.Errorf("绘制文本框 %d 失败: %w", box.ID, err)
		}
		res.Boxes = append(res.Boxes, bl)
	}

	dst.Replace(img, src.Tainted(), res)
	return nil
}

func (r *Renderer) drawBox(dc *gg.Context, img *image.RGBA, frame layout.Frame, box layout.TextBox) (layout.BoxLayout, error) {
	paint, err := style.Resolve(box, frame, lockedMeasurer{r})
	if err != nil {
		return layout.BoxLayout{}, err
	}
	chain, err := r.fonts.Faces(paint.Face.Families, paint.Face.Bold, paint.Face.Italic)
	if err != nil {
		return layout.BoxLayout{}, err
	}

	// textBaseline = "middle"：行中心位于字体上升/下降高度的正中
	ascent, descent := verticalExtents(chain, paint.Face.Size)
	middleToBaseline := (ascent - descent) / 2

	bl := layout.BoxLayout{
		ID:         box.ID,
		Font:       paint.Font,
		Direction:  paint.Direction,
		Align:      paint.Align,
		LineHeight: paint.LineHeight,
		MaxWidth:   paint.MaxWidth,
		Stroked:    paint.Stroke != nil,
		Shadowed:   paint.Shadow.Enabled(),
	}
	paths := make([]*glyphPath, 0, len(paint.Lines))
	for _, line := range paint.Lines {
		runs, width := r.shapeLine(chain, paint.Face.Size, paint.Direction, line.Text)
		line.Width = width
		p := newGlyphPath()
		p.appendGlyphs(runs, paint.Face.Size, lineStart(paint.Align, line.X, width), line.Y+middleToBaseline)
		paths = append(paths, p)
		bl.Lines = append(bl.Lines, line)
		if width > 0 {
			bl.Bounds = bl.Bounds.Union(layout.Rect{
				X0: lineStart(paint.Align, line.X, width),
				Y0: line.Y - (ascent+descent)/2,
				X1: lineStart(paint.Align, line.X, width) + width,
				Y1: line.Y + (ascent+descent)/2,
			})
		}
	}

	if paint.Stroke != nil {
		pass := drawPass{stroke: paint.Stroke}
		for _, p := range paths {
			r.paintPass(dc, img, paint.Shadow, p, pass, paint.Stroke.Color)
		}
	}
	for _, p := range paths {
		r.paintPass(dc, img, paint.Shadow, p, drawPass{}, paint.Fill)
	}
	return bl, nil
}

func (r *Renderer) paintPass(dc *gg.Context, img *image.RGBA, sh style.Shadow, p *glyphPath, pass drawPass, c color.Color) {
	shape := pass.shape(p)
	if shape.empty {
		return
	}
	castShadow(img, r.scale, sh, shape)
	fill(dc, shape, c)
}

// lineStart 返回行左端的横坐标。left/center/right 为绝对方向，与书写方向无关。
func lineStart(align layout.Align, x, width float64) float64 {
	switch align {
	case layout.AlignLeft:
		return x
	case layout.AlignRight:
		return x - width
	default:
		return x - width/2
	}
}

// verticalExtents returns the ascent and descent (both positive) of the
// primary face at size.
func verticalExtents(chain faceChain, size float64) (ascent, descent float64) {
	primary := chain[0]
	ext, ok := primary.FontHExtents()
	if !ok || ext.Ascender-ext.Descender <= 0 {
		return size * 0.8, size * 0.2
	}
	scale := size / float64(primary.Upem())
	return float64(ext.Ascender) * scale, -float64(ext.Descender) * scale
}
