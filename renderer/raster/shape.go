package raster

import (
	"math"

	"github.com/fogleman/gg"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/memeforge/layout"
)

// faceChain 按顺序为每个字符挑选第一个含有该字形的字体。
type faceChain []*font.Face

func (c faceChain) ResolveFace(r rune) *font.Face {
	for _, f := range c {
		if _, ok := f.NominalGlyph(r); ok {
			return f
		}
	}
	return c[0]
}

// shapeLine shapes text into runs in visual (left to right) order and
// returns the total advance in base pixels.
func (r *Renderer) shapeLine(chain faceChain, size float64, dir layout.Direction, text string) ([]shaping.Output, float64) {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, 0
	}
	base := di.DirectionLTR
	if dir == layout.RTL {
		base = di.DirectionRTL
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: base,
		Face:      chain[0],
		Size:      fixed.Int26_6(math.Round(size * 64)),
		Script:    language.Common,
		Language:  r.lang,
	}

	var (
		runs  []shaping.Output
		width fixed.Int26_6
	)
	for _, in := range r.seg.Split(input, chain) {
		out := r.shaper.Shape(in)
		width += out.Advance
		runs = append(runs, out)
	}
	return visualOrder(runs, base), fromFixed(width)
}

// visualOrder reorders logically ordered runs for display. With an RTL base
// the whole sequence is reversed while consecutive LTR runs keep their
// order; with an LTR base only consecutive RTL runs are reversed.
func visualOrder(runs []shaping.Output, base di.Direction) []shaping.Output {
	if base == di.DirectionRTL {
		reverseRuns(runs)
	}
	flip := di.DirectionRTL
	if base == di.DirectionRTL {
		flip = di.DirectionLTR
	}
	for i := 0; i < len(runs); {
		if runs[i].Direction != flip {
			i++
			continue
		}
		j := i
		for j < len(runs) && runs[j].Direction == flip {
			j++
		}
		reverseRuns(runs[i:j])
		i = j
	}
	return runs
}

func reverseRuns(runs []shaping.Output) {
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

type point struct{ x, y float64 }

type pathOp struct {
	op  ot.SegmentOp
	pts [3]point
}

// glyphPath is a text outline in base image coordinates.
type glyphPath struct {
	ops    []pathOp
	bounds layout.Rect
	empty  bool
}

func newGlyphPath() *glyphPath { return &glyphPath{empty: true} }

func (p *glyphPath) add(op ot.SegmentOp, pts ...point) {
	var po pathOp
	po.op = op
	copy(po.pts[:], pts)
	p.ops = append(p.ops, po)
	for _, pt := range pts {
		if p.empty {
			p.bounds = layout.Rect{X0: pt.x, Y0: pt.y, X1: pt.x, Y1: pt.y}
			p.empty = false
			continue
		}
		p.bounds.X0 = min(p.bounds.X0, pt.x)
		p.bounds.Y0 = min(p.bounds.Y0, pt.y)
		p.bounds.X1 = max(p.bounds.X1, pt.x)
		p.bounds.Y1 = max(p.bounds.Y1, pt.y)
	}
}

// appendGlyphs adds the outlines of shaped runs with the pen starting at
// (x, baseline).
func (p *glyphPath) appendGlyphs(runs []shaping.Output, size, x, baseline float64) {
	pen := x
	for _, run := range runs {
		scale := size / float64(run.Face.Upem())
		for _, g := range run.Glyphs {
			gx := pen + fromFixed(g.XOffset)
			gy := baseline - fromFixed(g.YOffset)
			if outline, ok := run.Face.GlyphData(g.GlyphID).(font.GlyphOutline); ok {
				p.appendOutline(outline, scale, gx, gy)
			}
			pen += fromFixed(g.Advance)
		}
	}
}

func (p *glyphPath) appendOutline(outline font.GlyphOutline, scale, x, y float64) {
	at := func(sp ot.SegmentPoint) point {
		return point{x: x + float64(sp.X)*scale, y: y - float64(sp.Y)*scale}
	}
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo, ot.SegmentOpLineTo:
			p.add(seg.Op, at(seg.Args[0]))
		case ot.SegmentOpQuadTo:
			p.add(seg.Op, at(seg.Args[0]), at(seg.Args[1]))
		case ot.SegmentOpCubeTo:
			p.add(seg.Op, at(seg.Args[0]), at(seg.Args[1]), at(seg.Args[2]))
		}
	}
}

// replay 将轮廓写入 gg 的当前路径；每个子路径都显式闭合，保证描边在起点处正确连接。
func (p *glyphPath) replay(dc *gg.Context) {
	dc.ClearPath()
	open := false
	for _, o := range p.ops {
		switch o.op {
		case ot.SegmentOpMoveTo:
			if open {
				dc.ClosePath()
			}
			dc.MoveTo(o.pts[0].x, o.pts[0].y)
			open = true
		case ot.SegmentOpLineTo:
			dc.LineTo(o.pts[0].x, o.pts[0].y)
		case ot.SegmentOpQuadTo:
			dc.QuadraticTo(o.pts[0].x, o.pts[0].y, o.pts[1].x, o.pts[1].y)
		case ot.SegmentOpCubeTo:
			dc.CubicTo(o.pts[0].x, o.pts[0].y, o.pts[1].x, o.pts[1].y, o.pts[2].x, o.pts[2].y)
		}
	}
	if open {
		dc.ClosePath()
	}
}
