package raster

import (
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/memeforge/style"
)

// joiner 将描边的连接方式映射到 canvas 的 Joiner。斜接超出限制时退化为 bevel，
// 与浏览器的 miterLimit 行为一致。
func joiner(st *style.Stroke) canvas.Joiner {
	if st.Join == style.JoinMiter {
		return canvas.MiterJoiner{GapJoiner: canvas.BevelJoin, Limit: st.MiterLimit}
	}
	return canvas.RoundJoin
}

// strokeOutline returns the filled region covered by stroking p with st.
// Width is in base pixels, so the scale transform widens it like a canvas
// lineWidth.
func (p *glyphPath) strokeOutline(st *style.Stroke) *glyphPath {
	if p.empty || st.Width <= 0 {
		return newGlyphPath()
	}
	return fromCanvas(p.toCanvas().Stroke(st.Width, canvas.ButtCap, joiner(st), canvas.Tolerance))
}

func (p *glyphPath) toCanvas() *canvas.Path {
	cp := &canvas.Path{}
	for _, o := range p.ops {
		switch o.op {
		case ot.SegmentOpMoveTo:
			cp.Close()
			cp.MoveTo(o.pts[0].x, o.pts[0].y)
		case ot.SegmentOpLineTo:
			cp.LineTo(o.pts[0].x, o.pts[0].y)
		case ot.SegmentOpQuadTo:
			cp.QuadTo(o.pts[0].x, o.pts[0].y, o.pts[1].x, o.pts[1].y)
		case ot.SegmentOpCubeTo:
			cp.CubeTo(o.pts[0].x, o.pts[0].y, o.pts[1].x, o.pts[1].y, o.pts[2].x, o.pts[2].y)
		}
	}
	cp.Close()
	return cp
}

// fromCanvas 把 canvas 路径转回 glyphPath；圆弧先替换成贝塞尔曲线。
// 闭合命令省略，replay 会为每个子路径补上。
func fromCanvas(cp *canvas.Path) *glyphPath {
	out := newGlyphPath()
	sc := cp.ReplaceArcs().Scanner()
	for sc.Scan() {
		end := sc.End()
		switch sc.Cmd() {
		case canvas.MoveToCmd:
			out.add(ot.SegmentOpMoveTo, point{end.X, end.Y})
		case canvas.LineToCmd:
			out.add(ot.SegmentOpLineTo, point{end.X, end.Y})
		case canvas.QuadToCmd:
			c1 := sc.CP1()
			out.add(ot.SegmentOpQuadTo, point{c1.X, c1.Y}, point{end.X, end.Y})
		case canvas.CubeToCmd:
			c1, c2 := sc.CP1(), sc.CP2()
			out.add(ot.SegmentOpCubeTo, point{c1.X, c1.Y}, point{c2.X, c2.Y}, point{end.X, end.Y})
		}
	}
	return out
}
