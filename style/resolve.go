// Package style turns a caption descriptor into concrete paint parameters.
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/memeforge/css"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/rtl"
)

// Shadow 描述一次绘制调用附带的投影。Blur 与偏移都以输出设备像素计，不随缩放变化。
type Shadow struct {
	Color   color.NRGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Enabled reports whether the shadow paints anything: a visible color and
// either some blur or an offset.
func (s Shadow) Enabled() bool {
	return s.Color.A != 0 && (s.Blur > 0 || s.OffsetX != 0 || s.OffsetY != 0)
}

// ShadowPreset is the caption shadow: rgba(0,0,0,.5), blur 8, offset (0, 2).
var ShadowPreset = Shadow{Color: color.NRGBA{A: 128}, Blur: 8, OffsetY: 2}

// NoShadow clears any shadow left by the previous box.
var NoShadow = Shadow{}

// LineJoin 目前只使用圆角连接。
type LineJoin string

const (
	JoinRound LineJoin = "round"
	JoinMiter LineJoin = "miter"
)

// Stroke is the outline pass configuration.
type Stroke struct {
	Color      color.NRGBA
	Width      float64 // 原图坐标下的线宽
	Join       LineJoin
	MiterLimit float64
}

// Paint 为单个文本框在一次合成中的全部绘制参数。
type Paint struct {
	Font       string // canvas font shorthand
	Face       layout.Font
	Text       string
	Direction  layout.Direction
	Align      layout.Align
	Fill       color.NRGBA
	Stroke     *Stroke // nil when strokeWidth is 0
	Shadow     Shadow
	LineHeight float64
	MaxWidth   float64
	Lines      []layout.Line
}

// FontString composes "[italic ][700 ]{size}px {family}".
func FontString(box layout.TextBox) string {
	var b strings.Builder
	if box.Italic {
		b.WriteString("italic ")
	}
	if box.Bold {
		b.WriteString("700 ")
	}
	b.WriteString(strconv.Itoa(box.FontSize))
	b.WriteString("px ")
	family := strings.TrimSpace(box.FontFamily)
	if family == "" {
		family = "sans-serif"
	}
	b.WriteString(family)
	return b.String()
}

// DisplayText applies the uppercase toggle. Scripts without case are left
// untouched.
func DisplayText(box layout.TextBox) string {
	if !box.Uppercase {
		return box.Text
	}
	return cases.Upper(language.Und).String(box.Text)
}

// Direction classifies the original, untransformed text.
func Direction(box layout.TextBox) layout.Direction {
	if rtl.IsRTL(box.Text) {
		return layout.RTL
	}
	return layout.LTR
}

// ShadowFor returns the preset when the box asks for a shadow and a cleared
// shadow otherwise.
func ShadowFor(box layout.TextBox) Shadow {
	if box.Shadow {
		return ShadowPreset
	}
	return NoShadow
}

// Resolve 解析文本框的绘制参数，并调用排版引擎完成折行与垂直居中。
// measurer must measure with the same font that is later painted.
func Resolve(box layout.TextBox, frame layout.Frame, measurer layout.Measurer) (Paint, error) {
	p := Paint{
		Font:      FontString(box),
		Text:      DisplayText(box),
		Direction: Direction(box),
		Align:     box.Align,
		Shadow:    ShadowFor(box),
	}
	if !p.Align.Valid() {
		p.Align = layout.AlignCenter
	}
	if box.FontSize <= 0 {
		return Paint{}, fmt.Errorf("文本框 %d 的字号必须为正数", box.ID)
	}

	face, err := css.ParseFont(p.Font)
	if err != nil {
		return Paint{}, fmt.Errorf("文本框 %d: %w", box.ID, err)
	}
	p.Face = face

	if p.Fill, err = css.ParseColor(box.Color); err != nil {
		return Paint{}, fmt.Errorf("文本框 %d 的填充色: %w", box.ID, err)
	}
	if box.StrokeWidth > 0 {
		sc, err := css.ParseColor(box.StrokeColor)
		if err != nil {
			return Paint{}, fmt.Errorf("文本框 %d 的描边色: %w", box.ID, err)
		}
		p.Stroke = &Stroke{Color: sc, Width: float64(box.StrokeWidth), Join: JoinRound, MiterLimit: 2}
	}

	p.LineHeight = layout.LineHeightRatio * float64(box.FontSize)
	p.MaxWidth = layout.WrapRatio * frame.Width
	measure := func(s string) (float64, error) {
		return measurer.MeasureText(p.Face, p.Direction, s)
	}
	p.Lines, err = layout.WrapLines(p.Text, box.X*frame.Width, box.Y*frame.Height, p.MaxWidth, p.LineHeight, measure)
	if err != nil {
		return Paint{}, fmt.Errorf("文本框 %d 折行失败: %w", box.ID, err)
	}
	return p, nil
}
