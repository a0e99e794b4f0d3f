package style

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/memeforge/layout"
)

// stubMeasurer 记录调用时的字体配置，宽度按字符数 * 字号 * 0.5 计算。
type stubMeasurer struct {
	fonts []layout.Font
	dirs  []layout.Direction
}

func (s *stubMeasurer) MeasureText(font layout.Font, dir layout.Direction, text string) (float64, error) {
	s.fonts = append(s.fonts, font)
	s.dirs = append(s.dirs, dir)
	return float64(utf8.RuneCountInString(text)) * font.Size * 0.5, nil
}

func TestFontString(t *testing.T) {
	box := layout.DefaultBox(1)
	if got := FontString(box); got != "700 48px "+layout.DefaultFontFamily {
		t.Fatalf("unexpected font string %q", got)
	}
	box.Italic, box.Bold, box.FontSize = true, false, 20
	box.FontFamily = "Georgia, serif"
	if got := FontString(box); got != "italic 20px Georgia, serif" {
		t.Fatalf("unexpected font string %q", got)
	}
	box.FontFamily = ""
	if got := FontString(box); got != "italic 20px sans-serif" {
		t.Fatalf("blank family should fall back, got %q", got)
	}
}

func TestDisplayTextAndDirection(t *testing.T) {
	box := layout.DefaultBox(1)
	box.Text = "top text"
	if got := DisplayText(box); got != "TOP TEXT" {
		t.Fatalf("uppercase not applied: %q", got)
	}
	box.Uppercase = false
	if got := DisplayText(box); got != "top text" {
		t.Fatalf("text changed without uppercase: %q", got)
	}

	heb := layout.DefaultBox(1)
	heb.Text = "שלום עולם"
	if DisplayText(heb) != heb.Text {
		t.Fatalf("uppercasing Hebrew must be a no-op")
	}
	if Direction(heb) != layout.RTL {
		t.Fatalf("Hebrew caption should be RTL")
	}
	heb.Uppercase = false
	if Direction(heb) != layout.RTL {
		t.Fatalf("uppercase toggle changed direction")
	}
}

func TestShadowDoesNotLeak(t *testing.T) {
	on := layout.DefaultBox(1)
	off := layout.DefaultBox(2)
	off.Shadow = false
	if got := ShadowFor(on); got != ShadowPreset || !got.Enabled() {
		t.Fatalf("unexpected shadow %+v", got)
	}
	if got := ShadowFor(off); got.Enabled() || got.Blur != 0 {
		t.Fatalf("disabled shadow must be cleared, got %+v", got)
	}
}

func TestResolveTopTextScenario(t *testing.T) {
	m := &stubMeasurer{}
	box := layout.DefaultBox(1)
	p, err := Resolve(box, layout.Frame{Width: 800, Height: 400}, m)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(p.Lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(p.Lines))
	}
	line := p.Lines[0]
	if line.X != 400 || math.Abs(line.Y-32) > 1e-9 {
		t.Fatalf("unexpected anchor (%v, %v)", line.X, line.Y)
	}
	if p.MaxWidth != 720 || math.Abs(p.LineHeight-57.6) > 1e-9 {
		t.Fatalf("unexpected wrap parameters %v %v", p.MaxWidth, p.LineHeight)
	}
	if p.Stroke == nil || p.Stroke.Width != 2 || p.Stroke.Join != JoinRound || p.Stroke.MiterLimit != 2 {
		t.Fatalf("unexpected stroke %+v", p.Stroke)
	}
	want := layout.Font{Families: []string{"Impact", "Haettenschweiler", "Arial Black", "sans-serif"}, Size: 48, Bold: true}
	for _, f := range m.fonts {
		if diff := cmp.Diff(want, f); diff != "" {
			t.Fatalf("measured with a different font (-want +got):\n%s", diff)
		}
	}
}

func TestResolveWithoutStroke(t *testing.T) {
	box := layout.DefaultBox(2)
	box.StrokeWidth = 0
	box.StrokeColor = "not a color"
	p, err := Resolve(box, layout.Frame{Width: 100, Height: 100}, &stubMeasurer{})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.Stroke != nil {
		t.Fatalf("strokeWidth 0 must disable the stroke pass")
	}
}

func TestResolveWrapsLongCaption(t *testing.T) {
	box := layout.DefaultBox(1)
	box.Text = "one does not simply walk into mordor without a caption"
	box.Y = 0.5
	p, err := Resolve(box, layout.Frame{Width: 400, Height: 400}, &stubMeasurer{})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(p.Lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(p.Lines))
	}
	n := float64(len(p.Lines))
	if first := p.Lines[0].Y; math.Abs(first-(200-(n-1)*p.LineHeight/2)) > 1e-9 {
		t.Fatalf("block not centered on anchor: first=%v", first)
	}
}

func TestResolveMeasuresWithOriginalDirection(t *testing.T) {
	m := &stubMeasurer{}
	box := layout.DefaultBox(1)
	box.Text = "hey שלום"
	if _, err := Resolve(box, layout.Frame{Width: 800, Height: 400}, m); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	for _, d := range m.dirs {
		if d != layout.RTL {
			t.Fatalf("measured with direction %q", d)
		}
	}
}

func TestResolveUnknownAlignFallsBackToCenter(t *testing.T) {
	for _, a := range []layout.Align{"", "justify"} {
		box := layout.DefaultBox(1)
		box.Align = a
		p, err := Resolve(box, layout.Frame{Width: 10, Height: 10}, &stubMeasurer{})
		if err != nil {
			t.Fatalf("align %q: %v", a, err)
		}
		if p.Align != layout.AlignCenter {
			t.Fatalf("align %q resolved to %q", a, p.Align)
		}
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	box := layout.DefaultBox(1)
	box.Color = "#zz"
	if _, err := Resolve(box, layout.Frame{Width: 10, Height: 10}, &stubMeasurer{}); err == nil {
		t.Fatalf("expected error for invalid color")
	}
}
