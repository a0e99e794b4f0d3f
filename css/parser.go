// Package css parses the small subset of CSS values a caption uses: the
// canvas font shorthand, font-family stacks and colors.
package css

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/image/colornames"

	"github.com/ByLCY/memeforge/layout"
)

var (
	cssLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"|'(?:\\.|[^'])*'`},
		{Name: "Hash", Pattern: `#[0-9A-Fa-f]+`},
		{Name: "Percent", Pattern: `(?:\d+\.\d+|\d+|\.\d+)%`},
		{Name: "Dimension", Pattern: `(?:\d+\.\d+|\d+|\.\d+)(?:px|pt|em)`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+|\.\d+)`},
		{Name: "Ident", Pattern: `-?[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[(),/]`},
	})

	fontParser = participle.MustBuild[fontShorthand](
		participle.Lexer(cssLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)
	stackParser = participle.MustBuild[familyStack](
		participle.Lexer(cssLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)
	colorParser = participle.MustBuild[colorValue](
		participle.Lexer(cssLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(2),
	)
)

// ErrInvalid is wrapped by every parse failure in this package.
var ErrInvalid = errors.New("invalid css value")

// fontShorthand is `[style] [weight] <size>[/<line-height>] <family>, ...`.
type fontShorthand struct {
	Modifiers  []*fontModifier `parser:"@@*"`
	Size       string          `parser:"@Dimension"`
	LineHeight string          `parser:"( '/' @( Dimension | Number | Percent ) )?"`
	Families   []*familyName   `parser:"@@ ( ',' @@ )*"`
}

type fontModifier struct {
	Keyword string `parser:"  @Ident"`
	Weight  string `parser:"| @Number"`
}

type familyStack struct {
	Families []*familyName `parser:"@@ ( ',' @@ )*"`
}

type familyName struct {
	Quoted string   `parser:"  @String"`
	Words  []string `parser:"| @( Ident | Number )+"`
}

func (f *familyName) String() string {
	if f.Quoted != "" {
		return f.Quoted
	}
	return strings.Join(f.Words, " ")
}

type colorValue struct {
	Hex  string     `parser:"  @Hash"`
	Func *colorFunc `parser:"| @@"`
	Name string     `parser:"| @Ident"`
}

type colorFunc struct {
	Name string      `parser:"@( 'rgb' | 'rgba' ) '('"`
	Args []*colorArg `parser:"@@ ( ( ',' | '/' )? @@ )* ')'"`
}

type colorArg struct {
	Value string `parser:"@( Number | Percent )"`
}

// ParseFont parses a canvas font shorthand such as
// "italic 700 48px Impact, 'Arial Black', sans-serif".
func ParseFont(shorthand string) (layout.Font, error) {
	ast, err := fontParser.ParseString("", shorthand)
	if err != nil {
		return layout.Font{}, fmt.Errorf("%w: 解析字体 %q 失败: %v", ErrInvalid, shorthand, err)
	}
	var font layout.Font
	for _, m := range ast.Modifiers {
		if err := applyModifier(&font, m); err != nil {
			return layout.Font{}, fmt.Errorf("%w: 字体 %q: %v", ErrInvalid, shorthand, err)
		}
	}
	size, err := parseLength(ast.Size)
	if err != nil {
		return layout.Font{}, fmt.Errorf("%w: 字号 %q: %v", ErrInvalid, ast.Size, err)
	}
	font.Size = size
	font.Families = familyNames(ast.Families)
	return font, nil
}

// ParseFontStack splits a font-family list into family names with quotes
// removed, preserving order.
func ParseFontStack(stack string) ([]string, error) {
	if strings.TrimSpace(stack) == "" {
		return nil, nil
	}
	ast, err := stackParser.ParseString("", stack)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析字体栈 %q 失败: %v", ErrInvalid, stack, err)
	}
	return familyNames(ast.Families), nil
}

func familyNames(in []*familyName) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if name := strings.TrimSpace(f.String()); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func applyModifier(font *layout.Font, m *fontModifier) error {
	if m.Weight != "" {
		w, err := strconv.ParseFloat(m.Weight, 64)
		if err != nil || w < 1 || w > 1000 {
			return fmt.Errorf("非法字重 %q", m.Weight)
		}
		font.Bold = w >= 600
		return nil
	}
	switch strings.ToLower(m.Keyword) {
	case "italic", "oblique":
		font.Italic = true
	case "bold", "bolder":
		font.Bold = true
	case "normal", "lighter", "small-caps":
	default:
		return fmt.Errorf("未知的字体修饰 %q", m.Keyword)
	}
	return nil
}

func parseLength(v string) (float64, error) {
	unit := ""
	for _, u := range []string{"px", "pt", "em"} {
		if strings.HasSuffix(v, u) {
			unit, v = u, strings.TrimSuffix(v, u)
			break
		}
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("字号必须为正数")
	}
	switch unit {
	case "pt":
		n = n * 4 / 3
	case "em":
		n *= 16
	}
	return n, nil
}

// ParseColor parses #rgb, #rgba, #rrggbb, #rrggbbaa, rgb()/rgba() and CSS
// named colors (including "transparent").
func ParseColor(value string) (color.NRGBA, error) {
	ast, err := colorParser.ParseString("", value)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: 解析颜色 %q 失败: %v", ErrInvalid, value, err)
	}
	switch {
	case ast.Hex != "":
		return parseHex(ast.Hex)
	case ast.Func != nil:
		return parseFunc(ast.Func)
	default:
		name := strings.ToLower(ast.Name)
		if name == "transparent" {
			return color.NRGBA{}, nil
		}
		c, ok := colornames.Map[name]
		if !ok {
			return color.NRGBA{}, fmt.Errorf("%w: 未知颜色名 %q", ErrInvalid, ast.Name)
		}
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
}

func parseHex(hex string) (color.NRGBA, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 || len(h) == 4 {
		var b strings.Builder
		for _, c := range h {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		h = b.String()
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: 颜色 %q 长度不合法", ErrInvalid, hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: 颜色 %q: %v", ErrInvalid, hex, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseFunc(f *colorFunc) (color.NRGBA, error) {
	if len(f.Args) != 3 && len(f.Args) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: %s() 需要 3 或 4 个参数", ErrInvalid, f.Name)
	}
	var ch [3]uint8
	for i := range 3 {
		v, err := channel(f.Args[i].Value)
		if err != nil {
			return color.NRGBA{}, err
		}
		ch[i] = v
	}
	alpha := uint8(255)
	if len(f.Args) == 4 {
		a, err := alphaValue(f.Args[3].Value)
		if err != nil {
			return color.NRGBA{}, err
		}
		alpha = a
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

func channel(v string) (uint8, error) {
	if p, ok := strings.CutSuffix(v, "%"); ok {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: 颜色分量 %q", ErrInvalid, v)
		}
		return clampByte(n * 255 / 100), nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: 颜色分量 %q", ErrInvalid, v)
	}
	return clampByte(n), nil
}

func alphaValue(v string) (uint8, error) {
	if p, ok := strings.CutSuffix(v, "%"); ok {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: 透明度 %q", ErrInvalid, v)
		}
		return clampByte(n * 255 / 100), nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: 透明度 %q", ErrInvalid, v)
	}
	return clampByte(n * 255), nil
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
