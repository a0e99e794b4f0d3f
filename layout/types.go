package layout

// 该文件定义文本框描述、排版结果与调试输出共用的数据结构。

// Align 为文本相对锚点的水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Valid reports whether a is one of left/center/right.
func (a Align) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// Direction 为文本的书写方向。
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// TextBox 是一层字幕的完整描述。JSON 字段名与分享链接中的格式保持一致。
type TextBox struct {
	ID          int     `json:"id"`
	Text        string  `json:"text"`
	X           float64 `json:"x"` // 锚点横坐标，占图片宽度的比例
	Y           float64 `json:"y"` // 锚点纵坐标，占图片高度的比例，表示整块文本的垂直中心
	FontSize    int     `json:"fontSize"`
	Color       string  `json:"color"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth int     `json:"strokeWidth"` // 0 表示不描边
	FontFamily  string  `json:"fontFamily"`
	Align       Align   `json:"align"`
	Bold        bool    `json:"bold"`
	Italic      bool    `json:"italic"`
	Uppercase   bool    `json:"uppercase"`
	Shadow      bool    `json:"shadow"`
}

// Font is a parsed CSS font configuration. Measuring and painting both use
// the same value so wrapping agrees with the final raster.
type Font struct {
	Families []string `json:"families"`
	Size     float64  `json:"size"`
	Bold     bool     `json:"bold"`
	Italic   bool     `json:"italic"`
}

// Frame is the base (unscaled) size of the image being captioned.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line 表示一行已经定位的文本。X 为锚点横坐标，Y 为该行的垂直中心。
type Line struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// Rect is an axis aligned rectangle in base image coordinates.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

// Result 记录一次合成的排版信息，供调试 JSON 与命中测试使用。
type Result struct {
	Frame Frame       `json:"frame"`
	Scale float64     `json:"scale"`
	Boxes []BoxLayout `json:"boxes"`
}

// BoxLayout 是单个文本框解析后的样式与行布局。
type BoxLayout struct {
	ID         int       `json:"id"`
	Font       string    `json:"font"`
	Direction  Direction `json:"direction"`
	Align      Align     `json:"align"`
	LineHeight float64   `json:"lineHeight"`
	MaxWidth   float64   `json:"maxWidth"`
	Lines      []Line    `json:"lines"`
	Bounds     Rect      `json:"bounds"`
	Stroked    bool      `json:"stroked"`
	Shadowed   bool      `json:"shadowed"`
}
