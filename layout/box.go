package layout

import "slices"

// DefaultFontFamily 为经典 Impact 字体栈。
const DefaultFontFamily = "Impact, Haettenschweiler, 'Arial Black', sans-serif"

// FontPreset 是控制面板中可选的字体栈。
type FontPreset struct {
	Label string `json:"label"`
	Stack string `json:"stack"`
}

// FontPresets lists the font stacks offered by the editor, classic first.
var FontPresets = []FontPreset{
	{Label: "Impact (classic)", Stack: DefaultFontFamily},
	{Label: "Arial Black", Stack: "'Arial Black', Arial, sans-serif"},
	{Label: "Inter", Stack: "Inter, system-ui, -apple-system, Segoe UI, Roboto, Arial, sans-serif"},
	{Label: "Georgia", Stack: "Georgia, 'Times New Roman', serif"},
	{Label: "Comic Sans", Stack: "'Comic Sans MS', 'Comic Sans', cursive"},
}

// DefaultBox returns the seeded caption for id: id 1 sits near the top, any
// other id near the bottom.
func DefaultBox(id int) TextBox {
	b := TextBox{
		ID:          id,
		Text:        "BOTTOM TEXT",
		X:           0.5,
		Y:           0.92,
		FontSize:    48,
		Color:       "#ffffff",
		StrokeColor: "#000000",
		StrokeWidth: 2,
		FontFamily:  DefaultFontFamily,
		Align:       AlignCenter,
		Bold:        true,
		Uppercase:   true,
		Shadow:      true,
	}
	if id == 1 {
		b.Text = "TOP TEXT"
		b.Y = 0.08
	}
	return b
}

// DefaultBoxes 返回新图片默认的上下两个文本框。
func DefaultBoxes() []TextBox {
	return []TextBox{DefaultBox(1), DefaultBox(2)}
}

// NewBox 返回"添加文本框"时插入的新框，位于垂直居中处。
func NewBox(id int) TextBox {
	b := DefaultBox(id)
	b.Text = "NEW TEXT"
	b.Y = 0.5
	return b
}

// NextID returns max(0, ids...)+1.
func NextID(boxes []TextBox) int {
	next := 0
	for _, b := range boxes {
		next = max(next, b.ID)
	}
	return next + 1
}

// ClampAnchor keeps an anchor fraction inside [AnchorMin, AnchorMax].
func ClampAnchor(v float64) float64 {
	return min(AnchorMax, max(AnchorMin, v))
}

// CloneBoxes returns a copy of boxes that shares no backing array.
func CloneBoxes(boxes []TextBox) []TextBox {
	if boxes == nil {
		return nil
	}
	return slices.Clone(boxes)
}
