// Package rtl decides whether a caption is laid out right-to-left.
//
// The test is intentionally narrower than the Unicode bidi algorithm: only the
// Hebrew and Arabic blocks (including Arabic Supplement and Extended-A) count.
// Syriac, Thaana and other RTL scripts classify as left-to-right.
package rtl

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/unicode/rangetable"
)

var (
	// 不可见的方向控制符：LRM/RLM、嵌入/覆盖、隔离符以及阿拉伯字母标记 ALM。
	bidiControls = rangetable.Merge(
		rangetable.New('\u200E', '\u200F', '\u061C'),
		&unicode.RangeTable{R16: []unicode.Range16{
			{Lo: 0x202A, Hi: 0x202E, Stride: 1},
			{Lo: 0x2066, Hi: 0x2069, Stride: 1},
		}},
	)

	rtlBlocks = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x0590, Hi: 0x05FF, Stride: 1}, // Hebrew
		{Lo: 0x0600, Hi: 0x06FF, Stride: 1}, // Arabic
		{Lo: 0x0750, Hi: 0x077F, Stride: 1}, // Arabic Supplement
		{Lo: 0x08A0, Hi: 0x08FF, Stride: 1}, // Arabic Extended-A
	}}

	stripControls = runes.Remove(runes.In(bidiControls))
)

// StripControls removes invisible bidirectional control characters from s.
func StripControls(s string) string {
	return stripControls.String(s)
}

// IsRTL reports whether s contains at least one Hebrew or Arabic code point
// once bidi controls are removed. Empty and control-only strings are LTR.
func IsRTL(s string) bool {
	for _, r := range StripControls(s) {
		if unicode.Is(rtlBlocks, r) {
			return true
		}
	}
	return false
}
