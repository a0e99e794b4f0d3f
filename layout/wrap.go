package layout

import "strings"

// WrapLines 按空格贪心折行，并把整块文本的垂直中心放在 anchorY 上。
//
// A word is appended to the current line while the measured width of
// "line + ' ' + word" stays within maxWidth; otherwise the line is flushed
// and the word starts a new one. Words wider than maxWidth are never split.
// ASCII whitespace (tab, newline, form feed, carriage return) is drawn as a
// plain space, so it never forces a break.
//
// With N lines the first center is anchorY-(N-1)*lineHeight/2 and each
// following line sits exactly lineHeight below the previous one.
func WrapLines(text string, anchorX, anchorY, maxWidth, lineHeight float64, measure MeasureFunc) ([]Line, error) {
	var (
		lines   []Line
		current string
		width   float64
	)
	for _, word := range strings.Split(strings.Map(asciiSpace, text), " ") {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		w, err := measure(candidate)
		if err != nil {
			return nil, err
		}
		if current != "" && w > maxWidth {
			lines = append(lines, Line{Text: current, X: anchorX, Width: width})
			current = word
			if width, err = measure(word); err != nil {
				return nil, err
			}
			continue
		}
		current, width = candidate, w
	}
	lines = append(lines, Line{Text: current, X: anchorX, Width: width})

	total := float64(len(lines)-1) * lineHeight
	top := anchorY - total/2
	for i := range lines {
		lines[i].Y = top + float64(i)*lineHeight
	}
	return lines, nil
}

func asciiSpace(r rune) rune {
	switch r {
	case '\t', '\n', '\f', '\r':
		return ' '
	}
	return r
}
