package css

import (
	"image/color"
	"math"
)

// RelativeLuminance returns the WCAG relative luminance of c in [0,1].
func RelativeLuminance(c color.NRGBA) float64 {
	lin := func(v uint8) float64 {
		f := float64(v) / 255
		if f <= 0.03928 {
			return f / 12.92
		}
		return math.Pow((f+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// IsLight reports whether text in color c reads as light, so a dark outline
// or backdrop should go behind it.
func IsLight(c color.NRGBA) bool { return RelativeLuminance(c) > 0.5 }

// ContrastStroke picks black for light fills and white for dark ones.
func ContrastStroke(fill color.NRGBA) string {
	if IsLight(fill) {
		return "#000000"
	}
	return "#ffffff"
}
