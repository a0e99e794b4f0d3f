package renderer

import (
	"image"

	"github.com/ByLCY/memeforge/layout"
)

// Source 是合成所需的底图。加载尚未完成或失败时 Ready 返回 false。
type Source interface {
	Ready() bool
	Image() image.Image
	// Tainted reports that the pixels came from an origin that did not grant
	// read access; such rasters can be displayed but not exported.
	Tainted() bool
}

// Compositor 将底图与有序的文本框列表绘制到输出画布上。
type Compositor interface {
	Composite(dst *Surface, src Source, boxes []layout.TextBox) error
}
