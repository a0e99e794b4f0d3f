package layout

// 合成时使用的固定参数，与网页预览保持一致。
const (
	ExportScale     = 2.0  // 导出栅格相对原图的放大倍数
	WrapRatio       = 0.9  // 折行宽度占图片宽度的比例
	LineHeightRatio = 1.2  // 行高相对字号的倍数
	AnchorMin       = 0.02 // 拖拽后锚点允许的最小比例
	AnchorMax       = 0.98
)

// 控制面板允许的取值范围。
const (
	MinFontSize    = 18
	MaxFontSize    = 128
	MaxStrokeWidth = 20
)

// Measurer 返回文本在给定字体配置下的绘制宽度（原图坐标）。
type Measurer interface {
	MeasureText(font Font, dir Direction, s string) (float64, error)
}

// MeasureFunc adapts a bound measurement to WrapLines.
type MeasureFunc func(s string) (float64, error)
