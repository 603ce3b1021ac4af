package layout

// 预览缩放（百分比）。
const (
	MinScale     = 50
	MaxScale     = 150
	DefaultScale = 100
	ScaleStep    = 10
)

// ClampScale 将缩放限制在 [MinScale, MaxScale]，0 视为默认值。
func ClampScale(percent int) int {
	switch {
	case percent == 0:
		return DefaultScale
	case percent < MinScale:
		return MinScale
	case percent > MaxScale:
		return MaxScale
	default:
		return percent
	}
}

func ZoomIn(percent int) int  { return ClampScale(ClampScale(percent) + ScaleStep) }
func ZoomOut(percent int) int { return ClampScale(ClampScale(percent) - ScaleStep) }
