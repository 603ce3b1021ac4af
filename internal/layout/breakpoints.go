package layout

const (
	smallMobileMax = 480
	mobileMax      = 768
	tabletMax      = 1024

	defaultWidth  = 1024
	defaultHeight = 768
)

// Breakpoints 是根据视口尺寸推导出的响应式标记。
type Breakpoints struct {
	IsMobile      bool `json:"is_mobile"`
	IsTablet      bool `json:"is_tablet"`
	IsDesktop     bool `json:"is_desktop"`
	IsSmallMobile bool `json:"is_small_mobile"`
	IsLargeMobile bool `json:"is_large_mobile"`
	ScreenWidth   int  `json:"screen_width"`
	ScreenHeight  int  `json:"screen_height"`
}

// Detect 计算断点；宽度未知时按桌面端 1024x768 处理。
func Detect(width, height int) Breakpoints {
	if width <= 0 {
		width, height = defaultWidth, defaultHeight
	}
	if height <= 0 {
		height = defaultHeight
	}
	return Breakpoints{
		IsMobile:      width < mobileMax,
		IsTablet:      width >= mobileMax && width < tabletMax,
		IsDesktop:     width >= tabletMax,
		IsSmallMobile: width < smallMobileMax,
		IsLargeMobile: width >= smallMobileMax && width < mobileMax,
		ScreenWidth:   width,
		ScreenHeight:  height,
	}
}

// ContainerClass 返回容器水平内边距类名。
func (b Breakpoints) ContainerClass() string {
	switch {
	case b.IsMobile:
		return "px-4"
	case b.IsTablet:
		return "px-6"
	default:
		return "px-8"
	}
}

// Spacing 是垂直间距档位。
type Spacing string

const (
	SpacingSmall  Spacing = "sm"
	SpacingMedium Spacing = "md"
	SpacingLarge  Spacing = "lg"
)

// SpacingClass 返回指定档位的垂直间距类名。
func (b Breakpoints) SpacingClass(size Spacing) string {
	switch size {
	case SpacingSmall:
		if b.IsMobile {
			return "space-y-2"
		}
		return "space-y-3"
	case SpacingLarge:
		if b.IsMobile {
			return "space-y-4"
		}
		return "space-y-6"
	default:
		if b.IsMobile {
			return "space-y-3"
		}
		return "space-y-4"
	}
}
