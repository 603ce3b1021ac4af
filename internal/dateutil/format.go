package dateutil

import "strings"

// DateFormat 标识时间线日期的展示格式。
type DateFormat string

const (
	FormatZhFull    DateFormat = "zh-full"
	FormatZhMonth   DateFormat = "zh-month"
	FormatDashFull  DateFormat = "dash-full"
	FormatDashMonth DateFormat = "dash-month"
	FormatDotFull   DateFormat = "dot-full"
	FormatDotMonth  DateFormat = "dot-month"
)

// DefaultFormat 是未设置格式时时间线模块使用的格式。
const DefaultFormat = FormatZhMonth

// FormatOption 描述一个可选的日期格式。
type FormatOption struct {
	Value  DateFormat `json:"value"`
	Label  string     `json:"label"`
	HasDay bool       `json:"has_day"`
}

var formatOptions = []FormatOption{
	{Value: FormatZhFull, Label: "xxxx年xx月xx日 (2024年01月15日)", HasDay: true},
	{Value: FormatZhMonth, Label: "xxxx年xx月 (2024年01月)", HasDay: false},
	{Value: FormatDashFull, Label: "xxxx-xx-xx (2024-01-15)", HasDay: true},
	{Value: FormatDashMonth, Label: "xxxx-xx (2024-01)", HasDay: false},
	{Value: FormatDotFull, Label: "xxxx.xx.xx (2024.01.15)", HasDay: true},
	{Value: FormatDotMonth, Label: "xxxx.xx (2024.01)", HasDay: false},
}

// Formats 返回全部可选格式，顺序与编辑器下拉框一致。
func Formats() []FormatOption {
	out := make([]FormatOption, len(formatOptions))
	copy(out, formatOptions)
	return out
}

// ParseFormat 校验格式标识。
func ParseFormat(raw string) (DateFormat, bool) {
	for _, opt := range formatOptions {
		if string(opt.Value) == raw {
			return opt.Value, true
		}
	}
	return "", false
}

// HasDay 报告该格式是否展示到日。
func (f DateFormat) HasDay() bool {
	for _, opt := range formatOptions {
		if opt.Value == f {
			return opt.HasDay
		}
	}
	return false
}

// Parts 是拆分后的年月日。
type Parts struct {
	Year  string
	Month string
	Day   string
}

// ParseParts 拆分规范日期；缺失的日按 01 处理。
func ParseParts(canonical string) Parts {
	if canonical == "" {
		return Parts{}
	}
	segs := strings.Split(canonical, "-")
	p := Parts{Day: "01"}
	p.Year = segs[0]
	if len(segs) > 1 {
		p.Month = segs[1]
	}
	if len(segs) > 2 && segs[2] != "" {
		p.Day = segs[2]
	}
	return p
}

// CombineParts 将年月日组合为规范日期，年或月为空时返回空串。
func CombineParts(year, month, day string, hasDay bool) string {
	if year == "" || month == "" {
		return ""
	}
	if hasDay && day != "" {
		return year + "-" + pad2(month) + "-" + pad2(day)
	}
	return year + "-" + pad2(month)
}

// Format 将规范日期按指定格式渲染；年或月缺失时返回空串。
func Format(canonical string, f DateFormat) string {
	p := ParseParts(canonical)
	if p.Year == "" || p.Month == "" {
		return ""
	}
	year, month, day := p.Year, pad2(p.Month), pad2(p.Day)

	switch f {
	case FormatZhFull:
		return year + "年" + month + "月" + day + "日"
	case FormatZhMonth:
		return year + "年" + month + "月"
	case FormatDashFull:
		return year + "-" + month + "-" + day
	case FormatDashMonth:
		return year + "-" + month
	case FormatDotFull:
		return year + "." + month + "." + day
	case FormatDotMonth:
		return year + "." + month
	default:
		return year + "-" + month
	}
}

func pad2(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}
