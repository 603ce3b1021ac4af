package dateutil

import (
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

var (
	canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}(-\d{2})?$`)
	zhPattern        = regexp.MustCompile(`(\d{4})年(\d{2})月(\d{2})?日?`)
	dotPattern       = regexp.MustCompile(`(\d{4})\.(\d{2})(?:\.(\d{2}))?`)
)

const canonicalLayout = "2006-01-02"

// IsCanonical 报告值是否已是 YYYY-MM 或 YYYY-MM-DD。
func IsCanonical(value string) bool {
	return canonicalPattern.MatchString(value)
}

// Migrate 将旧格式日期转换为规范格式，无法识别时原样返回。
func Migrate(raw string) (out string) {
	if raw == "" {
		return ""
	}
	if IsCanonical(raw) {
		return raw
	}

	defer func() {
		if r := recover(); r != nil {
			out = raw
		}
	}()

	if m := zhPattern.FindStringSubmatch(raw); m != nil {
		return fromParts(raw, m[1], m[2], m[3])
	}
	if m := dotPattern.FindStringSubmatch(raw); m != nil {
		return fromParts(raw, m[1], m[2], m[3])
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return raw
	}
	return canonicalOrRaw(raw, t)
}

// fromParts 与日历构造行为一致：月/日溢出会进位，缺失或为 0 的日按 1 处理。
func fromParts(raw, year, month, day string) string {
	y, err := strconv.Atoi(year)
	if err != nil {
		return raw
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return raw
	}
	d, _ := strconv.Atoi(day)
	if d == 0 {
		d = 1
	}
	return canonicalOrRaw(raw, time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC))
}

func canonicalOrRaw(raw string, t time.Time) string {
	if t.Year() < 1 || t.Year() > 9999 {
		return raw
	}
	return t.Format(canonicalLayout)
}
