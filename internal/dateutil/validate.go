package dateutil

import (
	"regexp"
	"strconv"
)

var digitsPattern = regexp.MustCompile(`^\d*$`)

// ValidYear 仅做输入层校验：至多 4 位数字。
func ValidYear(value string) bool {
	return len(value) <= 4 && digitsPattern.MatchString(value)
}

// ValidMonth 允许空串或 1-12。
func ValidMonth(value string) bool {
	return validRange(value, 1, 12)
}

// ValidDay 允许空串或 1-31，不校验具体月份的天数。
func ValidDay(value string) bool {
	return validRange(value, 1, 31)
}

func validRange(value string, lo, hi int) bool {
	if len(value) > 2 || !digitsPattern.MatchString(value) {
		return false
	}
	if value == "" {
		return true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	return n >= lo && n <= hi
}
