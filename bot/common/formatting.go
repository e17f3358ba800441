package common

import (
	"fmt"
	"strings"
)

// FormatXu formats an xu amount with thousand separators
func FormatXu(amount int64) string {
	str := fmt.Sprintf("%d", amount)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}
