package slip

import (
	"strconv"
	"strings"
)

// ParseAmount parses a currency amount as printed on a slip: an optional
// dollar sign, comma or space thousands separators, and either a dot or
// a comma as decimal mark ("50,000.00", "50 000,00", "$1,234").
func ParseAmount(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', ' ', '\t':
			return -1
		}
		return r
	}, CleanText(s))
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
