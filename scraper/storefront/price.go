package storefront

import (
	"strconv"
	"strings"
)

var groupingStripper = strings.NewReplacer(".", "", ",", "")

// ParsePrice strips grouping and decimal punctuation from a price cell and
// parses the remainder as a whole number. Text that is not entirely ASCII
// digits after stripping yields nil, so "1.234" and "1234" both give 1234
// while "N/A" and "--" give nothing.
func ParsePrice(raw string) *int64 {
	digits := groupingStripper.Replace(strings.TrimSpace(raw))
	if digits == "" {
		return nil
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil
		}
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
