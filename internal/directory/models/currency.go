package models

import (
	"strconv"
	"strings"
)

var compactUnits = []struct {
	value  float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// FormatUSD renders an amount in compact US notation with at most one
// fractional digit, e.g. $950, $1.5K, $12M, $3.2B.
func FormatUSD(amount int64) string {
	sign := ""
	v := float64(amount)
	if v < 0 {
		sign = "-"
		v = -v
	}
	for _, u := range compactUnits {
		if v >= u.value {
			return sign + "$" + trimFraction(v/u.value) + u.suffix
		}
	}
	return sign + "$" + strconv.FormatInt(int64(v), 10)
}

func trimFraction(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
