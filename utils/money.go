package utils

import (
	"fmt"
	"math"
)

// GSTRate is the tax rate included in every booking amount
const GSTRate = 0.18

// ToMinorUnits converts a rupee amount to integer paise
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts paise back to rupees
func FromMinorUnits(paise int64) float64 {
	return float64(paise) / 100
}

// SplitTaxInclusive splits a tax-inclusive total into base and tax. The base
// is rounded to the nearest paisa and the tax is the residual, so
// base+tax always equals total.
func SplitTaxInclusive(totalPaise int64) (basePaise, taxPaise int64) {
	basePaise = int64(math.Round(float64(totalPaise) / (1 + GSTRate)))
	taxPaise = totalPaise - basePaise
	return basePaise, taxPaise
}

// FormatRupees renders paise as a grouped rupee string, e.g. 123456789 -> "12,34,567.89"
func FormatRupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	whole := paise / 100
	frac := paise % 100
	return fmt.Sprintf("%s%s.%02d", sign, groupIndian(whole), frac)
}

// groupIndian applies the lakh/crore digit grouping
func groupIndian(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	out := ""
	for len(head) > 2 {
		out = "," + head[len(head)-2:] + out
		head = head[:len(head)-2]
	}
	return head + out + "," + tail
}
