package service

import (
	"github.com/shopspring/decimal"
)

var (
	lakh     = decimal.NewFromInt(100000)
	thousand = decimal.NewFromInt(1000)
)

// FormatINR renders an amount compactly: Rs 1.2L, Rs 3.4K or Rs 950.
func FormatINR(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	switch {
	case amount.GreaterThanOrEqual(lakh):
		return sign + "Rs " + amount.Div(lakh).StringFixed(1) + "L"
	case amount.GreaterThanOrEqual(thousand):
		return sign + "Rs " + amount.Div(thousand).StringFixed(1) + "K"
	default:
		return sign + "Rs " + amount.StringFixed(0)
	}
}
