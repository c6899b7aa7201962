package db

import "github.com/shopspring/decimal"

// Scales of the NUMERIC money and quantity columns.
const (
	MoneyScale    int32 = 2
	QuantityScale int32 = 3
)

// Money rounds an aggregated amount to the money column scale. SQLite sums
// NUMERIC columns as REAL, so a scanned SUM can carry float noise such as
// 0.30000000000000004.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Quantity rounds an aggregated stock quantity to the quantity column scale.
func Quantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}
