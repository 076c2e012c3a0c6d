package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// MoneyFromInput converts a float64 amount from an input DTO to the decimal
// representation used everywhere past the input boundary.
func MoneyFromInput(x float64) decimal.Decimal {
	return decimal.NewFromFloat(Round2(x))
}
