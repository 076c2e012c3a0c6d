package models

import "github.com/shopspring/decimal"

// PaymentStatus is derived from total_amount vs amount_paid, never stored
// independently of the figures it summarizes.
type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "unpaid"
	StatusPartiallyPaid PaymentStatus = "partially_paid"
	StatusPaid          PaymentStatus = "paid"
)

// IsValid checks if the status is a known PaymentStatus.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusUnpaid, StatusPartiallyPaid, StatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus.
func (s PaymentStatus) String() string {
	return string(s)
}

// StatusFor derives the payment status from a total and the amount paid so
// far. A zero total counts as paid (amount_paid >= total_amount holds).
func StatusFor(total, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.GreaterThan(decimal.Zero):
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}
