package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError rejects malformed input before any optimistic write
// happens, so there is never anything to roll back.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Totals are the derived payment aggregates of a purchase or order.
type Totals struct {
	AmountPaid decimal.Decimal
	Balance    decimal.Decimal
	Status     PaymentStatus
}

// ComputeTotals derives amount_paid, balance and payment_status from a total
// and a list of payments. Pure: deterministic, no side effects, usable both
// for optimistic recomputation and for validating server responses.
//
// Balance is the signed arithmetic result; overpayment yields a negative
// balance while the status caps at "paid". Callers that need a non-negative
// figure for display use DisplayBalance.
func ComputeTotals(total decimal.Decimal, payments []Payment) Totals {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return Totals{
		AmountPaid: paid,
		Balance:    total.Sub(paid),
		Status:     StatusFor(total, paid),
	}
}

// ApplyTotals recomputes the derived fields of a purchase in place.
func ApplyTotals(p MaterialPurchase) MaterialPurchase {
	t := ComputeTotals(p.TotalAmount, p.Payments)
	p.AmountPaid = t.AmountPaid
	p.Balance = t.Balance
	p.Status = t.Status
	return p
}

// DisplayBalance clamps a signed balance at zero for UI use.
func DisplayBalance(balance decimal.Decimal) decimal.Decimal {
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// CheckPayment validates a payment before it enters the optimistic path.
// Negative and zero amounts are rejected, not silently clamped.
func CheckPayment(p Payment) error {
	if !p.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}
