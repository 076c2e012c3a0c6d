package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer production order. It shares the payments rollup shape
// of MaterialPurchase and adds line items, which take part in text search
// (a search hit on an item description surfaces the whole order).
type Order struct {
	ID           string `json:"id"`
	OrderNumber  string `json:"order_number"`
	CustomerName string `json:"customer_name"`
	Category     string `json:"category"`

	// Raw backend date string, see MaterialPurchase.Date.
	Date string `json:"date"`

	Items []OrderItem `json:"items"`

	TotalAmount decimal.Decimal `json:"total_amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Balance     decimal.Decimal `json:"balance"`
	Status      PaymentStatus   `json:"payment_status"`

	Payments []Payment `json:"payments"`
	Notes    []Note    `json:"notes"`

	HasInstallmentPlan bool          `json:"has_installment_plan"`
	Installments       []Installment `json:"installments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// EntityID implements cache.Entity.
func (o Order) EntityID() string { return o.ID }

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	co := o
	co.Items = append([]OrderItem(nil), o.Items...)
	co.Payments = append([]Payment(nil), o.Payments...)
	co.Notes = append([]Note(nil), o.Notes...)
	co.Installments = append([]Installment(nil), o.Installments...)
	return co
}

// ApplyOrderTotals recomputes the derived payment fields of an order.
func ApplyOrderTotals(o Order) Order {
	t := ComputeTotals(o.TotalAmount, o.Payments)
	o.AmountPaid = t.AmountPaid
	o.Balance = t.Balance
	o.Status = t.Status
	return o
}

// NormalizeOrder is the cache-write-boundary constructor for orders.
func NormalizeOrder(o Order) Order {
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	if o.Payments == nil {
		o.Payments = []Payment{}
	}
	if o.Notes == nil {
		o.Notes = []Note{}
	}
	if !o.HasInstallmentPlan {
		o.Installments = nil
	} else if o.Installments == nil {
		o.Installments = []Installment{}
	}
	return ApplyOrderTotals(o)
}
