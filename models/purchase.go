package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialPurchase is the live state of a material purchase as served by the
// backend. Ids are assigned by the backend; the client only ever invents
// temporary shadow ids during an optimistic create.
type MaterialPurchase struct {
	ID           string `json:"id"`
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	Description  string `json:"description"`
	Category     string `json:"category"`

	// Date as supplied by the backend. Kept as the raw string on purpose:
	// records with unparseable dates must survive into the cache and stay
	// visible under the "all" bucket (see filter package).
	Date string `json:"date"`

	TotalAmount decimal.Decimal `json:"total_amount"`

	// Payments rollup, server-computed on reads, recomputed locally during
	// optimistic mutations via ApplyTotals.
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Balance    decimal.Decimal `json:"balance"`
	Status     PaymentStatus   `json:"payment_status"`

	Payments []Payment `json:"payments"`
	Notes    []Note    `json:"notes"`

	HasInstallmentPlan bool          `json:"has_installment_plan"`
	Installments       []Installment `json:"installments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment survives edits of its owning entity; display-ordered by PaidAt.
type Payment struct {
	ID      string          `json:"id"`
	OwnerID string          `json:"owner_id"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"payment_method"`
	PaidAt  time.Time       `json:"paid_at"`
	Note    string          `json:"note,omitempty"`
}

type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Installment is one expected future payment of an installment plan.
type Installment struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   string          `json:"due_date"`
	IsPaid    bool            `json:"is_paid"`
	PaymentID string          `json:"payment_id,omitempty"`
}

// EntityID implements cache.Entity.
func (p MaterialPurchase) EntityID() string { return p.ID }

// Clone returns a deep copy; mutators work on clones so a rollback can
// restore the untouched snapshot.
func (p MaterialPurchase) Clone() MaterialPurchase {
	cp := p
	cp.Payments = append([]Payment(nil), p.Payments...)
	cp.Notes = append([]Note(nil), p.Notes...)
	cp.Installments = append([]Installment(nil), p.Installments...)
	return cp
}

// NormalizeMaterialPurchase makes a purchase total (non-partial) once at the
// cache-write boundary: nil sub-collections become empty slices, derived
// fields are recomputed from the payments, and installments are dropped when
// no plan flag is set. Read sites can then rely on every field being present.
func NormalizeMaterialPurchase(p MaterialPurchase) MaterialPurchase {
	if p.Payments == nil {
		p.Payments = []Payment{}
	}
	if p.Notes == nil {
		p.Notes = []Note{}
	}
	if !p.HasInstallmentPlan {
		p.Installments = nil
	} else if p.Installments == nil {
		p.Installments = []Installment{}
	}
	return ApplyTotals(p)
}
