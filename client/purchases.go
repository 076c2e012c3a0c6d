package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"druckerei-client/api"
	"druckerei-client/cache"
	"druckerei-client/filter"
	"druckerei-client/models"
	"druckerei-client/mutation"
	"druckerei-client/utils"
)

// Mutation kinds for in-flight tracking; one spinner per kind and entity.
const (
	KindAddPayment     = "add-payment"
	KindEditPayment    = "edit-payment"
	KindDeletePayment  = "delete-payment"
	KindAddNote        = "add-note"
	KindEditNote       = "edit-note"
	KindDeleteNote     = "delete-note"
	KindAddInstallment = "add-installment"
	KindPayInstallment = "pay-installment"
	KindCreate         = "create"
	KindDelete         = "delete"
)

// PurchaseSource is the material purchases data source: the Go counterpart
// of the dashboard's purchases list hook.
type PurchaseSource struct {
	*source[models.MaterialPurchase]
}

func purchaseAccessor() filter.Accessor[models.MaterialPurchase] {
	return filter.Accessor[models.MaterialPurchase]{
		SearchFields: func(p models.MaterialPurchase) []string {
			fields := []string{p.SupplierName, p.Description, p.Category}
			for _, n := range p.Notes {
				fields = append(fields, n.Text)
			}
			return fields
		},
		Date:     func(p models.MaterialPurchase) string { return p.Date },
		Status:   func(p models.MaterialPurchase) string { return p.Status.String() },
		Category: func(p models.MaterialPurchase) string { return p.Category },
		Amount: func(p models.MaterialPurchase) decimal.Decimal {
			return p.TotalAmount
		},
		IsPaid:     func(p models.MaterialPurchase) bool { return p.Status == models.StatusPaid },
		HasBalance: func(p models.MaterialPurchase) bool { return p.Balance.IsPositive() },
	}
}

func NewPurchaseSource(apiClient *api.Client, notify mutation.Notifier, policies cache.Policies) *PurchaseSource {
	return &PurchaseSource{
		source: newSource(apiClient, notify, policies,
			"purchases", "/api/purchases",
			models.NormalizeMaterialPurchase, purchaseAccessor(), purchaseStats),
	}
}

// PaymentInput is the user-entered payment form.
type PaymentInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Method string  `json:"payment_method" validate:"required"`
	PaidAt string  `json:"paid_at" validate:"omitempty"`
	Note   string  `json:"note"`
}

// PaymentUpdate carries only the fields the user actually changed.
type PaymentUpdate struct {
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Method *string  `json:"payment_method,omitempty"`
	PaidAt *string  `json:"paid_at,omitempty"`
	Note   *string  `json:"note,omitempty"`
}

type NoteInput struct {
	Text string `json:"text" validate:"required,min=1"`
}

type InstallmentInput struct {
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	DueDate string  `json:"due_date" validate:"required"`
}

// PurchaseInput is the create form for a material purchase.
type PurchaseInput struct {
	SupplierID         string  `json:"supplier_id" validate:"required"`
	SupplierName       string  `json:"supplier_name"`
	Description        string  `json:"description" validate:"required"`
	Category           string  `json:"category"`
	Date               string  `json:"date"`
	TotalAmount        float64 `json:"total_amount" validate:"gte=0"`
	HasInstallmentPlan bool    `json:"has_installment_plan"`
}

func paymentFromInput(ownerID string, in PaymentInput) models.Payment {
	paidAt := time.Now()
	if t, ok := filter.ParseDate(in.PaidAt); ok {
		paidAt = t
	}
	return models.Payment{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Amount:  utils.MoneyFromInput(in.Amount),
		Method:  in.Method,
		PaidAt:  paidAt,
		Note:    in.Note,
	}
}

// AddPayment appends a payment optimistically; the derived aggregates
// (amount paid, balance, status) update before the backend answers.
func (s *PurchaseSource) AddPayment(ctx context.Context, purchaseID string, in PaymentInput) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindAddPayment, purchaseID)
	defer done()

	out := s.engine.Apply(ctx, "add payment", purchaseID,
		func(p models.MaterialPurchase) (models.MaterialPurchase, error) {
			if err := checkInput(&in); err != nil {
				return p, err
			}
			pay := paymentFromInput(p.ID, in)
			if err := models.CheckPayment(pay); err != nil {
				return p, err
			}
			p.Payments = append(p.Payments, pay)
			return models.ApplyTotals(p), nil
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			return api.Post[models.MaterialPurchase](ctx, s.api, s.basePath+"/"+purchaseID+"/payments", in)
		})
	if out.OK {
		s.notify.Success("payment added")
	}
	return out
}

// UpdatePayment edits an existing payment in place.
func (s *PurchaseSource) UpdatePayment(ctx context.Context, purchaseID, paymentID string, in PaymentUpdate) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindEditPayment, purchaseID)
	defer done()

	out := s.engine.Apply(ctx, "update payment", purchaseID,
		func(p models.MaterialPurchase) (models.MaterialPurchase, error) {
			if err := checkPtrInput(&in); err != nil {
				return p, err
			}
			idx := -1
			for i, pay := range p.Payments {
				if pay.ID == paymentID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return p, &models.ValidationError{Field: "payment_id", Reason: "unknown payment"}
			}
			pay := p.Payments[idx]
			if in.Amount != nil {
				pay.Amount = utils.MoneyFromInput(*in.Amount)
			}
			if in.Method != nil {
				pay.Method = *in.Method
			}
			if in.PaidAt != nil {
				if t, ok := filter.ParseDate(*in.PaidAt); ok {
					pay.PaidAt = t
				}
			}
			if in.Note != nil {
				pay.Note = *in.Note
			}
			if err := models.CheckPayment(pay); err != nil {
				return p, err
			}
			p.Payments[idx] = pay
			return models.ApplyTotals(p), nil
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			return api.Put[models.MaterialPurchase](ctx, s.api, s.basePath+"/"+purchaseID+"/payments/"+paymentID, in)
		})
	if out.OK {
		s.notify.Success("payment updated")
	}
	return out
}

// DeletePayment removes a payment and rolls the aggregates back down.
func (s *PurchaseSource) DeletePayment(ctx context.Context, purchaseID, paymentID string) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindDeletePayment, purchaseID)
	defer done()

	out := s.engine.Apply(ctx, "delete payment", purchaseID,
		func(p models.MaterialPurchase) (models.MaterialPurchase, error) {
			kept := p.Payments[:0]
			found := false
			for _, pay := range p.Payments {
				if pay.ID == paymentID {
					found = true
					continue
				}
				kept = append(kept, pay)
			}
			if !found {
				return p, &models.ValidationError{Field: "payment_id", Reason: "unknown payment"}
			}
			p.Payments = kept
			// Unlink any installment pointing at the deleted payment.
			for i := range p.Installments {
				if p.Installments[i].PaymentID == paymentID {
					p.Installments[i].PaymentID = ""
					p.Installments[i].IsPaid = false
				}
			}
			return models.ApplyTotals(p), nil
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			if err := s.api.Delete(ctx, s.basePath+"/"+purchaseID+"/payments/"+paymentID); err != nil {
				return models.MaterialPurchase{}, err
			}
			return api.Get[models.MaterialPurchase](ctx, s.api, s.basePath+"/"+purchaseID)
		})
	if out.OK {
		s.notify.Success("payment deleted")
	}
	return out
}

// AddNote appends a note.
func (s *PurchaseSource) AddNote(ctx context.Context, purchaseID string, in NoteInput) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindAddNote, purchaseID)
	defer done()

	out := s.engine.Apply(ctx, "add note", purchaseID,
		func(p models.MaterialPurchase) (models.MaterialPurchase, error) {
			if err := checkInput(&in); err != nil {
				return p, err
			}
			now := time.Now()
			p.Notes = append(p.Notes, models.Note{
				ID:        uuid.NewString(),
				OwnerID:   p.ID,
				Text:      in.Text,
				CreatedAt: now,
				UpdatedAt: now,
			})
			return p, nil
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			return api.Post[models.MaterialPurchase](ctx, s.api, s.basePath+"/"+purchaseID+"/notes", in)
		})
	if out.OK {
		s.notify.Success("note added")
	}
	return out
}

// UpdateNote replaces a note's text.
func (s *PurchaseSource) UpdateNote(ctx context.Context, purchaseID, noteID string, in NoteInput) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindEditNote, purchaseID)
	defer done()

	out := s.engine.Apply(ctx, "update note", purchaseID,
		func(p models.MaterialPurchase) (models.MaterialPurchase, error) {
			if err := checkInput(&in); err != nil {
				return p, err
			}
			for i := range p.Notes {
				if p.Notes[i].ID == noteID {
					p.Notes[i].Text = in.Text
					p.Notes[i].UpdatedAt = time.Now()
					return p, nil
				}
			}
			return p, &models.ValidationError{Field: "note_id", Reason: "unknown note"}
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			return api.Put[models.MaterialPurchase](ctx, s.api, s.basePath+"/"+purchaseID+"/notes/"+noteID, in)
		})
	if out.OK {
		s.notify.Success("note updated")
	}
	return out
}

// DeleteNote removes a note.
func (s *PurchaseSource) DeleteNote(ctx context.Context, purchaseID, noteID string) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindDeleteNote, purchaseID)
	defer done()

	out := s.engine.Apply(ctx, "delete note", purchaseID,
		func(p models.MaterialPurchase) (models.MaterialPurchase, error) {
			kept := p.Notes[:0]
			found := false
			for _, n := range p.Notes {
				if n.ID == noteID {
					found = true
					continue
				}
				kept = append(kept, n)
			}
			if !found {
				return p, &models.ValidationError{Field: "note_id", Reason: "unknown note"}
			}
			p.Notes = kept
			return p, nil
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			if err := s.api.Delete(ctx, s.basePath+"/"+purchaseID+"/notes/"+noteID); err != nil {
				return models.MaterialPurchase{}, err
			}
			return api.Get[models.MaterialPurchase](ctx, s.api, s.basePath+"/"+purchaseID)
		})
	if out.OK {
		s.notify.Success("note deleted")
	}
	return out
}

// AddInstallment appends an expected future payment to the plan, switching
// the plan flag on for entities that had none.
func (s *PurchaseSource) AddInstallment(ctx context.Context, purchaseID string, in InstallmentInput) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindAddInstallment, purchaseID)
	defer done()

	out := s.engine.Apply(ctx, "add installment", purchaseID,
		func(p models.MaterialPurchase) (models.MaterialPurchase, error) {
			if err := checkInput(&in); err != nil {
				return p, err
			}
			p.HasInstallmentPlan = true
			p.Installments = append(p.Installments, models.Installment{
				ID:      uuid.NewString(),
				Amount:  utils.MoneyFromInput(in.Amount),
				DueDate: in.DueDate,
			})
			return p, nil
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			return api.Post[models.MaterialPurchase](ctx, s.api, s.basePath+"/"+purchaseID+"/installments", in)
		})
	if out.OK {
		s.notify.Success("installment added")
	}
	return out
}

// PayInstallment records a payment against one installment: the installment
// flips to paid and a linked payment joins the rollup in the same transform.
func (s *PurchaseSource) PayInstallment(ctx context.Context, purchaseID, installmentID string, in PaymentInput) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindPayInstallment, purchaseID)
	defer done()

	out := s.engine.Apply(ctx, "pay installment", purchaseID,
		func(p models.MaterialPurchase) (models.MaterialPurchase, error) {
			if err := checkInput(&in); err != nil {
				return p, err
			}
			idx := -1
			for i, inst := range p.Installments {
				if inst.ID == installmentID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return p, &models.ValidationError{Field: "installment_id", Reason: "unknown installment"}
			}
			if p.Installments[idx].IsPaid {
				return p, &models.ValidationError{Field: "installment_id", Reason: "already paid"}
			}
			pay := paymentFromInput(p.ID, in)
			if err := models.CheckPayment(pay); err != nil {
				return p, err
			}
			p.Payments = append(p.Payments, pay)
			p.Installments[idx].IsPaid = true
			p.Installments[idx].PaymentID = pay.ID
			return models.ApplyTotals(p), nil
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			return api.Put[models.MaterialPurchase](ctx, s.api, s.basePath+"/"+purchaseID+"/installments/"+installmentID+"/pay", in)
		})
	if out.OK {
		s.notify.Success("installment paid")
	}
	return out
}

// Create inserts a temporary shadow into the current list until the backend
// confirms the real entity.
func (s *PurchaseSource) Create(ctx context.Context, in PurchaseInput) mutation.Outcome[models.MaterialPurchase] {
	if err := checkInput(&in); err != nil {
		return s.engine.Reject("create purchase", err)
	}

	done := s.inflight.Start(KindCreate, "")
	defer done()

	out := s.engine.Create(ctx, "create purchase", s.listKey(),
		func(tempID string) models.MaterialPurchase {
			return models.MaterialPurchase{
				ID:                 tempID,
				SupplierID:         in.SupplierID,
				SupplierName:       in.SupplierName,
				Description:        in.Description,
				Category:           in.Category,
				Date:               in.Date,
				TotalAmount:        utils.MoneyFromInput(in.TotalAmount),
				HasInstallmentPlan: in.HasInstallmentPlan,
				CreatedAt:          time.Now(),
				UpdatedAt:          time.Now(),
			}
		},
		func(ctx context.Context) (models.MaterialPurchase, error) {
			return api.Post[models.MaterialPurchase](ctx, s.api, s.basePath, in)
		})
	if out.OK {
		s.notify.Success("purchase created")
	}
	return out
}

// Delete removes the purchase.
func (s *PurchaseSource) Delete(ctx context.Context, purchaseID string) mutation.Outcome[models.MaterialPurchase] {
	done := s.inflight.Start(KindDelete, purchaseID)
	defer done()

	out := s.engine.Delete(ctx, "delete purchase", purchaseID,
		func(ctx context.Context) error {
			return s.api.Delete(ctx, s.basePath+"/"+purchaseID)
		})
	if out.OK {
		s.notify.Success("purchase deleted")
	}
	return out
}
