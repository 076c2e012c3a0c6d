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

// OrderSource is the customer orders data source. Same contract as
// PurchaseSource; orders additionally match search hits on line items.
type OrderSource struct {
	*source[models.Order]
}

func orderAccessor() filter.Accessor[models.Order] {
	return filter.Accessor[models.Order]{
		SearchFields: func(o models.Order) []string {
			fields := []string{o.OrderNumber, o.CustomerName, o.Category}
			for _, it := range o.Items {
				fields = append(fields, it.Description)
			}
			for _, n := range o.Notes {
				fields = append(fields, n.Text)
			}
			return fields
		},
		Date:     func(o models.Order) string { return o.Date },
		Status:   func(o models.Order) string { return o.Status.String() },
		Category: func(o models.Order) string { return o.Category },
		Amount: func(o models.Order) decimal.Decimal {
			return o.TotalAmount
		},
		IsPaid:     func(o models.Order) bool { return o.Status == models.StatusPaid },
		HasBalance: func(o models.Order) bool { return o.Balance.IsPositive() },
	}
}

func NewOrderSource(apiClient *api.Client, notify mutation.Notifier, policies cache.Policies) *OrderSource {
	return &OrderSource{
		source: newSource(apiClient, notify, policies,
			"orders", "/api/orders",
			models.NormalizeOrder, orderAccessor(), orderStats),
	}
}

// OrderItemInput is one line of the order create form.
type OrderItemInput struct {
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// OrderInput is the create form for an order.
type OrderInput struct {
	CustomerName       string           `json:"customer_name" validate:"required"`
	Category           string           `json:"category"`
	Date               string           `json:"date"`
	Items              []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	HasInstallmentPlan bool             `json:"has_installment_plan"`
}

// AddPayment appends a payment to the order's rollup optimistically.
func (s *OrderSource) AddPayment(ctx context.Context, orderID string, in PaymentInput) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindAddPayment, orderID)
	defer done()

	out := s.engine.Apply(ctx, "add payment", orderID,
		func(o models.Order) (models.Order, error) {
			if err := checkInput(&in); err != nil {
				return o, err
			}
			pay := paymentFromInput(o.ID, in)
			if err := models.CheckPayment(pay); err != nil {
				return o, err
			}
			o.Payments = append(o.Payments, pay)
			return models.ApplyOrderTotals(o), nil
		},
		func(ctx context.Context) (models.Order, error) {
			return api.Post[models.Order](ctx, s.api, s.basePath+"/"+orderID+"/payments", in)
		})
	if out.OK {
		s.notify.Success("payment added")
	}
	return out
}

// UpdatePayment edits an existing payment on the order.
func (s *OrderSource) UpdatePayment(ctx context.Context, orderID, paymentID string, in PaymentUpdate) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindEditPayment, orderID)
	defer done()

	out := s.engine.Apply(ctx, "update payment", orderID,
		func(o models.Order) (models.Order, error) {
			if err := checkPtrInput(&in); err != nil {
				return o, err
			}
			idx := -1
			for i, pay := range o.Payments {
				if pay.ID == paymentID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return o, &models.ValidationError{Field: "payment_id", Reason: "unknown payment"}
			}
			pay := o.Payments[idx]
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
				return o, err
			}
			o.Payments[idx] = pay
			return models.ApplyOrderTotals(o), nil
		},
		func(ctx context.Context) (models.Order, error) {
			return api.Put[models.Order](ctx, s.api, s.basePath+"/"+orderID+"/payments/"+paymentID, in)
		})
	if out.OK {
		s.notify.Success("payment updated")
	}
	return out
}

// DeletePayment removes a payment from the order's rollup.
func (s *OrderSource) DeletePayment(ctx context.Context, orderID, paymentID string) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindDeletePayment, orderID)
	defer done()

	out := s.engine.Apply(ctx, "delete payment", orderID,
		func(o models.Order) (models.Order, error) {
			kept := o.Payments[:0]
			found := false
			for _, pay := range o.Payments {
				if pay.ID == paymentID {
					found = true
					continue
				}
				kept = append(kept, pay)
			}
			if !found {
				return o, &models.ValidationError{Field: "payment_id", Reason: "unknown payment"}
			}
			o.Payments = kept
			for i := range o.Installments {
				if o.Installments[i].PaymentID == paymentID {
					o.Installments[i].PaymentID = ""
					o.Installments[i].IsPaid = false
				}
			}
			return models.ApplyOrderTotals(o), nil
		},
		func(ctx context.Context) (models.Order, error) {
			if err := s.api.Delete(ctx, s.basePath+"/"+orderID+"/payments/"+paymentID); err != nil {
				return models.Order{}, err
			}
			return api.Get[models.Order](ctx, s.api, s.basePath+"/"+orderID)
		})
	if out.OK {
		s.notify.Success("payment deleted")
	}
	return out
}

// AddNote appends a note to the order.
func (s *OrderSource) AddNote(ctx context.Context, orderID string, in NoteInput) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindAddNote, orderID)
	defer done()

	out := s.engine.Apply(ctx, "add note", orderID,
		func(o models.Order) (models.Order, error) {
			if err := checkInput(&in); err != nil {
				return o, err
			}
			now := time.Now()
			o.Notes = append(o.Notes, models.Note{
				ID:        uuid.NewString(),
				OwnerID:   o.ID,
				Text:      in.Text,
				CreatedAt: now,
				UpdatedAt: now,
			})
			return o, nil
		},
		func(ctx context.Context) (models.Order, error) {
			return api.Post[models.Order](ctx, s.api, s.basePath+"/"+orderID+"/notes", in)
		})
	if out.OK {
		s.notify.Success("note added")
	}
	return out
}

// UpdateNote replaces a note's text on the order.
func (s *OrderSource) UpdateNote(ctx context.Context, orderID, noteID string, in NoteInput) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindEditNote, orderID)
	defer done()

	out := s.engine.Apply(ctx, "update note", orderID,
		func(o models.Order) (models.Order, error) {
			if err := checkInput(&in); err != nil {
				return o, err
			}
			for i := range o.Notes {
				if o.Notes[i].ID == noteID {
					o.Notes[i].Text = in.Text
					o.Notes[i].UpdatedAt = time.Now()
					return o, nil
				}
			}
			return o, &models.ValidationError{Field: "note_id", Reason: "unknown note"}
		},
		func(ctx context.Context) (models.Order, error) {
			return api.Put[models.Order](ctx, s.api, s.basePath+"/"+orderID+"/notes/"+noteID, in)
		})
	if out.OK {
		s.notify.Success("note updated")
	}
	return out
}

// DeleteNote removes a note from the order.
func (s *OrderSource) DeleteNote(ctx context.Context, orderID, noteID string) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindDeleteNote, orderID)
	defer done()

	out := s.engine.Apply(ctx, "delete note", orderID,
		func(o models.Order) (models.Order, error) {
			kept := o.Notes[:0]
			found := false
			for _, n := range o.Notes {
				if n.ID == noteID {
					found = true
					continue
				}
				kept = append(kept, n)
			}
			if !found {
				return o, &models.ValidationError{Field: "note_id", Reason: "unknown note"}
			}
			o.Notes = kept
			return o, nil
		},
		func(ctx context.Context) (models.Order, error) {
			if err := s.api.Delete(ctx, s.basePath+"/"+orderID+"/notes/"+noteID); err != nil {
				return models.Order{}, err
			}
			return api.Get[models.Order](ctx, s.api, s.basePath+"/"+orderID)
		})
	if out.OK {
		s.notify.Success("note deleted")
	}
	return out
}

// AddInstallment appends an installment to the order's plan.
func (s *OrderSource) AddInstallment(ctx context.Context, orderID string, in InstallmentInput) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindAddInstallment, orderID)
	defer done()

	out := s.engine.Apply(ctx, "add installment", orderID,
		func(o models.Order) (models.Order, error) {
			if err := checkInput(&in); err != nil {
				return o, err
			}
			o.HasInstallmentPlan = true
			o.Installments = append(o.Installments, models.Installment{
				ID:      uuid.NewString(),
				Amount:  utils.MoneyFromInput(in.Amount),
				DueDate: in.DueDate,
			})
			return o, nil
		},
		func(ctx context.Context) (models.Order, error) {
			return api.Post[models.Order](ctx, s.api, s.basePath+"/"+orderID+"/installments", in)
		})
	if out.OK {
		s.notify.Success("installment added")
	}
	return out
}

// PayInstallment pays one installment of the order's plan.
func (s *OrderSource) PayInstallment(ctx context.Context, orderID, installmentID string, in PaymentInput) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindPayInstallment, orderID)
	defer done()

	out := s.engine.Apply(ctx, "pay installment", orderID,
		func(o models.Order) (models.Order, error) {
			if err := checkInput(&in); err != nil {
				return o, err
			}
			idx := -1
			for i, inst := range o.Installments {
				if inst.ID == installmentID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return o, &models.ValidationError{Field: "installment_id", Reason: "unknown installment"}
			}
			if o.Installments[idx].IsPaid {
				return o, &models.ValidationError{Field: "installment_id", Reason: "already paid"}
			}
			pay := paymentFromInput(o.ID, in)
			if err := models.CheckPayment(pay); err != nil {
				return o, err
			}
			o.Payments = append(o.Payments, pay)
			o.Installments[idx].IsPaid = true
			o.Installments[idx].PaymentID = pay.ID
			return models.ApplyOrderTotals(o), nil
		},
		func(ctx context.Context) (models.Order, error) {
			return api.Put[models.Order](ctx, s.api, s.basePath+"/"+orderID+"/installments/"+installmentID+"/pay", in)
		})
	if out.OK {
		s.notify.Success("installment paid")
	}
	return out
}

// Create inserts a temporary order shadow until the backend confirms.
func (s *OrderSource) Create(ctx context.Context, in OrderInput) mutation.Outcome[models.Order] {
	if err := checkInput(&in); err != nil {
		return s.engine.Reject("create order", err)
	}

	done := s.inflight.Start(KindCreate, "")
	defer done()

	out := s.engine.Create(ctx, "create order", s.listKey(),
		func(tempID string) models.Order {
			items := make([]models.OrderItem, 0, len(in.Items))
			total := decimal.Zero
			for _, it := range in.Items {
				unit := utils.MoneyFromInput(it.UnitPrice)
				line := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
				items = append(items, models.OrderItem{
					ID:          uuid.NewString(),
					Description: it.Description,
					Quantity:    it.Quantity,
					UnitPrice:   unit,
					LineTotal:   line,
				})
				total = total.Add(line)
			}
			return models.Order{
				ID:                 tempID,
				CustomerName:       in.CustomerName,
				Category:           in.Category,
				Date:               in.Date,
				Items:              items,
				TotalAmount:        total,
				HasInstallmentPlan: in.HasInstallmentPlan,
				CreatedAt:          time.Now(),
				UpdatedAt:          time.Now(),
			}
		},
		func(ctx context.Context) (models.Order, error) {
			return api.Post[models.Order](ctx, s.api, s.basePath, in)
		})
	if out.OK {
		s.notify.Success("order created")
	}
	return out
}

// Delete removes the order.
func (s *OrderSource) Delete(ctx context.Context, orderID string) mutation.Outcome[models.Order] {
	done := s.inflight.Start(KindDelete, orderID)
	defer done()

	out := s.engine.Delete(ctx, "delete order", orderID,
		func(ctx context.Context) error {
			return s.api.Delete(ctx, s.basePath+"/"+orderID)
		})
	if out.OK {
		s.notify.Success("order deleted")
	}
	return out
}
