package controllers

import (
	"time"

	"github.com/google/uuid"

	"druckerei-client/filter"
	"druckerei-client/models"
	"druckerei-client/utils"
)

// Input DTOs for the stub API. Field names mirror the wire contract the
// client speaks; amounts arrive as plain numbers and are rounded once here.

type paymentDTO struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Method string  `json:"payment_method" validate:"required"`
	PaidAt string  `json:"paid_at"`
	Note   string  `json:"note"`
}

type paymentUpdateDTO struct {
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
	Method *string  `json:"payment_method"`
	PaidAt *string  `json:"paid_at"`
	Note   *string  `json:"note"`
}

type noteDTO struct {
	Text string `json:"text" validate:"required,min=1"`
}

type installmentDTO struct {
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	DueDate string  `json:"due_date" validate:"required"`
}

type purchaseDTO struct {
	SupplierID         string  `json:"supplier_id" validate:"required"`
	SupplierName       string  `json:"supplier_name"`
	Description        string  `json:"description" validate:"required"`
	Category           string  `json:"category"`
	Date               string  `json:"date"`
	TotalAmount        float64 `json:"total_amount" validate:"gte=0"`
	HasInstallmentPlan bool    `json:"has_installment_plan"`
}

type orderItemDTO struct {
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type orderDTO struct {
	CustomerName       string         `json:"customer_name" validate:"required"`
	Category           string         `json:"category"`
	Date               string         `json:"date"`
	Items              []orderItemDTO `json:"items" validate:"required,min=1,dive"`
	HasInstallmentPlan bool           `json:"has_installment_plan"`
}

func paymentFromDTO(ownerID string, dto paymentDTO) models.Payment {
	paidAt := time.Now()
	if t, ok := filter.ParseDate(dto.PaidAt); ok {
		paidAt = t
	}
	return models.Payment{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Amount:  utils.MoneyFromInput(dto.Amount),
		Method:  dto.Method,
		PaidAt:  paidAt,
		Note:    dto.Note,
	}
}
