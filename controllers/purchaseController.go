package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"druckerei-client/database"
	"druckerei-client/filter"
	"druckerei-client/middlewares"
	"druckerei-client/models"
	"druckerei-client/utils"
)

func listQuery(c *fiber.Ctx) database.ListQuery {
	return database.ListQuery{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Page:     utils.ParseIntDefault(c.Query("page"), 1),
		PageSize: utils.ParseIntDefault(c.Query("page_size"), 200),
	}
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, database.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	}
	return err
}

func GetPurchases(c *fiber.Ctx) error {
	data, total := database.DB.ListPurchases(listQuery(c))
	return c.JSON(fiber.Map{"data": data, "total_count": total})
}

func GetPurchase(c *fiber.Ctx) error {
	p, err := database.DB.GetPurchase(c.Params("id"))
	if err != nil {
		return notFoundOr(err, "purchase")
	}
	return c.JSON(p)
}

func CreatePurchase(c *fiber.Ctx) error {
	var dto purchaseDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	p := database.DB.CreatePurchase(models.MaterialPurchase{
		SupplierID:         dto.SupplierID,
		SupplierName:       dto.SupplierName,
		Description:        dto.Description,
		Category:           dto.Category,
		Date:               dto.Date,
		TotalAmount:        utils.MoneyFromInput(dto.TotalAmount),
		HasInstallmentPlan: dto.HasInstallmentPlan,
	})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func DeletePurchase(c *fiber.Ctx) error {
	if err := database.DB.DeletePurchase(c.Params("id")); err != nil {
		return notFoundOr(err, "purchase")
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func CreatePurchasePayment(c *fiber.Ctx) error {
	var dto paymentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	p, err := database.DB.UpdatePurchase(c.Params("id"), func(p *models.MaterialPurchase) error {
		p.Payments = append(p.Payments, paymentFromDTO(p.ID, dto))
		return nil
	})
	if err != nil {
		return notFoundOr(err, "purchase")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func UpdatePurchasePayment(c *fiber.Ctx) error {
	var dto paymentUpdateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&dto)
	paymentID := c.Params("pid")

	p, err := database.DB.UpdatePurchase(c.Params("id"), func(p *models.MaterialPurchase) error {
		for i := range p.Payments {
			if p.Payments[i].ID != paymentID {
				continue
			}
			if dto.Amount != nil {
				p.Payments[i].Amount = utils.MoneyFromInput(*dto.Amount)
			}
			if dto.Method != nil {
				p.Payments[i].Method = *dto.Method
			}
			if dto.PaidAt != nil {
				if t, ok := filter.ParseDate(*dto.PaidAt); ok {
					p.Payments[i].PaidAt = t
				}
			}
			if dto.Note != nil {
				p.Payments[i].Note = *dto.Note
			}
			return nil
		}
		return database.ErrNotFound
	})
	if err != nil {
		return notFoundOr(err, "payment")
	}
	return c.JSON(p)
}

func DeletePurchasePayment(c *fiber.Ctx) error {
	paymentID := c.Params("pid")
	_, err := database.DB.UpdatePurchase(c.Params("id"), func(p *models.MaterialPurchase) error {
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
			return database.ErrNotFound
		}
		p.Payments = kept
		for i := range p.Installments {
			if p.Installments[i].PaymentID == paymentID {
				p.Installments[i].PaymentID = ""
				p.Installments[i].IsPaid = false
			}
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "payment")
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func CreatePurchaseNote(c *fiber.Ctx) error {
	var dto noteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	p, err := database.DB.UpdatePurchase(c.Params("id"), func(p *models.MaterialPurchase) error {
		now := time.Now()
		p.Notes = append(p.Notes, models.Note{
			ID:        uuid.NewString(),
			OwnerID:   p.ID,
			Text:      dto.Text,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return nil
	})
	if err != nil {
		return notFoundOr(err, "purchase")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func UpdatePurchaseNote(c *fiber.Ctx) error {
	var dto noteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	noteID := c.Params("nid")
	p, err := database.DB.UpdatePurchase(c.Params("id"), func(p *models.MaterialPurchase) error {
		for i := range p.Notes {
			if p.Notes[i].ID == noteID {
				p.Notes[i].Text = dto.Text
				p.Notes[i].UpdatedAt = time.Now()
				return nil
			}
		}
		return database.ErrNotFound
	})
	if err != nil {
		return notFoundOr(err, "note")
	}
	return c.JSON(p)
}

func DeletePurchaseNote(c *fiber.Ctx) error {
	noteID := c.Params("nid")
	_, err := database.DB.UpdatePurchase(c.Params("id"), func(p *models.MaterialPurchase) error {
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
			return database.ErrNotFound
		}
		p.Notes = kept
		return nil
	})
	if err != nil {
		return notFoundOr(err, "note")
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func CreatePurchaseInstallment(c *fiber.Ctx) error {
	var dto installmentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	p, err := database.DB.UpdatePurchase(c.Params("id"), func(p *models.MaterialPurchase) error {
		p.HasInstallmentPlan = true
		p.Installments = append(p.Installments, models.Installment{
			ID:      uuid.NewString(),
			Amount:  utils.MoneyFromInput(dto.Amount),
			DueDate: dto.DueDate,
		})
		return nil
	})
	if err != nil {
		return notFoundOr(err, "purchase")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func PayPurchaseInstallment(c *fiber.Ctx) error {
	var dto paymentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	installmentID := c.Params("iid")
	p, err := database.DB.UpdatePurchase(c.Params("id"), func(p *models.MaterialPurchase) error {
		for i := range p.Installments {
			if p.Installments[i].ID != installmentID {
				continue
			}
			if p.Installments[i].IsPaid {
				return fiber.NewError(fiber.StatusConflict, "installment already paid")
			}
			pay := paymentFromDTO(p.ID, dto)
			p.Payments = append(p.Payments, pay)
			p.Installments[i].IsPaid = true
			p.Installments[i].PaymentID = pay.ID
			return nil
		}
		return database.ErrNotFound
	})
	if err != nil {
		return notFoundOr(err, "installment")
	}
	return c.JSON(p)
}
