package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"druckerei-client/database"
	"druckerei-client/filter"
	"druckerei-client/middlewares"
	"druckerei-client/models"
	"druckerei-client/utils"
)

func GetOrders(c *fiber.Ctx) error {
	data, total := database.DB.ListOrders(listQuery(c))
	return c.JSON(fiber.Map{"data": data, "total_count": total})
}

func GetOrder(c *fiber.Ctx) error {
	o, err := database.DB.GetOrder(c.Params("id"))
	if err != nil {
		return notFoundOr(err, "order")
	}
	return c.JSON(o)
}

func CreateOrder(c *fiber.Ctx) error {
	var dto orderDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	items := make([]models.OrderItem, 0, len(dto.Items))
	total := decimal.Zero
	for _, it := range dto.Items {
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
	o := database.DB.CreateOrder(models.Order{
		CustomerName:       dto.CustomerName,
		Category:           dto.Category,
		Date:               dto.Date,
		Items:              items,
		TotalAmount:        total,
		HasInstallmentPlan: dto.HasInstallmentPlan,
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func DeleteOrder(c *fiber.Ctx) error {
	if err := database.DB.DeleteOrder(c.Params("id")); err != nil {
		return notFoundOr(err, "order")
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func CreateOrderPayment(c *fiber.Ctx) error {
	var dto paymentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	o, err := database.DB.UpdateOrder(c.Params("id"), func(o *models.Order) error {
		o.Payments = append(o.Payments, paymentFromDTO(o.ID, dto))
		return nil
	})
	if err != nil {
		return notFoundOr(err, "order")
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func UpdateOrderPayment(c *fiber.Ctx) error {
	var dto paymentUpdateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&dto)
	paymentID := c.Params("pid")

	o, err := database.DB.UpdateOrder(c.Params("id"), func(o *models.Order) error {
		for i := range o.Payments {
			if o.Payments[i].ID != paymentID {
				continue
			}
			if dto.Amount != nil {
				o.Payments[i].Amount = utils.MoneyFromInput(*dto.Amount)
			}
			if dto.Method != nil {
				o.Payments[i].Method = *dto.Method
			}
			if dto.PaidAt != nil {
				if t, ok := filter.ParseDate(*dto.PaidAt); ok {
					o.Payments[i].PaidAt = t
				}
			}
			if dto.Note != nil {
				o.Payments[i].Note = *dto.Note
			}
			return nil
		}
		return database.ErrNotFound
	})
	if err != nil {
		return notFoundOr(err, "payment")
	}
	return c.JSON(o)
}

func DeleteOrderPayment(c *fiber.Ctx) error {
	paymentID := c.Params("pid")
	_, err := database.DB.UpdateOrder(c.Params("id"), func(o *models.Order) error {
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
			return database.ErrNotFound
		}
		o.Payments = kept
		for i := range o.Installments {
			if o.Installments[i].PaymentID == paymentID {
				o.Installments[i].PaymentID = ""
				o.Installments[i].IsPaid = false
			}
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "payment")
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func CreateOrderNote(c *fiber.Ctx) error {
	var dto noteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	o, err := database.DB.UpdateOrder(c.Params("id"), func(o *models.Order) error {
		now := time.Now()
		o.Notes = append(o.Notes, models.Note{
			ID:        uuid.NewString(),
			OwnerID:   o.ID,
			Text:      dto.Text,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return nil
	})
	if err != nil {
		return notFoundOr(err, "order")
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func UpdateOrderNote(c *fiber.Ctx) error {
	var dto noteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	noteID := c.Params("nid")
	o, err := database.DB.UpdateOrder(c.Params("id"), func(o *models.Order) error {
		for i := range o.Notes {
			if o.Notes[i].ID == noteID {
				o.Notes[i].Text = dto.Text
				o.Notes[i].UpdatedAt = time.Now()
				return nil
			}
		}
		return database.ErrNotFound
	})
	if err != nil {
		return notFoundOr(err, "note")
	}
	return c.JSON(o)
}

func DeleteOrderNote(c *fiber.Ctx) error {
	noteID := c.Params("nid")
	_, err := database.DB.UpdateOrder(c.Params("id"), func(o *models.Order) error {
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
			return database.ErrNotFound
		}
		o.Notes = kept
		return nil
	})
	if err != nil {
		return notFoundOr(err, "note")
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func CreateOrderInstallment(c *fiber.Ctx) error {
	var dto installmentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	o, err := database.DB.UpdateOrder(c.Params("id"), func(o *models.Order) error {
		o.HasInstallmentPlan = true
		o.Installments = append(o.Installments, models.Installment{
			ID:      uuid.NewString(),
			Amount:  utils.MoneyFromInput(dto.Amount),
			DueDate: dto.DueDate,
		})
		return nil
	})
	if err != nil {
		return notFoundOr(err, "order")
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func PayOrderInstallment(c *fiber.Ctx) error {
	var dto paymentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	installmentID := c.Params("iid")
	o, err := database.DB.UpdateOrder(c.Params("id"), func(o *models.Order) error {
		for i := range o.Installments {
			if o.Installments[i].ID != installmentID {
				continue
			}
			if o.Installments[i].IsPaid {
				return fiber.NewError(fiber.StatusConflict, "installment already paid")
			}
			pay := paymentFromDTO(o.ID, dto)
			o.Payments = append(o.Payments, pay)
			o.Installments[i].IsPaid = true
			o.Installments[i].PaymentID = pay.ID
			return nil
		}
		return database.ErrNotFound
	})
	if err != nil {
		return notFoundOr(err, "installment")
	}
	return c.JSON(o)
}
