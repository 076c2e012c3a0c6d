package controllers

import (
	"github.com/gofiber/fiber/v2"

	"druckerei-client/database"
)

// GetSuppliers returns the full supplier list, name-sorted. The dropdown
// consumer never paginates, so no query params apply here.
func GetSuppliers(c *fiber.Ctx) error {
	data := database.DB.ListSuppliers()
	return c.JSON(fiber.Map{"data": data, "total_count": len(data)})
}
