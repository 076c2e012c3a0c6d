package routes

import (
	"github.com/gofiber/fiber/v2"

	"druckerei-client/controllers"
	"druckerei-client/middlewares"
)

// Register wires all HTTP routes of the stub backend.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Idempotency guard covers every mutating endpoint below.
	api.Use(middlewares.Idempotency())

	// Material purchases
	api.Get("/purchases", controllers.GetPurchases)
	api.Get("/purchases/:id", controllers.GetPurchase)
	api.Post("/purchases", controllers.CreatePurchase)
	api.Delete("/purchases/:id", controllers.DeletePurchase)

	api.Post("/purchases/:id/payments", controllers.CreatePurchasePayment)
	api.Put("/purchases/:id/payments/:pid", controllers.UpdatePurchasePayment)
	api.Delete("/purchases/:id/payments/:pid", controllers.DeletePurchasePayment)

	api.Post("/purchases/:id/notes", controllers.CreatePurchaseNote)
	api.Put("/purchases/:id/notes/:nid", controllers.UpdatePurchaseNote)
	api.Delete("/purchases/:id/notes/:nid", controllers.DeletePurchaseNote)

	api.Post("/purchases/:id/installments", controllers.CreatePurchaseInstallment)
	api.Put("/purchases/:id/installments/:iid/pay", controllers.PayPurchaseInstallment)

	// Customer orders
	api.Get("/orders", controllers.GetOrders)
	api.Get("/orders/:id", controllers.GetOrder)
	api.Post("/orders", controllers.CreateOrder)
	api.Delete("/orders/:id", controllers.DeleteOrder)

	api.Post("/orders/:id/payments", controllers.CreateOrderPayment)
	api.Put("/orders/:id/payments/:pid", controllers.UpdateOrderPayment)
	api.Delete("/orders/:id/payments/:pid", controllers.DeleteOrderPayment)

	api.Post("/orders/:id/notes", controllers.CreateOrderNote)
	api.Put("/orders/:id/notes/:nid", controllers.UpdateOrderNote)
	api.Delete("/orders/:id/notes/:nid", controllers.DeleteOrderNote)

	api.Post("/orders/:id/installments", controllers.CreateOrderInstallment)
	api.Put("/orders/:id/installments/:iid/pay", controllers.PayOrderInstallment)

	// Supplier master data (dropdown source)
	api.Get("/suppliers", controllers.GetSuppliers)
}
