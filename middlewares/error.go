package middlewares

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"druckerei-client/logger"
)

// errorBody is the envelope every client-facing error uses:
// {"error": {"message": "..."}}.
func errorBody(msg string, fields map[string]string) fiber.Map {
	inner := fiber.Map{"message": msg}
	if len(fields) > 0 {
		inner["fields"] = fields
	}
	return fiber.Map{"error": inner}
}

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(errorBody(fe.Message, nil))
	}

	// 2) Validation errors (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(errorBody("validation failed", out))
	}

	// 3) Unknown errors (500)
	log := logger.WithComponent("http")
	log.Error().Err(err).Msg("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody("internal server error", nil))
}
