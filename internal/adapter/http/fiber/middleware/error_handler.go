package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
)

// ErrorHandler maps typed domain errors to HTTP statuses: missing
// credentials are our misconfiguration (500), upstream rejections are a
// bad gateway (502). fiber.Errors keep their own code.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		switch {
		case domain.IsConfigError(err):
			code = fiber.StatusInternalServerError
		case domain.IsProviderError(err):
			code = fiber.StatusBadGateway
		default:
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("Request failed", zap.Error(err), zap.String("path", c.Path()), zap.Int("status", code))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
