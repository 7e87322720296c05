// Package middleware holds the viewer's fiber middlewares.
package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/models"
)

// ErrorHandler returns a custom error handler middleware
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		logger.Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"request_id", logging.RequestID(c.UserContext()),
			"error", err,
		)

		return c.Status(code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "ERROR",
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}

// ReadOnly rejects every method except GET, HEAD and OPTIONS
func ReadOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		return c.Status(fiber.StatusMethodNotAllowed).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "METHOD_NOT_ALLOWED",
				Message: "The viewer is read-only",
				Path:    c.Path(),
			},
		})
	}
}
