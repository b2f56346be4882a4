// handlers/errors.go
package handlers

import (
	"errors"
	"log"

	"dream-league-engine/middleware"
	"dream-league-engine/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps engine failures onto HTTP statuses. Anything that is not
// an engine sentinel is a 500 and its detail stays in the log.
func respondError(c *fiber.Ctx, err error) error {
	code := services.ErrorCode(err)
	if code == "" {
		log.Printf("❌ [HTTP] %s %s by %q: %v", c.Method(), c.Path(), middleware.UserID(c), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	status := fiber.StatusConflict
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidParameters), errors.Is(err, services.ErrInvalidFeeBasisPoints):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "code": code})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "invalid JSON",
		"details": err.Error(),
		"code":    services.ErrorCode(services.ErrInvalidParameters),
	})
}

func storageUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "object storage is not configured"})
}
