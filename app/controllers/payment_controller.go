package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/323network/platform/internal/pkg/usercontext"
)

const maxPaymentPageSize = 100

// HandleListPayments returns the authenticated user's payments,
// newest first, with offset/limit paging.
func HandleListPayments(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPaymentPageSize {
		limit = maxPaymentPageSize
	}

	payments, err := getRepos().Payment.ListByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load payments"})
	}

	return c.JSON(fiber.Map{"success": true, "payments": payments})
}
