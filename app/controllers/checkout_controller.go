package controllers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/323network/platform/app/repository"
	"github.com/323network/platform/internal/pkg/checkout"
	"github.com/323network/platform/internal/pkg/exchange"
	"github.com/323network/platform/internal/pkg/parcelow"
	"github.com/323network/platform/internal/pkg/usercontext"
)

// checkoutCreator is the slice of the checkout service the handler needs.
type checkoutCreator interface {
	CreateCheckout(ctx context.Context, userID uint, paymentID, currency string) (*checkout.Result, error)
}

var (
	checkoutService     checkoutCreator
	checkoutServiceOnce sync.Once
)

// InitializeCheckoutController wires the checkout service from the
// environment and the global repositories.
func InitializeCheckoutController() {
	checkoutServiceOnce.Do(func() {
		gateway := parcelow.NewClientFromEnv()
		quotes := exchange.NewCachedQuoteService(exchange.NewHTTPQuoteService())
		repos := repository.GetGlobalFactory()
		checkoutService = checkout.NewService(
			gateway,
			quotes,
			repos.GetPaymentRepository(),
			repos.GetUserRepository(),
			gateway.Environment,
		)
	})
}

type createCheckoutRequest struct {
	PaymentID string `json:"payment_id"`
	Currency  string `json:"currency"`
}

// HandleCreateParcelowCheckout creates a Parcelow order for a pending
// payment and returns the hosted checkout URL.
func HandleCreateParcelowCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req createCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "payment_id is required",
		})
	}
	if req.Currency != "" && req.Currency != "USD" && req.Currency != "BRL" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "currency must be USD or BRL",
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()

	result, err := checkoutService.CreateCheckout(ctx, userCtx.UserID, req.PaymentID, req.Currency)
	if err != nil {
		var accessDenied *checkout.AccessDeniedError
		if errors.As(err, &accessDenied) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":      true,
		"checkout_url": result.CheckoutURL,
		"order_id":     result.OrderID,
		"status":       result.Status,
		"total_usd":    result.TotalUSD,
		"total_brl":    result.TotalBRL,
		"order_amount": result.OrderAmount,
	})
}
