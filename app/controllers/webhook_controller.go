package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/323network/platform/app/models"
	"github.com/323network/platform/app/repository"
)

type parcelowWebhookPayload struct {
	EventID    string      `json:"event_id"`
	Event      string      `json:"event"`
	OrderID    json.Number `json:"order_id"`
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
}

// HandleParcelowWebhook records a gateway status notification and moves
// the referenced payment. Replayed events are acknowledged without
// reprocessing.
func HandleParcelowWebhook(c *fiber.Ctx) error {
	var payload parcelowWebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid payload"})
	}

	orderID := payload.OrderID.String()
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "order_id is required"})
	}

	status, ok := mapParcelowStatus(payload.Status)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Unknown status"})
	}

	eventID := payload.EventID
	if eventID == "" {
		// Some gateway events carry no id; derive a stable one so replays
		// still dedupe.
		eventID = fmt.Sprintf("%s:%s:%d", orderID, status, payload.StatusCode)
	}

	repos := getRepos()
	event := &models.ParcelowWebhookEvent{
		ProviderEventID: eventID,
		EventType:       payload.Event,
		PayloadJSON:     string(c.Body()),
	}
	created, stored, err := repos.WebhookEvent.CreateIfNotExists(event)
	if err != nil {
		log.Errorf("[Webhook] failed to record event %s: %v", eventID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to record event"})
	}
	if !created {
		return c.JSON(fiber.Map{"success": true, "duplicate": true})
	}

	processingError := ""
	if err := applyOrderStatus(repos, orderID, status, payload.StatusCode); err != nil {
		processingError = err.Error()
		log.Errorf("[Webhook] failed to process event %s for order %s: %v", eventID, orderID, err)
	}

	if err := repos.WebhookEvent.MarkProcessed(stored.ID, processingError); err != nil {
		log.Errorf("[Webhook] failed to mark event %s processed: %v", eventID, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func applyOrderStatus(repos *repository.Repositories, orderID, status string, statusCode int) error {
	payment, err := repos.Payment.GetByParcelowOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no payment for parcelow order %s", orderID)
		}
		return err
	}
	return repos.Payment.UpdateParcelowStatus(payment.ID, status, statusCode)
}

func mapParcelowStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "pending":
		return models.ParcelowStatusOpen, true
	case "paid", "approved":
		return models.ParcelowStatusPaid, true
	case "expired":
		return models.ParcelowStatusExpired, true
	case "cancelled", "canceled":
		return models.ParcelowStatusCancelled, true
	default:
		return "", false
	}
}
