package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/323network/platform/app/models"
	"github.com/323network/platform/app/repository"
)

func TestMapParcelowStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"paid", models.ParcelowStatusPaid, true},
		{"PAID", models.ParcelowStatusPaid, true},
		{"approved", models.ParcelowStatusPaid, true},
		{"open", models.ParcelowStatusOpen, true},
		{"pending", models.ParcelowStatusOpen, true},
		{"expired", models.ParcelowStatusExpired, true},
		{"cancelled", models.ParcelowStatusCancelled, true},
		{"canceled", models.ParcelowStatusCancelled, true},
		{" Paid ", models.ParcelowStatusPaid, true},
		{"refunded", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := mapParcelowStatus(tc.raw)
		assert.Equal(t, tc.wantOK, ok, "status %q", tc.raw)
		assert.Equal(t, tc.want, got, "status %q", tc.raw)
	}
}

type fakeWebhookEventRepo struct {
	repository.WebhookEventRepository

	seen          map[string]*models.ParcelowWebhookEvent
	processedIDs  []uint
	processErrors []string
}

func (f *fakeWebhookEventRepo) CreateIfNotExists(event *models.ParcelowWebhookEvent) (bool, *models.ParcelowWebhookEvent, error) {
	if f.seen == nil {
		f.seen = map[string]*models.ParcelowWebhookEvent{}
	}
	if existing, ok := f.seen[event.ProviderEventID]; ok {
		return false, existing, nil
	}
	event.ID = uint(len(f.seen) + 1)
	f.seen[event.ProviderEventID] = event
	return true, event, nil
}

func (f *fakeWebhookEventRepo) MarkProcessed(id uint, processingError string) error {
	f.processedIDs = append(f.processedIDs, id)
	f.processErrors = append(f.processErrors, processingError)
	return nil
}

type fakePaymentRepo struct {
	repository.PaymentRepository

	payment       *models.ServicePayment
	statusUpdates []string

	listedUserID uint
	listedOffset int
	listedLimit  int
}

func (f *fakePaymentRepo) GetByParcelowOrderID(orderID string) (*models.ServicePayment, error) {
	if f.payment != nil && f.payment.ParcelowOrderID == orderID {
		return f.payment, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepo) UpdateParcelowStatus(id string, status string, statusCode int) error {
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

func newWebhookTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/webhooks/parcelow", HandleParcelowWebhook)
	return app
}

func TestHandleParcelowWebhookAppliesStatus(t *testing.T) {
	payRepo := &fakePaymentRepo{payment: &models.ServicePayment{ID: "pay-1", ParcelowOrderID: "12345"}}
	eventRepo := &fakeWebhookEventRepo{}
	swapRepos(t, &repository.Repositories{Payment: payRepo, WebhookEvent: eventRepo})
	app := newWebhookTestApp()

	status, body := postJSON(t, app, "/api/v1/webhooks/parcelow",
		`{"event_id": "evt-1", "event": "order.paid", "order_id": 12345, "status": "paid", "status_code": 3}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["duplicate"])
	assert.Equal(t, []string{models.ParcelowStatusPaid}, payRepo.statusUpdates)
	assert.Equal(t, []uint{1}, eventRepo.processedIDs)
	assert.Equal(t, []string{""}, eventRepo.processErrors)
}

func TestHandleParcelowWebhookDeduplicatesReplays(t *testing.T) {
	payRepo := &fakePaymentRepo{payment: &models.ServicePayment{ID: "pay-1", ParcelowOrderID: "12345"}}
	eventRepo := &fakeWebhookEventRepo{}
	swapRepos(t, &repository.Repositories{Payment: payRepo, WebhookEvent: eventRepo})
	app := newWebhookTestApp()

	payload := `{"event_id": "evt-1", "event": "order.paid", "order_id": 12345, "status": "paid", "status_code": 3}`

	status, body := postJSON(t, app, "/api/v1/webhooks/parcelow", payload)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body = postJSON(t, app, "/api/v1/webhooks/parcelow", payload)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["duplicate"])

	// The payment moved exactly once.
	assert.Equal(t, []string{models.ParcelowStatusPaid}, payRepo.statusUpdates)
	assert.Len(t, eventRepo.processedIDs, 1)
}

func TestHandleParcelowWebhookDerivesEventID(t *testing.T) {
	payRepo := &fakePaymentRepo{payment: &models.ServicePayment{ID: "pay-1", ParcelowOrderID: "12345"}}
	eventRepo := &fakeWebhookEventRepo{}
	swapRepos(t, &repository.Repositories{Payment: payRepo, WebhookEvent: eventRepo})
	app := newWebhookTestApp()

	payload := `{"event": "order.paid", "order_id": 12345, "status": "paid", "status_code": 3}`

	status, _ := postJSON(t, app, "/api/v1/webhooks/parcelow", payload)
	assert.Equal(t, fiber.StatusOK, status)

	status, body := postJSON(t, app, "/api/v1/webhooks/parcelow", payload)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])
	assert.Equal(t, []string{models.ParcelowStatusPaid}, payRepo.statusUpdates)
}

func TestHandleParcelowWebhookUnknownOrder(t *testing.T) {
	eventRepo := &fakeWebhookEventRepo{}
	swapRepos(t, &repository.Repositories{Payment: &fakePaymentRepo{}, WebhookEvent: eventRepo})
	app := newWebhookTestApp()

	status, body := postJSON(t, app, "/api/v1/webhooks/parcelow",
		`{"event_id": "evt-9", "order_id": 777, "status": "paid"}`)

	// The event is still recorded; the failure lands in the processing error.
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"no payment for parcelow order 777"}, eventRepo.processErrors)
}

func TestHandleParcelowWebhookRejectsBadPayloads(t *testing.T) {
	swapRepos(t, &repository.Repositories{})
	app := newWebhookTestApp()

	status, body := postJSON(t, app, "/api/v1/webhooks/parcelow", `{"status": "paid"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "order_id is required", body["error"])

	status, body = postJSON(t, app, "/api/v1/webhooks/parcelow", `{"order_id": 12345, "status": "refunded"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Unknown status", body["error"])
}
