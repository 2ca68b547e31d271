package repository

import (
	"errors"
	"time"

	"github.com/323network/platform/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// CreateIfNotExists inserts the event unless its provider event id was
// already recorded. Returns created=false and the stored row on replay.
func (r *webhookEventRepository) CreateIfNotExists(event *models.ParcelowWebhookEvent) (bool, *models.ParcelowWebhookEvent, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(event)
	if res.Error != nil {
		return false, nil, res.Error
	}

	var stored models.ParcelowWebhookEvent
	if err := r.db.Where("provider_event_id = ?", event.ProviderEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	if res.RowsAffected == 0 {
		return false, &stored, nil
	}
	return true, &stored, nil
}

// MarkProcessed marks an event as processed and stores an optional error.
func (r *webhookEventRepository) MarkProcessed(id uint, processingError string) error {
	if id == 0 {
		return errors.New("webhook event id is required")
	}
	now := time.Now()
	return r.db.Model(&models.ParcelowWebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processed":        true,
			"processed_at":     now,
			"processing_error": processingError,
		}).Error
}
