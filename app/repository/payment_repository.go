package repository

import (
	"github.com/323network/platform/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new service payment row
func (r *paymentRepository) Create(payment *models.ServicePayment) error {
	return r.db.Create(payment).Error
}

// GetByID retrieves a payment by its UUID
func (r *paymentRepository) GetByID(id string) (*models.ServicePayment, error) {
	var payment models.ServicePayment
	err := r.db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByParcelowOrderID retrieves a payment by the gateway order reference
func (r *paymentRepository) GetByParcelowOrderID(orderID string) (*models.ServicePayment, error) {
	var payment models.ServicePayment
	err := r.db.Where("parcelow_order_id = ?", orderID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update saves the full payment row
func (r *paymentRepository) Update(payment *models.ServicePayment) error {
	return r.db.Save(payment).Error
}

// AttachParcelowOrder persists only the gateway-order fields written by
// the checkout flow. The metadata column is written whole because MySQL
// JSON merges are not portable across versions.
func (r *paymentRepository) AttachParcelowOrder(payment *models.ServicePayment) error {
	return r.db.Model(&models.ServicePayment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"parcelow_order_id":     payment.ParcelowOrderID,
			"parcelow_checkout_url": payment.ParcelowCheckoutURL,
			"parcelow_status":       payment.ParcelowStatus,
			"parcelow_status_code":  payment.ParcelowStatusCode,
			"metadata":              payment.Metadata,
		}).Error
}

// UpdateParcelowStatus writes the out-of-band status transition coming
// from the gateway webhook.
func (r *paymentRepository) UpdateParcelowStatus(id string, status string, statusCode int) error {
	return r.db.Model(&models.ServicePayment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"parcelow_status":      status,
			"parcelow_status_code": statusCode,
		}).Error
}

// ListByUserID retrieves payments for a user with pagination
func (r *paymentRepository) ListByUserID(userID uint, offset, limit int) ([]models.ServicePayment, error) {
	var payments []models.ServicePayment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&payments).Error
	return payments, err
}
