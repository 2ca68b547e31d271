package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment status values written by this service. Later Parcelow states
// (paid, expired, cancelled) arrive via the webhook handler.
const (
	ParcelowStatusOpen      = "Open"
	ParcelowStatusPaid      = "Paid"
	ParcelowStatusExpired   = "Expired"
	ParcelowStatusCancelled = "Cancelled"
)

// Generic status column values. The Stripe flow moves this column; the
// Parcelow flow leaves it at pending and writes ParcelowStatus instead.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// MetadataMap is a free-form JSON column attached to payment rows.
type MetadataMap map[string]any

func (m MetadataMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *MetadataMap) Scan(value any) error {
	if value == nil {
		*m = MetadataMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
	if len(raw) == 0 {
		*m = MetadataMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Merge copies the given keys into the map without dropping existing ones.
func (m MetadataMap) Merge(other map[string]any) MetadataMap {
	out := MetadataMap{}
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ServicePayment identifies a pending service purchase. Rows are created
// by the Stripe flow and enriched by the Parcelow checkout; they are
// never deleted by this subsystem.
type ServicePayment struct {
	ID                    string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID                uint           `gorm:"index;not null" json:"user_id"`
	Amount                int64          `gorm:"not null" json:"amount"` // minor currency units (cents)
	Currency              string         `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Description           string         `gorm:"type:varchar(255)" json:"description"`
	Status                string         `gorm:"type:varchar(50);default:'pending'" json:"status"`
	StripePaymentIntentID string         `gorm:"type:varchar(100);default:null" json:"-"`
	ParcelowOrderID       string         `gorm:"type:varchar(100);default:null" json:"parcelow_order_id"`
	ParcelowCheckoutURL   string         `gorm:"type:varchar(500);default:null" json:"parcelow_checkout_url"`
	ParcelowStatus        string         `gorm:"type:varchar(50);default:null" json:"parcelow_status"`
	ParcelowStatusCode    int            `gorm:"default:0" json:"parcelow_status_code"`
	Metadata              MetadataMap    `gorm:"type:json" json:"metadata"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *ServicePayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsPaid reports whether the payment was confirmed by either flow:
// a Parcelow webhook sets ParcelowStatus, Stripe sets the generic column.
func (p *ServicePayment) IsPaid() bool {
	return p.ParcelowStatus == ParcelowStatusPaid || strings.EqualFold(p.Status, PaymentStatusPaid)
}

// ConfirmedStatus returns the status the confirming flow wrote, falling
// back to the generic column when no gateway status is present.
func (p *ServicePayment) ConfirmedStatus() string {
	if p.ParcelowStatus != "" {
		return p.ParcelowStatus
	}
	return p.Status
}
