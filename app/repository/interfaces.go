package repository

import (
	"github.com/323network/platform/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPITokenHash(hash string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// PaymentRepository defines the interface for service payment operations
type PaymentRepository interface {
	Create(payment *models.ServicePayment) error
	GetByID(id string) (*models.ServicePayment, error)
	GetByParcelowOrderID(orderID string) (*models.ServicePayment, error)
	Update(payment *models.ServicePayment) error
	AttachParcelowOrder(payment *models.ServicePayment) error
	UpdateParcelowStatus(id string, status string, statusCode int) error
	ListByUserID(userID uint, offset, limit int) ([]models.ServicePayment, error)
}

// ConnectionRepository defines the interface for peer connection requests
type ConnectionRepository interface {
	Create(conn *models.Connection) error
	GetByID(id string) (*models.Connection, error)
	GetBetween(userA, userB uint) (*models.Connection, error)
	GetPendingForResponder(responderID uint) ([]models.Connection, error)
	UpdateStatus(id string, status string) error
	CountAcceptedForUser(userID uint) (int64, error)
}

// EnrollmentRepository defines the interface for program enrollment data
type EnrollmentRepository interface {
	GetByID(id string) (*models.ProgramEnrollment, error)
	GetAcceptedTermsForUser(userID uint) ([]models.TermAcceptance, error)
	GetTermAcceptanceByID(id string) (*models.TermAcceptance, error)
	GetPaymentProofData(enrollmentID string) (*models.ProgramEnrollment, *models.ServicePayment, error)
}

// WebhookEventRepository defines the interface for gateway webhook persistence
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.ParcelowWebhookEvent) (bool, *models.ParcelowWebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Payment      PaymentRepository
	Connection   ConnectionRepository
	Enrollment   EnrollmentRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Payment:      NewPaymentRepository(db),
		Connection:   NewConnectionRepository(db),
		Enrollment:   NewEnrollmentRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
