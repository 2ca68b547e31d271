package repository

import (
	"github.com/323network/platform/app/models"
	"gorm.io/gorm"
)

// enrollmentRepository implements the EnrollmentRepository interface
type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository instance
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// GetByID retrieves an enrollment with its program and user preloaded
func (r *enrollmentRepository) GetByID(id string) (*models.ProgramEnrollment, error) {
	var enrollment models.ProgramEnrollment
	err := r.db.
		Preload("Program").
		Preload("User").
		Where("id = ?", id).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// GetAcceptedTermsForUser lists the terms a user actually accepted,
// newest acceptance first, with the term preloaded.
func (r *enrollmentRepository) GetAcceptedTermsForUser(userID uint) ([]models.TermAcceptance, error) {
	var acceptances []models.TermAcceptance
	err := r.db.
		Preload("Term").
		Where("user_id = ?", userID).
		Order("accepted_at DESC").
		Find(&acceptances).Error
	return acceptances, err
}

// GetTermAcceptanceByID retrieves a single acceptance with term and user
func (r *enrollmentRepository) GetTermAcceptanceByID(id string) (*models.TermAcceptance, error) {
	var acceptance models.TermAcceptance
	err := r.db.
		Preload("Term").
		Preload("User").
		Where("id = ?", id).
		First(&acceptance).Error
	if err != nil {
		return nil, err
	}
	return &acceptance, nil
}

// GetPaymentProofData loads an enrollment and the payment row backing it.
func (r *enrollmentRepository) GetPaymentProofData(enrollmentID string) (*models.ProgramEnrollment, *models.ServicePayment, error) {
	enrollment, err := r.GetByID(enrollmentID)
	if err != nil {
		return nil, nil, err
	}
	if enrollment.PaymentID == "" {
		return enrollment, nil, nil
	}
	var payment models.ServicePayment
	if err := r.db.Where("id = ?", enrollment.PaymentID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return enrollment, nil, nil
		}
		return nil, nil, err
	}
	return enrollment, &payment, nil
}
