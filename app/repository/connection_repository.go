package repository

import (
	"github.com/323network/platform/app/models"
	"gorm.io/gorm"
)

// connectionRepository implements the ConnectionRepository interface
type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository instance
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// Create inserts a new connection request
func (r *connectionRepository) Create(conn *models.Connection) error {
	return r.db.Create(conn).Error
}

// GetByID retrieves a connection by its UUID
func (r *connectionRepository) GetByID(id string) (*models.Connection, error) {
	var conn models.Connection
	err := r.db.Where("id = ?", id).First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetBetween finds the connection between two users in either direction.
func (r *connectionRepository) GetBetween(userA, userB uint) (*models.Connection, error) {
	var conn models.Connection
	err := r.db.
		Where("(requester_id = ? AND responder_id = ?) OR (requester_id = ? AND responder_id = ?)",
			userA, userB, userB, userA).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetPendingForResponder lists incoming pending requests, newest first,
// with the requester profile preloaded.
func (r *connectionRepository) GetPendingForResponder(responderID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.
		Preload("Requester").
		Where("responder_id = ? AND status = ?", responderID, models.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

// UpdateStatus writes the accepted/rejected transition
func (r *connectionRepository) UpdateStatus(id string, status string) error {
	return r.db.Model(&models.Connection{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CountAcceptedForUser counts accepted connections where the user is on
// either side of the pair.
func (r *connectionRepository) CountAcceptedForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Connection{}).
		Where("(requester_id = ? OR responder_id = ?) AND status = ?",
			userID, userID, models.ConnectionStatusAccepted).
		Count(&count).Error
	return count, err
}
