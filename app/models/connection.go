package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConnectionStatusPending  = "pending"
	ConnectionStatusAccepted = "accepted"
	ConnectionStatusRejected = "rejected"
)

// Connection is a peer connection request between two users. The pair
// (requester, responder) is unique so a request cannot be sent twice.
type Connection struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	RequesterID uint      `gorm:"not null;index:ux_connections_pair,unique,priority:1" json:"requester_id"`
	ResponderID uint      `gorm:"not null;index:ux_connections_pair,unique,priority:2;index" json:"responder_id"`
	Requester   User      `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Responder   User      `gorm:"foreignKey:ResponderID" json:"responder,omitempty"`
	Status      string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsPending reports whether the request still awaits a response.
func (c *Connection) IsPending() bool {
	return c.Status == ConnectionStatusPending
}
