package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TermTypeTermsOfService = "terms_of_service"
	TermTypePrivacyPolicy  = "privacy_policy"
)

// Term is a versioned legal document users must accept.
type Term struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"type:varchar(255)" json:"title"`
	TermType  string         `gorm:"type:varchar(50)" json:"term_type" validate:"oneof=terms_of_service privacy_policy"`
	Version   string         `gorm:"type:varchar(20)" json:"version"`
	Content   string         `gorm:"type:text" json:"content"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TermAcceptance records that a user accepted a term version, including
// the audit trail needed for proof documents.
type TermAcceptance struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	TermID     uint      `gorm:"index;not null" json:"term_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Term       Term      `gorm:"foreignKey:TermID" json:"term,omitempty"`
	AcceptedAt time.Time `gorm:"autoCreateTime" json:"accepted_at"`
	IPAddress  string    `gorm:"type:varchar(45);default:null" json:"ip_address"`
	UserAgent  string    `gorm:"type:varchar(255);default:null" json:"user_agent"`
}

func (a *TermAcceptance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = newUUID()
	}
	return nil
}

func newUUID() string {
	return uuid.NewString()
}
