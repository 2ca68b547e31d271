package models

import (
	"time"

	"gorm.io/gorm"
)

// Program is a purchasable program/course offered on the platform.
type Program struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TitlePT        string         `gorm:"type:varchar(255)" json:"title_pt"`
	TitleEN        string         `gorm:"type:varchar(255)" json:"title_en"`
	PriceUSD       int64          `gorm:"not null" json:"price_usd"` // cents
	TermsContentPT string         `gorm:"type:text;default:null" json:"terms_content_pt"`
	TermsContentEN string         `gorm:"type:text;default:null" json:"terms_content_en"`
	LocalhostOnly  bool           `gorm:"default:false" json:"localhost_only"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Title prefers the English title and falls back to Portuguese.
func (p *Program) Title() string {
	if p.TitleEN != "" {
		return p.TitleEN
	}
	return p.TitlePT
}

// HasOwnTerms reports whether the program carries program-specific terms.
func (p *Program) HasOwnTerms() bool {
	return p.TermsContentPT != "" || p.TermsContentEN != ""
}

// ProgramEnrollment records a user's enrollment into a program together
// with the acceptance trail of the program-specific terms.
type ProgramEnrollment struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	ProgramID       uint       `gorm:"index;not null" json:"program_id"`
	User            User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Program         Program    `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	PaymentID       string     `gorm:"type:varchar(36);default:null" json:"payment_id"`
	EnrolledAt      *time.Time `gorm:"type:timestamp;default:null" json:"enrolled_at"`
	TermsAccepted   bool       `gorm:"default:false" json:"terms_accepted"`
	TermsAcceptedAt *time.Time `gorm:"type:timestamp;default:null" json:"terms_accepted_at"`
	TermsIP         string     `gorm:"type:varchar(45);default:null" json:"-"`
	TermsUserAgent  string     `gorm:"type:varchar(255);default:null" json:"-"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *ProgramEnrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = newUUID()
	}
	return nil
}
