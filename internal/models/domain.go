package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Domain statuses. There is no terminal state; any status can re-enter
// StatusValidating on a new validation request.
const (
	StatusPending    = "pending"
	StatusValidating = "validating"
	StatusActive     = "active"
	StatusFailed     = "failed"
)

type Domain struct {
	ID                string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID           string `gorm:"index;not null" json:"owner_id"`
	DomainName        string `gorm:"not null;uniqueIndex" json:"domain_name"`
	VerificationToken string `gorm:"not null" json:"verification_token"`
	RequiredARecord   string `json:"required_a_record"`
	RequiredCNAME     string `json:"required_cname"`

	Status                  string         `gorm:"default:'pending'" json:"status"`
	TXTValidated            bool           `json:"txt_validated"`
	AValidated              bool           `json:"a_validated"`
	CNAMEValidated          bool           `json:"cname_validated"`
	LastValidationAttemptAt *time.Time     `json:"last_validation_attempt_at"`
	ValidationError         *string        `json:"validation_error"`
	AutoRetryCount          int            `json:"auto_retry_count"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`

	ValidationLogs []ValidationLog `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (d *Domain) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.VerificationToken == "" {
		d.VerificationToken = uuid.NewString()
	}
	return nil
}
