package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Validation types recorded per log row.
const (
	ValidationFull  = "full"
	ValidationTXT   = "txt"
	ValidationA     = "a"
	ValidationCNAME = "cname"
)

// ValidationLog is an append-only audit row: exactly one per validation pass,
// never mutated after creation.
type ValidationLog struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	DomainID       string    `gorm:"type:uuid;index;not null" json:"domain_id"`
	ValidationType string    `gorm:"not null;default:'full'" json:"validation_type"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message"`
	DNSResponse    string    `json:"dns_response"` // raw JSON snapshot of resolved records
	CreatedAt      time.Time `json:"created_at"`
}

func (l *ValidationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
