// Package store owns the persisted Domain and ValidationLog rows and applies
// the status state machine: pending → validating → {active, failed}, with any
// status free to re-enter validating.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"domainly/internal/models"
	"domainly/internal/services"
)

// ErrDomainNotFound is distinct from storage being unavailable so callers can
// answer 404 instead of 500.
var ErrDomainNotFound = errors.New("domain not found")

type DomainStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *DomainStore {
	return &DomainStore{db: db}
}

func (s *DomainStore) Create(ctx context.Context, d *models.Domain) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *DomainStore) FindByID(ctx context.Context, id string) (*models.Domain, error) {
	var d models.Domain
	err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DomainStore) FindByName(ctx context.Context, name string) (*models.Domain, error) {
	var d models.Domain
	err := s.db.WithContext(ctx).First(&d, "domain_name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DomainStore) List(ctx context.Context, ownerID string) ([]models.Domain, error) {
	var out []models.Domain
	q := s.db.WithContext(ctx)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	return out, q.Order("created_at").Find(&out).Error
}

// ListByStatus returns domains in a given status, capped for retry sweeps.
func (s *DomainStore) ListByStatus(ctx context.Context, status string, maxRetries int) ([]models.Domain, error) {
	var out []models.Domain
	err := s.db.WithContext(ctx).
		Where("status = ? AND auto_retry_count < ?", status, maxRetries).
		Order("last_validation_attempt_at").
		Find(&out).Error
	return out, err
}

// Delete removes the domain and all of its validation logs. The row is
// removed for real, not archived: the name must be free for re-registration
// and the upstream attachment is already gone by the time this runs.
func (s *DomainStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Delete(&models.Domain{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDomainNotFound
		}
		return tx.Delete(&models.ValidationLog{}, "domain_id = ?", id).Error
	})
}

func (s *DomainStore) Logs(ctx context.Context, domainID string) ([]models.ValidationLog, error) {
	var logs []models.ValidationLog
	err := s.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// BeginValidation moves the domain to validating regardless of prior status.
// Concurrent passes for the same domain are not serialized; the last writer
// wins, which is acceptable because validation is idempotent.
func (s *DomainStore) BeginValidation(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Domain{}).
		Where("id = ?", id).
		Update("status", models.StatusValidating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDomainNotFound
	}
	return nil
}

// ApplyResult commits one validation pass: the status transition and exactly
// one ValidationLog row, in a single transaction. Returns whether the domain
// is now active so the caller can decide on notification.
func (s *DomainStore) ApplyResult(ctx context.Context, id string, result services.ValidationResult, manual bool) (bool, error) {
	isValid := result.Valid()
	now := time.Now().UTC()

	snapshot, err := json.Marshal(result.Snapshot)
	if err != nil {
		return false, err
	}
	joined := strings.Join(result.Errors, "; ")

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Domain
		if err := tx.First(&d, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDomainNotFound
			}
			return err
		}

		updates := map[string]any{
			"status":                     models.StatusFailed,
			"txt_validated":              result.TXTValidated,
			"a_validated":                result.AValidated,
			"cname_validated":            result.CNAMEValidated,
			"last_validation_attempt_at": now,
			"validation_error":           nil,
		}
		if !isValid && joined != "" {
			updates["validation_error"] = joined
		}
		if isValid {
			// An active domain never carries a validation error; advisory
			// CNAME notes live only in the log row.
			updates["status"] = models.StatusActive
		}
		if manual {
			updates["auto_retry_count"] = 0
		} else {
			updates["auto_retry_count"] = gorm.Expr("auto_retry_count + 1")
		}
		if err := tx.Model(&models.Domain{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		log := models.ValidationLog{
			DomainID:       id,
			ValidationType: models.ValidationFull,
			Success:        isValid,
			ErrorMessage:   joined,
			DNSResponse:    string(snapshot),
		}
		return tx.Create(&log).Error
	})
	if err != nil {
		return false, err
	}
	return isValid, nil
}
