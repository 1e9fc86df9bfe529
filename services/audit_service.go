package services

import (
	"encoding/json"

	"github.com/edstack/institute-api/model"
	"github.com/edstack/institute-api/utils/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditService records the audit trail for institute mutations. Record is
// designed to run on the same transaction handle as the mutation it
// describes, so the audit row commits or rolls back with the write.
type AuditService struct{}

// NewAuditService creates a new audit service
func NewAuditService() *AuditService {
	return &AuditService{}
}

// Record writes one audit row for an institute mutation. oldValue and
// newValue are snapshots of the row before and after the write; either may
// be nil (creation has no old value, hard deletion no new one).
func (s *AuditService) Record(tx *gorm.DB, action string, instituteID uuid.UUID, actorID *uuid.UUID, oldValue, newValue interface{}) error {
	entry := model.InstituteAuditLog{
		InstituteID: instituteID,
		ActorID:     actorID,
		Action:      action,
	}

	if oldValue != nil {
		data, err := json.Marshal(oldValue)
		if err != nil {
			return apperror.NewDatabaseError("Failed to record audit entry")
		}
		entry.OldValue = data
	}
	if newValue != nil {
		data, err := json.Marshal(newValue)
		if err != nil {
			return apperror.NewDatabaseError("Failed to record audit entry")
		}
		entry.NewValue = data
	}

	if err := tx.Create(&entry).Error; err != nil {
		return apperror.NewDatabaseError("Failed to record audit entry")
	}

	return nil
}
