package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit actions recorded for institute mutations
const (
	AuditActionCreate     = "institute_create"
	AuditActionUpdate     = "institute_update"
	AuditActionDeactivate = "institute_deactivate"
	AuditActionDelete     = "institute_delete"
)

// InstituteAuditLog is the audit trail for institute mutations. Each row is
// written inside the same transaction as the mutation it describes.
type InstituteAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	InstituteID uuid.UUID      `gorm:"type:uuid;not null;index" json:"institute_id"`
	ActorID     *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id"`
	Action      string         `gorm:"type:varchar(50);not null" json:"action"`
	OldValue    datatypes.JSON `json:"old_value"`
	NewValue    datatypes.JSON `json:"new_value"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TableName specifies the table name for InstituteAuditLog
func (InstituteAuditLog) TableName() string {
	return "institute_audit_logs"
}
