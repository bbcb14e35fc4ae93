package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditVerb string

const (
	VerbCreate  AuditVerb = "create"
	VerbUpdate  AuditVerb = "update"
	VerbDelete  AuditVerb = "delete"
	VerbPublish AuditVerb = "publish"
	VerbLogin   AuditVerb = "login"
	VerbLogout  AuditVerb = "logout"
	VerbRestore AuditVerb = "restore"
	VerbOther   AuditVerb = "other"
)

// AuditLog is an append-only record of an action. The target is a weak
// (type, id) reference to any entity; no referential integrity is enforced.
// Rows are immutable once written.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:char(36);primarykey" json:"id"`
	ActorID    *uint64        `gorm:"index" json:"actor_id"`
	Verb       AuditVerb      `gorm:"type:varchar(50);not null;index" json:"verb"`
	TargetType string         `gorm:"type:varchar(50);not null;index:idx_audit_logs_target" json:"target_type"`
	TargetID   string         `gorm:"type:varchar(64);not null;index:idx_audit_logs_target" json:"target_id"`
	Diff       datatypes.JSON `gorm:"type:json" json:"diff"`
	IP         string         `gorm:"type:varchar(45)" json:"ip"`
	UserAgent  string         `gorm:"type:text" json:"user_agent"`
	Timestamp  time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
