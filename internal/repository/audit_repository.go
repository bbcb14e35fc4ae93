package repository

import (
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/models"
)

// GormAuditRepository is a GORM implementation of AuditRepository. Entries
// are append-only; there is no update or delete path.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// ListByTarget returns entries for one (type, id) pair, newest first
func (r *GormAuditRepository) ListByTarget(targetType, targetID string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
