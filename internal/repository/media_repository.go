package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/database"
	"github.com/penpal-app/penpal-api/internal/models"
)

// GormMediaRepository is a GORM implementation of MediaRepository
type GormMediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new MediaRepository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &GormMediaRepository{db: db}
}

func (r *GormMediaRepository) Create(asset *models.MediaAsset) error {
	return r.db.Create(asset).Error
}

// FindByID finds a live asset with its document preloaded
func (r *GormMediaRepository) FindByID(id uuid.UUID) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	err := r.db.
		Preload("Document").
		Scopes(database.Live).
		First(&asset, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// ListByDocument returns live assets of a document, newest first
func (r *GormMediaRepository) ListByDocument(documentID uuid.UUID) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	err := r.db.
		Scopes(database.Live).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *GormMediaRepository) SoftDelete(asset *models.MediaAsset) error {
	return r.db.Model(asset).Update("soft_delete", true).Error
}
