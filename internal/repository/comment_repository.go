package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/database"
	"github.com/penpal-app/penpal-api/internal/models"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// FindByID finds a live comment with its document and author preloaded. The
// document is loaded regardless of its own soft-delete flag; the permission
// rules need the author either way.
func (r *GormCommentRepository) FindByID(id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.
		Preload("Document").
		Preload("Author").
		Scopes(database.Live).
		First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByDocument returns live comments of a document, oldest first
func (r *GormCommentRepository) ListByDocument(documentID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.
		Preload("Author").
		Scopes(database.Live).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *GormCommentRepository) Update(comment *models.Comment) error {
	return r.db.Model(comment).Update("body", comment.Body).Error
}

func (r *GormCommentRepository) SoftDelete(comment *models.Comment) error {
	return r.db.Model(comment).Update("soft_delete", true).Error
}
