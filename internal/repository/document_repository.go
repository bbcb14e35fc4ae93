package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/database"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/permissions"
	"github.com/penpal-app/penpal-api/internal/utils"
)

// GormDocumentRepository is a GORM implementation of DocumentRepository
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &GormDocumentRepository{db: db}
}

// CreateWithTags creates a document and its tag links in one transaction
func (r *GormDocumentRepository) CreateWithTags(doc *models.Document, tags []models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(doc).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(doc).Association("Tags").Append(&tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a live document with author and tags preloaded
func (r *GormDocumentRepository) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.db.
		Preload("Author").
		Preload("Tags", "soft_delete = ?", false).
		Preload("Comments", "soft_delete = ?", false).
		Scopes(database.Live).
		First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByIDAny finds a document regardless of its soft-delete flag
func (r *GormDocumentRepository) FindByIDAny(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List retrieves documents visible to the viewer with filtering and pagination
func (r *GormDocumentRepository) List(filter DocumentFilter) ([]models.Document, int64, error) {
	query := r.db.Model(&models.Document{}).Where("documents.soft_delete = ?", false)

	// Visibility: public union own; anonymous viewers see public only.
	if filter.ViewerID == permissions.AnonymousID {
		query = query.Where("documents.is_public = ?", true)
	} else {
		query = query.Where("documents.is_public = ? OR documents.author_id = ?", true, filter.ViewerID)
	}

	if filter.DocumentType != nil {
		query = query.Where("documents.document_type = ?", *filter.DocumentType)
	}
	if filter.Status != nil {
		query = query.Where("documents.status = ?", *filter.Status)
	}
	if filter.EditorType != nil {
		query = query.Where("documents.editor_type = ?", *filter.EditorType)
	}
	if filter.IsPublic != nil {
		query = query.Where("documents.is_public = ?", *filter.IsPublic)
	}
	if filter.AuthorID != nil {
		query = query.Where("documents.author_id = ?", *filter.AuthorID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"documents.title LIKE ? OR documents.description LIKE ? OR documents.content LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter.OrderBy))

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Scopes(database.Paginate(utils.PaginationParams{
			Page:   page,
			Limit:  filter.PageSize,
			Offset: (page - 1) * filter.PageSize,
		}))
	}

	var docs []models.Document
	err := query.
		Preload("Author").
		Preload("Tags", "soft_delete = ?", false).
		Preload("Comments", "soft_delete = ?", false).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// orderClause maps the API ordering parameter onto a safe ORDER BY. Only the
// two timestamp columns are orderable.
func orderClause(orderBy string) string {
	desc := strings.HasPrefix(orderBy, "-")
	column := strings.TrimPrefix(orderBy, "-")
	switch column {
	case "created_at":
	case "updated_at":
	default:
		// Default matches the original listing order: most recently updated first.
		return "documents.updated_at DESC"
	}
	if desc {
		return "documents." + column + " DESC"
	}
	return "documents." + column + " ASC"
}

// UpdateWithTags writes the changed columns and optionally replaces the tag
// set, atomically. A nil tags slice leaves associations untouched; an empty
// one clears them.
func (r *GormDocumentRepository) UpdateWithTags(doc *models.Document, columns map[string]any, tags []models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(columns) > 0 {
			if err := tx.Model(doc).Updates(columns).Error; err != nil {
				return err
			}
		}
		if tags != nil {
			if err := tx.Model(doc).Association("Tags").Replace(&tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// SoftDelete marks a document deleted. Child comments and media keep their
// own flags; listings reach them through the parent lookup, which now 404s.
func (r *GormDocumentRepository) SoftDelete(doc *models.Document) error {
	return r.db.Model(doc).Update("soft_delete", true).Error
}

// TitleExists reports whether the author already has a live document with
// this title. Used as a pre-check for a friendly conflict error; the partial
// unique index remains the authoritative guard.
func (r *GormDocumentRepository) TitleExists(authorID uint64, title string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&models.Document{}).
		Where("author_id = ? AND title = ? AND soft_delete = ?", authorID, title, false)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus counts the author's live documents grouped by status
func (r *GormDocumentRepository) CountByStatus(authorID uint64) (map[string]int64, error) {
	return r.countGrouped(authorID, "status")
}

// CountByDocumentType counts the author's live documents grouped by type
func (r *GormDocumentRepository) CountByDocumentType(authorID uint64) (map[string]int64, error) {
	return r.countGrouped(authorID, "document_type")
}

// CountByEditorType counts the author's live documents grouped by editor
func (r *GormDocumentRepository) CountByEditorType(authorID uint64) (map[string]int64, error) {
	return r.countGrouped(authorID, "editor_type")
}

func (r *GormDocumentRepository) countGrouped(authorID uint64, column string) (map[string]int64, error) {
	type row struct {
		Value string
		Count int64
	}
	var rows []row
	err := r.db.Model(&models.Document{}).
		Select(column+" AS value, COUNT(*) AS count").
		Where("author_id = ? AND soft_delete = ?", authorID, false).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Value] = r.Count
	}
	return counts, nil
}
