package repository

import (
	"github.com/google/uuid"

	"github.com/penpal-app/penpal-api/internal/models"
)

// DocumentFilter holds filtering options for listing documents. ViewerID 0
// means anonymous; the list then only contains public documents.
type DocumentFilter struct {
	ViewerID     uint64
	DocumentType *models.DocumentType
	Status       *models.DocumentStatus
	EditorType   *models.EditorType
	IsPublic     *bool
	AuthorID     *uint64
	Search       string
	OrderBy      string // created_at or updated_at, "-" prefix for descending
	Page         int
	PageSize     int
}

// UserRepository defines the interface for user and profile data access
type UserRepository interface {
	// CreateWithProfile creates a user and their profile within a single
	// transaction.
	CreateWithProfile(user *models.User, profile *models.Profile) error

	// FindByID finds a user by ID with the profile preloaded
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// UpdateWithProfile writes changed user and profile columns atomically.
	// Either column map may be empty.
	UpdateWithProfile(user *models.User, userColumns, profileColumns map[string]any) error

	// EnsureProfile returns the user's profile, creating a default one if it
	// is missing.
	EnsureProfile(userID uint64) (*models.Profile, error)
}

// DocumentRepository defines the interface for document data access. All
// lookups exclude soft-deleted rows unless stated otherwise.
type DocumentRepository interface {
	// CreateWithTags creates a document and its tag links in one transaction
	CreateWithTags(doc *models.Document, tags []models.Tag) error

	// FindByID finds a live document with author and tags preloaded
	FindByID(id uuid.UUID) (*models.Document, error)

	// FindByIDAny finds a document regardless of its soft-delete flag
	FindByIDAny(id uuid.UUID) (*models.Document, error)

	// List retrieves documents visible to the viewer with filtering and
	// pagination
	List(filter DocumentFilter) ([]models.Document, int64, error)

	// UpdateWithTags writes the changed columns and, when tags is non-nil,
	// replaces the tag associations wholesale, atomically
	UpdateWithTags(doc *models.Document, columns map[string]any, tags []models.Tag) error

	// SoftDelete marks a document deleted
	SoftDelete(doc *models.Document) error

	// TitleExists reports whether the author already has a live document
	// with this title, excluding the given document ID
	TitleExists(authorID uint64, title string, excludeID uuid.UUID) (bool, error)

	// CountByStatus counts the author's live documents grouped by status
	CountByStatus(authorID uint64) (map[string]int64, error)

	// CountByDocumentType counts the author's live documents grouped by type
	CountByDocumentType(authorID uint64) (map[string]int64, error)

	// CountByEditorType counts the author's live documents grouped by editor
	CountByEditorType(authorID uint64) (map[string]int64, error)
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(tag *models.Tag) error

	// FindByID finds a live tag by ID
	FindByID(id uint64) (*models.Tag, error)

	// FindByName finds a live tag by exact name
	FindByName(name string) (*models.Tag, error)

	// FindByIDs finds live tags by ID; missing IDs are simply absent from
	// the result
	FindByIDs(ids []uint64) ([]models.Tag, error)

	// SlugExists reports whether any tag (including soft-deleted ones) holds
	// the slug, excluding the given tag ID
	SlugExists(slug string, excludeID uint64) (bool, error)

	// List returns all live tags ordered by name
	List() ([]models.Tag, error)

	Update(tag *models.Tag) error

	SoftDelete(tag *models.Tag) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error

	// FindByID finds a live comment with its document and author preloaded
	FindByID(id uuid.UUID) (*models.Comment, error)

	// ListByDocument returns live comments of a document, oldest first
	ListByDocument(documentID uuid.UUID) ([]models.Comment, error)

	Update(comment *models.Comment) error

	SoftDelete(comment *models.Comment) error
}

// MediaRepository defines the interface for media asset data access
type MediaRepository interface {
	Create(asset *models.MediaAsset) error

	// FindByID finds a live asset with its document preloaded
	FindByID(id uuid.UUID) (*models.MediaAsset, error)

	// ListByDocument returns live assets of a document, newest first
	ListByDocument(documentID uuid.UUID) ([]models.MediaAsset, error)

	SoftDelete(asset *models.MediaAsset) error
}

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	Create(entry *models.AuditLog) error

	// ListByTarget returns entries for one (type, id) pair, newest first
	ListByTarget(targetType, targetID string) ([]models.AuditLog, error)
}
