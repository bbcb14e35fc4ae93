package services

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/constants"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/permissions"
	"github.com/penpal-app/penpal-api/internal/repository"
	"github.com/penpal-app/penpal-api/internal/utils"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDocumentForbidden = errors.New("you do not have permission on this document")
	ErrTitleTooShort     = errors.New("title must be at least 3 characters long")
	ErrContentEmpty      = errors.New("content cannot be empty")
	ErrDuplicateTitle    = errors.New("you already have a document with this title")
	ErrUnknownTag        = errors.New("one or more tag IDs do not exist")
	ErrInvalidDocType    = errors.New("invalid document type")
	ErrInvalidEditorType = errors.New("invalid editor type")
	ErrInvalidStatus     = errors.New("invalid status")
)

// DocumentService owns document business logic: validation, permission
// checks, derived-field maintenance and the uniqueness pre-check.
type DocumentService struct {
	docRepo repository.DocumentRepository
	tagRepo repository.TagRepository
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docRepo repository.DocumentRepository, tagRepo repository.TagRepository) *DocumentService {
	return &DocumentService{
		docRepo: docRepo,
		tagRepo: tagRepo,
	}
}

// CreateDocumentInput represents a new document. Zero-valued enum fields get
// the model defaults.
type CreateDocumentInput struct {
	Title            string
	Description      string
	Content          string
	ContentJSON      datatypes.JSON
	BlockNoteContent datatypes.JSON
	DocumentType     models.DocumentType
	EditorType       models.EditorType
	Status           models.DocumentStatus
	IsPublic         bool
	AllowComments    bool
	AllowSharing     bool
	AllowEditing     bool
	TagIDs           []uint64
}

// Create validates and stores a new document. Title is stored trimmed; the
// word count and read time are derived from the content. The (author, title)
// pre-check gives a friendly error, but the storage-level index is what
// actually closes the race: a duplicated-key error comes back as the same
// ErrDuplicateTitle.
func (s *DocumentService) Create(authorID uint64, input CreateDocumentInput) (*models.Document, error) {
	title := strings.TrimSpace(input.Title)
	if utf8.RuneCountInString(title) < constants.MinTitleLength {
		return nil, ErrTitleTooShort
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentEmpty
	}

	docType := defaultDocumentType(input.DocumentType)
	editorType := defaultEditorType(input.EditorType)
	status := defaultStatus(input.Status)
	if err := validateChoices(docType, editorType, status); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(input.TagIDs)
	if err != nil {
		return nil, err
	}

	exists, err := s.docRepo.TitleExists(authorID, title, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check title: %w", err)
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	wordCount := utils.CountWords(input.Content)
	doc := &models.Document{
		AuthorID:         authorID,
		Title:            title,
		Description:      input.Description,
		Content:          input.Content,
		ContentJSON:      input.ContentJSON,
		BlockNoteContent: input.BlockNoteContent,
		DocumentType:     docType,
		EditorType:       editorType,
		Status:           status,
		IsPublic:         input.IsPublic,
		AllowComments:    input.AllowComments,
		AllowSharing:     input.AllowSharing,
		AllowEditing:     input.AllowEditing,
		WordCount:        wordCount,
		ReadTime:         utils.ReadTime(wordCount),
	}

	if err := s.docRepo.CreateWithTags(doc, tags); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return s.docRepo.FindByID(doc.ID)
}

// List returns the documents visible to the viewer.
func (s *DocumentService) List(filter repository.DocumentFilter) ([]models.Document, int64, error) {
	return s.docRepo.List(filter)
}

// Get retrieves one document: 404 semantics when absent or soft-deleted,
// 403 semantics when present but not readable by the viewer.
func (s *DocumentService) Get(viewerID uint64, id uuid.UUID) (*models.Document, error) {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	if !permissions.CanReadDocument(viewerID, doc) {
		return nil, ErrDocumentForbidden
	}
	return doc, nil
}

// UpdateDocumentInput carries a partial update. Nil pointers leave the stored
// value untouched; a non-nil TagIDs replaces the tag set wholesale.
type UpdateDocumentInput struct {
	Title            *string
	Description      *string
	Content          *string
	ContentJSON      *datatypes.JSON
	BlockNoteContent *datatypes.JSON
	DocumentType     *models.DocumentType
	EditorType       *models.EditorType
	Status           *models.DocumentStatus
	IsPublic         *bool
	AllowComments    *bool
	AllowSharing     *bool
	AllowEditing     *bool
	TagIDs           *[]uint64
}

// Update applies a partial update as an explicit diff against the stored
// row, so only changed columns are written and the diff is available for the
// audit log. Changing the content recomputes word count and read time.
func (s *DocumentService) Update(actorID uint64, id uuid.UUID, input UpdateDocumentInput) (*models.Document, map[string]any, error) {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("failed to find document: %w", err)
	}
	if !permissions.CanWriteDocument(actorID, doc) {
		return nil, nil, ErrDocumentForbidden
	}

	docType, editorType, status := doc.DocumentType, doc.EditorType, doc.Status
	if input.DocumentType != nil {
		docType = *input.DocumentType
	}
	if input.EditorType != nil {
		editorType = *input.EditorType
	}
	if input.Status != nil {
		status = *input.Status
	}
	if err := validateChoices(docType, editorType, status); err != nil {
		return nil, nil, err
	}

	columns := map[string]any{}
	diff := map[string]any{}
	changed := func(field string, from, to any) {
		columns[field] = to
		diff[field] = map[string]any{"from": from, "to": to}
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if utf8.RuneCountInString(title) < constants.MinTitleLength {
			return nil, nil, ErrTitleTooShort
		}
		if title != doc.Title {
			exists, err := s.docRepo.TitleExists(doc.AuthorID, title, doc.ID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to check title: %w", err)
			}
			if exists {
				return nil, nil, ErrDuplicateTitle
			}
			changed("title", doc.Title, title)
		}
	}
	if input.Description != nil && *input.Description != doc.Description {
		changed("description", doc.Description, *input.Description)
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, nil, ErrContentEmpty
		}
		if *input.Content != doc.Content {
			changed("content", doc.Content, *input.Content)
			wordCount := utils.CountWords(*input.Content)
			columns["word_count"] = wordCount
			columns["read_time"] = utils.ReadTime(wordCount)
		}
	}
	if input.ContentJSON != nil && !bytes.Equal(*input.ContentJSON, doc.ContentJSON) {
		changed("content_json", doc.ContentJSON, *input.ContentJSON)
	}
	if input.BlockNoteContent != nil && !bytes.Equal(*input.BlockNoteContent, doc.BlockNoteContent) {
		changed("block_note_content", doc.BlockNoteContent, *input.BlockNoteContent)
	}
	if input.DocumentType != nil && *input.DocumentType != doc.DocumentType {
		changed("document_type", doc.DocumentType, *input.DocumentType)
	}
	if input.EditorType != nil && *input.EditorType != doc.EditorType {
		changed("editor_type", doc.EditorType, *input.EditorType)
	}
	if input.Status != nil && *input.Status != doc.Status {
		changed("status", doc.Status, *input.Status)
	}
	if input.IsPublic != nil && *input.IsPublic != doc.IsPublic {
		changed("is_public", doc.IsPublic, *input.IsPublic)
	}
	if input.AllowComments != nil && *input.AllowComments != doc.AllowComments {
		changed("allow_comments", doc.AllowComments, *input.AllowComments)
	}
	if input.AllowSharing != nil && *input.AllowSharing != doc.AllowSharing {
		changed("allow_sharing", doc.AllowSharing, *input.AllowSharing)
	}
	if input.AllowEditing != nil && *input.AllowEditing != doc.AllowEditing {
		changed("allow_editing", doc.AllowEditing, *input.AllowEditing)
	}

	var tags []models.Tag
	if input.TagIDs != nil {
		tags, err = s.resolveTags(*input.TagIDs)
		if err != nil {
			return nil, nil, err
		}
		if tags == nil {
			tags = []models.Tag{}
		}
		diff["tags"] = map[string]any{"to": *input.TagIDs}
	}

	if len(columns) == 0 && input.TagIDs == nil {
		return doc, diff, nil
	}

	if err := s.docRepo.UpdateWithTags(doc, columns, tags); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrDuplicateTitle
		}
		return nil, nil, fmt.Errorf("failed to update document: %w", err)
	}

	updated, err := s.docRepo.FindByID(doc.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload document: %w", err)
	}
	return updated, diff, nil
}

// SoftDelete marks the document deleted. The row stays addressable in the
// database for audit purposes but disappears from every listing and lookup.
func (s *DocumentService) SoftDelete(actorID uint64, id uuid.UUID) (*models.Document, error) {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	if !permissions.CanWriteDocument(actorID, doc) {
		return nil, ErrDocumentForbidden
	}
	if err := s.docRepo.SoftDelete(doc); err != nil {
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}
	return doc, nil
}

// DocumentStats aggregates the caller's live documents. Every enumerated
// value appears in the maps, zero when absent.
type DocumentStats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByDocumentType map[string]int64 `json:"by_document_type"`
	ByEditorType   map[string]int64 `json:"by_editor_type"`
}

// Stats aggregates counts of the caller's own live documents.
func (s *DocumentService) Stats(authorID uint64) (*DocumentStats, error) {
	byStatus, err := s.docRepo.CountByStatus(authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	byType, err := s.docRepo.CountByDocumentType(authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by type: %w", err)
	}
	byEditor, err := s.docRepo.CountByEditorType(authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by editor: %w", err)
	}

	stats := &DocumentStats{
		ByStatus:       make(map[string]int64),
		ByDocumentType: make(map[string]int64),
		ByEditorType:   make(map[string]int64),
	}
	for _, v := range models.DocumentStatuses() {
		stats.ByStatus[string(v)] = byStatus[string(v)]
	}
	for _, v := range models.DocumentTypes() {
		stats.ByDocumentType[string(v)] = byType[string(v)]
	}
	for _, v := range models.EditorTypes() {
		stats.ByEditorType[string(v)] = byEditor[string(v)]
	}
	for _, n := range stats.ByStatus {
		stats.Total += n
	}
	return stats, nil
}

// resolveTags loads live tags for the given IDs and rejects unknown ones.
func (s *DocumentService) resolveTags(ids []uint64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	unique := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	tags, err := s.tagRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	if len(tags) != len(unique) {
		return nil, ErrUnknownTag
	}
	return tags, nil
}

func validateChoices(docType models.DocumentType, editorType models.EditorType, status models.DocumentStatus) error {
	if !slices.Contains(models.DocumentTypes(), docType) {
		return ErrInvalidDocType
	}
	if !slices.Contains(models.EditorTypes(), editorType) {
		return ErrInvalidEditorType
	}
	if !slices.Contains(models.DocumentStatuses(), status) {
		return ErrInvalidStatus
	}
	return nil
}

func defaultDocumentType(t models.DocumentType) models.DocumentType {
	if t == "" {
		return models.DocumentTypeBlog
	}
	return t
}

func defaultEditorType(t models.EditorType) models.EditorType {
	if t == "" {
		return models.EditorTypeHybrid
	}
	return t
}

func defaultStatus(s models.DocumentStatus) models.DocumentStatus {
	if s == "" {
		return models.DocumentStatusDraft
	}
	return s
}
