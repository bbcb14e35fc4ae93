package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/penpal-app/penpal-api/internal/models"
)

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID         uuid.UUID  `json:"id"`
	DocumentID uuid.UUID  `json:"document_id"`
	AuthorID   uint64     `json:"author_id"`
	Author     *AuthorDTO `json:"author,omitempty"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// MediaAssetDTO represents a media attachment in API responses
type MediaAssetDTO struct {
	ID         uuid.UUID       `json:"id"`
	DocumentID uuid.UUID       `json:"document_id"`
	OwnerID    uint64          `json:"owner_id"`
	FileType   models.FileType `json:"file_type"`
	File       string          `json:"file"`
	URL        string          `json:"url"`
	MetaData   json.RawMessage `json:"meta_data"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DocumentDTO represents a document in detail responses
type DocumentDTO struct {
	ID               uuid.UUID             `json:"id"`
	AuthorID         uint64                `json:"author_id"`
	Author           *AuthorDTO            `json:"author,omitempty"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Content          string                `json:"content"`
	ContentJSON      json.RawMessage       `json:"content_json"`
	BlockNoteContent json.RawMessage       `json:"block_note_content"`
	DocumentType     models.DocumentType   `json:"document_type"`
	EditorType       models.EditorType     `json:"editor_type"`
	Status           models.DocumentStatus `json:"status"`
	IsPublic         bool                  `json:"is_public"`
	AllowComments    bool                  `json:"allow_comments"`
	AllowSharing     bool                  `json:"allow_sharing"`
	AllowEditing     bool                  `json:"allow_editing"`
	WordCount        uint                  `json:"word_count"`
	ReadTime         string                `json:"read_time"`
	Tags             []TagDTO              `json:"tags"`
	CommentCount     int                   `json:"comment_count"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// DocumentListItemDTO represents a document in list responses (minimal data)
type DocumentListItemDTO struct {
	ID           uuid.UUID             `json:"id"`
	AuthorID     uint64                `json:"author_id"`
	Author       *AuthorDTO            `json:"author,omitempty"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	DocumentType models.DocumentType   `json:"document_type"`
	EditorType   models.EditorType     `json:"editor_type"`
	Status       models.DocumentStatus `json:"status"`
	IsPublic     bool                  `json:"is_public"`
	WordCount    uint                  `json:"word_count"`
	ReadTime     string                `json:"read_time"`
	Tags         []TagDTO              `json:"tags"`
	CommentCount int                   `json:"comment_count"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Conversion functions

// ToTagDTO converts a Tag model to TagDTO
func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{
		ID:   tag.ID,
		Name: tag.Name,
		Slug: tag.Slug,
	}
}

// ToTagDTOs converts a slice of Tag models, never returning nil so the JSON
// field stays an array
func ToTagDTOs(tags []models.Tag) []TagDTO {
	dtos := make([]TagDTO, len(tags))
	for i, tag := range tags {
		dtos[i] = ToTagDTO(tag)
	}
	return dtos
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:         comment.ID,
		DocumentID: comment.DocumentID,
		AuthorID:   comment.AuthorID,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}

	// Include author if preloaded
	if comment.Author.ID != 0 {
		author := ToAuthorDTO(comment.Author)
		dto.Author = &author
	}

	return dto
}

// ToMediaAssetDTO converts a MediaAsset model to MediaAssetDTO
func ToMediaAssetDTO(asset models.MediaAsset) MediaAssetDTO {
	meta := json.RawMessage(asset.MetaData)
	if len(meta) == 0 {
		meta = json.RawMessage(`{}`)
	}
	return MediaAssetDTO{
		ID:         asset.ID,
		DocumentID: asset.DocumentID,
		OwnerID:    asset.OwnerID,
		FileType:   asset.FileType,
		File:       asset.File,
		URL:        asset.URL,
		MetaData:   meta,
		CreatedAt:  asset.CreatedAt,
	}
}

// ToDocumentDTO converts a Document model to DocumentDTO
func ToDocumentDTO(doc models.Document) DocumentDTO {
	dto := DocumentDTO{
		ID:               doc.ID,
		AuthorID:         doc.AuthorID,
		Title:            doc.Title,
		Description:      doc.Description,
		Content:          doc.Content,
		ContentJSON:      json.RawMessage(doc.ContentJSON),
		BlockNoteContent: json.RawMessage(doc.BlockNoteContent),
		DocumentType:     doc.DocumentType,
		EditorType:       doc.EditorType,
		Status:           doc.Status,
		IsPublic:         doc.IsPublic,
		AllowComments:    doc.AllowComments,
		AllowSharing:     doc.AllowSharing,
		AllowEditing:     doc.AllowEditing,
		WordCount:        doc.WordCount,
		ReadTime:         doc.ReadTime,
		Tags:             ToTagDTOs(doc.Tags),
		CommentCount:     len(doc.Comments),
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}

	// Include author if preloaded
	if doc.Author.ID != 0 {
		author := ToAuthorDTO(doc.Author)
		dto.Author = &author
	}

	return dto
}

// ToDocumentListItemDTO converts a Document model to DocumentListItemDTO
func ToDocumentListItemDTO(doc models.Document) DocumentListItemDTO {
	dto := DocumentListItemDTO{
		ID:           doc.ID,
		AuthorID:     doc.AuthorID,
		Title:        doc.Title,
		Description:  doc.Description,
		DocumentType: doc.DocumentType,
		EditorType:   doc.EditorType,
		Status:       doc.Status,
		IsPublic:     doc.IsPublic,
		WordCount:    doc.WordCount,
		ReadTime:     doc.ReadTime,
		Tags:         ToTagDTOs(doc.Tags),
		CommentCount: len(doc.Comments),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}

	if doc.Author.ID != 0 {
		author := ToAuthorDTO(doc.Author)
		dto.Author = &author
	}

	return dto
}
