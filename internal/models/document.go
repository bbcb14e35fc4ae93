package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentType string

const (
	DocumentTypeBlog      DocumentType = "blog"
	DocumentTypeTutorial  DocumentType = "tutorial"
	DocumentTypeTechDoc   DocumentType = "tech-doc"
	DocumentTypeMarketing DocumentType = "marketing"
)

// DocumentTypes lists every valid document type, in a stable order.
func DocumentTypes() []DocumentType {
	return []DocumentType{DocumentTypeBlog, DocumentTypeTutorial, DocumentTypeTechDoc, DocumentTypeMarketing}
}

type EditorType string

const (
	EditorTypeTipTap    EditorType = "tiptap"
	EditorTypeBlockNote EditorType = "blocknote"
	EditorTypeHybrid    EditorType = "hybrid"
)

func EditorTypes() []EditorType {
	return []EditorType{EditorTypeTipTap, EditorTypeBlockNote, EditorTypeHybrid}
}

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPublished DocumentStatus = "published"
	DocumentStatusArchived  DocumentStatus = "archived"
)

func DocumentStatuses() []DocumentStatus {
	return []DocumentStatus{DocumentStatusDraft, DocumentStatusPublished, DocumentStatusArchived}
}

// Document is the central entity: rich-text content in two representations,
// ownership and visibility flags, derived word-count/read-time, tags, and a
// soft-delete flag. Rows are never physically removed.
type Document struct {
	ID               uuid.UUID      `gorm:"type:char(36);primarykey" json:"id"`
	AuthorID         uint64         `gorm:"not null;index:idx_documents_author_status" json:"author_id"`
	Title            string         `gorm:"type:varchar(200);not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Content          string         `gorm:"type:text" json:"content"`
	ContentJSON      datatypes.JSON `gorm:"type:json" json:"content_json"`
	BlockNoteContent datatypes.JSON `gorm:"type:json" json:"block_note_content"`
	DocumentType     DocumentType   `gorm:"type:varchar(50);not null;default:'blog'" json:"document_type"`
	EditorType       EditorType     `gorm:"type:varchar(20);not null;default:'hybrid'" json:"editor_type"`
	Status           DocumentStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_documents_author_status" json:"status"`
	IsPublic         bool           `gorm:"not null;default:false;index" json:"is_public"`
	AllowComments    bool           `gorm:"not null;default:true" json:"allow_comments"`
	AllowSharing     bool           `gorm:"not null;default:false" json:"allow_sharing"`
	AllowEditing     bool           `gorm:"not null;default:false" json:"allow_editing"`
	WordCount        uint           `gorm:"not null;default:0" json:"word_count"`
	ReadTime         string         `gorm:"type:varchar(20)" json:"read_time"`
	SoftDelete       bool           `gorm:"not null;default:false;index" json:"soft_delete"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// Relations
	Author      User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags        []Tag        `gorm:"many2many:document_tags" json:"tags,omitempty"`
	Comments    []Comment    `gorm:"foreignKey:DocumentID" json:"comments,omitempty"`
	MediaAssets []MediaAsset `gorm:"foreignKey:DocumentID" json:"media_assets,omitempty"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
