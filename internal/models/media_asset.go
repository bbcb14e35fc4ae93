package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeFile  FileType = "file"
)

func FileTypes() []FileType {
	return []FileType{FileTypeImage, FileTypeVideo, FileTypeFile}
}

// MediaAsset is an attachment belonging to a document. At least one of File
// (an object-store key) or URL (an external location) must be present.
type MediaAsset struct {
	ID         uuid.UUID      `gorm:"type:char(36);primarykey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:char(36);not null;index" json:"document_id"`
	OwnerID    uint64         `gorm:"not null;index" json:"owner_id"`
	FileType   FileType       `gorm:"type:varchar(20);not null;default:'file'" json:"file_type"`
	File       string         `gorm:"type:varchar(512)" json:"file"`
	URL        string         `gorm:"type:varchar(512)" json:"url"`
	MetaData   datatypes.JSON `gorm:"type:json" json:"meta_data"`
	SoftDelete bool           `gorm:"not null;default:false;index" json:"soft_delete"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	// Relations
	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
	Owner    User     `gorm:"foreignKey:OwnerID" json:"-"`
}

func (m *MediaAsset) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
