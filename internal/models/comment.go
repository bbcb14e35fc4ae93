package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID         uuid.UUID `gorm:"type:char(36);primarykey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:char(36);not null;index" json:"document_id"`
	AuthorID   uint64    `gorm:"not null;index" json:"author_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	SoftDelete bool      `gorm:"not null;default:false;index" json:"soft_delete"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
	Author   User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
