package models

import "time"

// Tag is a uniquely named, slugified label shared by many documents. Tags are
// soft-deleted only; a deleted tag keeps reserving its slug.
type Tag struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	Name       string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug       string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	SoftDelete bool      `gorm:"not null;default:false;index" json:"soft_delete"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Documents []Document `gorm:"many2many:document_tags" json:"-"`
}
