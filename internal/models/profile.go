package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile holds per-user preferences. Exactly one row exists per user; it is
// provisioned inside the signup transaction and created on demand if an
// update arrives for a user that somehow lacks one.
type Profile struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	UserID      uint64         `gorm:"uniqueIndex;not null" json:"user_id"`
	Avatar      string         `gorm:"type:varchar(512)" json:"avatar"`
	Bio         string         `gorm:"type:text" json:"bio"`
	Preferences datatypes.JSON `gorm:"type:json" json:"preferences"`
	Timezone    string         `gorm:"type:varchar(50);not null;default:'UTC'" json:"timezone"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
