package database

import (
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// Live filters out soft-deleted rows.
func Live(db *gorm.DB) *gorm.DB {
	return db.Where("soft_delete = ?", false)
}
