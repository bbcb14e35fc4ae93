package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/models"
)

// Migrate runs AutoMigrate for all models and then applies the uniqueness
// indexes the column tags cannot express.
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB migrates an explicit database handle (used by tests).
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Tag{},
		&models.Document{},
		&models.Comment{},
		&models.MediaAsset{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := addConstraintIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	return nil
}

// addConstraintIndexes creates the unique index that enforces
// (author_id, title) uniqueness among live documents. Soft-deleted rows stay
// out of the index so a deleted title can be reused. SQLite and Postgres
// express this with a partial index; MySQL has none, so a generated column
// marks live rows (NULL for deleted ones, and NULLs never collide in a MySQL
// unique index) and the unique index includes it.
func addConstraintIndexes(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		stmt := `CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_author_title_live
			ON documents (author_id, title) WHERE soft_delete = false`
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index idx_documents_author_title_live: %w", err)
		}
	case "mysql":
		if !db.Migrator().HasColumn(&models.Document{}, "live_marker") {
			stmt := `ALTER TABLE documents ADD COLUMN live_marker TINYINT
				GENERATED ALWAYS AS (IF(soft_delete, NULL, 1)) VIRTUAL`
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to add live_marker column: %w", err)
			}
		}
		if !db.Migrator().HasIndex(&models.Document{}, "idx_documents_author_title_live") {
			stmt := `CREATE UNIQUE INDEX idx_documents_author_title_live
				ON documents (author_id, title, live_marker)`
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to create index idx_documents_author_title_live: %w", err)
			}
		}
	}
	return nil
}
