package database

import (
	"mindlog-backend/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresConnection opens a GORM connection to the configured Postgres instance
func NewPostgresConnection(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSearchIndex creates the GIN index backing full-text search over entry content.
// AutoMigrate cannot express expression indexes, so this runs as raw SQL after migration.
func EnsureSearchIndex(db *gorm.DB) error {
	return db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_content_fts
		 ON journal_entries USING GIN (to_tsvector('english', content))`,
	).Error
}
