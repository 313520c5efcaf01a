package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the relocation tables and indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&File{},
		&FileBlob{},
		&Relocation{},
		&RelocationFile{},
	); err != nil {
		return fmt.Errorf("failed to migrate relocation tables: %w", err)
	}

	// At most one in-progress relocation per owner, enforced at the storage
	// layer so concurrent submissions cannot race past an application check.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_relocations_owner_in_progress
		 ON relocations (owner_id)
		 WHERE status = 'IN_PROGRESS'`,
	).Error; err != nil {
		return fmt.Errorf("failed to create owner admission index: %w", err)
	}

	return nil
}
