package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Profile{},

		&types.Module{},
		&types.Session{},
		&types.Timestamp{},

		&types.Note{},
		&types.Progress{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
