package db

import (
	"fmt"

	types "github.com/ideavault/ideavault-backend/internal/domain"
	"gorm.io/gorm"
)

// AutoMigrateUserData creates or updates every user-data table. The ideas
// store is owned elsewhere and is never migrated from here.
func AutoMigrateUserData(db *gorm.DB) error {
	if err := db.AutoMigrate(types.UserDataModels()...); err != nil {
		return fmt.Errorf("auto migrate user data: %w", err)
	}
	return nil
}

// EnsureUserDataIndexes adds the postgres-only indexes AutoMigrate cannot
// express.
func EnsureUserDataIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_reports_user_idea ON reports(user_id, idea_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_milestones_user_idea ON milestones(user_id, idea_id);`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}
