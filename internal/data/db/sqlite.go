package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const localDSN = "file:ideavault-local?mode=memory&cache=shared"

// OpenLocal opens a process-local SQLite database for the user-data store.
// It is used when no Postgres DSN is configured; nothing survives a restart.
func OpenLocal(logg *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(localDSN), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open local sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("local sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if logg != nil {
		logg.Warn("User data store not configured; using in-memory SQLite", "dsn", localDSN)
	}
	return db, nil
}
