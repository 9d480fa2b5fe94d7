package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// PostgresService owns one gorm connection. The process opens one for the
// ideas store and one for the user-data store.
type PostgresService struct {
	name string
	db   *gorm.DB
	log  *logger.Logger
}

var openDialector = postgres.Open

func NewPostgresService(logg *logger.Logger, name, dsn string) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService", "store", name)
	if dsn == "" {
		return nil, fmt.Errorf("%s store: empty DSN", name)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(openDialector(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %w", name, err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	serviceLog.Info("Connected to Postgres")
	return &PostgresService{name: name, db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
