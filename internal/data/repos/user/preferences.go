package user

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ideavault/ideavault-backend/internal/data/db"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type PreferencesRepo interface {
	// Get returns the stored preferences or nil when the user has none.
	Get(ctx context.Context, tx *gorm.DB, userID string) (*types.UserPreferences, error)
	// Upsert overwrites every column of the user's preferences.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.UserPreferences) (*types.UserPreferences, error)
}

type preferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	repoLog := baseLog.With("repo", "PreferencesRepo")
	return &preferencesRepo{db: db, log: repoLog}
}

func (r *preferencesRepo) Get(ctx context.Context, tx *gorm.DB, userID string) (*types.UserPreferences, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.UserPreferences
	err := transaction.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || db.TolerateMissingTable(r.log, "user_preferences", "get", err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *preferencesRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.UserPreferences) (*types.UserPreferences, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"interests",
				"experience_level",
				"time_commitment",
				"capital",
				"preferred_ai_role",
				"target_audiences",
				"updated_at",
			}),
		}).
		Create(row).Error
	if db.TolerateMissingTable(r.log, "user_preferences", "upsert", err) {
		return row, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
