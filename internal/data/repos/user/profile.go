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

type ProfileRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProfile, error)
	// UpsertEditable writes the user-editable columns. Credits are only set
	// when the row is first created.
	UpsertEditable(ctx context.Context, tx *gorm.DB, row *types.UserProfile) (*types.UserProfile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (r *profileRepo) Get(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.UserProfile
	err := transaction.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || db.TolerateMissingTable(r.log, "user_profiles", "get", err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *profileRepo) UpsertEditable(ctx context.Context, tx *gorm.DB, row *types.UserProfile) (*types.UserProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	if row.Credits == 0 {
		row.Credits = types.DefaultCredits
	}

	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name",
				"bio",
				"company",
				"website",
				"updated_at",
			}),
		}).
		Create(row).Error
	if db.TolerateMissingTable(r.log, "user_profiles", "upsert", err) {
		return row, nil
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, transaction, row.UserID)
}
