package useridea

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

const table = "user_ideas"

type UserIdeaRepo interface {
	// CreateIgnoreDuplicates inserts rows, skipping ones whose (user_id,
	// idea_id) already exists.
	CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.UserIdea) ([]*types.UserIdea, error)
	// Save inserts row or promotes an existing generated row to row.Status.
	// It returns created=false when the user already holds the idea.
	Save(ctx context.Context, tx *gorm.DB, row *types.UserIdea) (created bool, err error)
	GetByIdeaID(ctx context.Context, tx *gorm.DB, userID, ideaID string) (*types.UserIdea, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, status string, limit int) ([]*types.UserIdea, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, userID, ideaID string, updates map[string]interface{}) (*types.UserIdea, error)
	Delete(ctx context.Context, tx *gorm.DB, userID, ideaID string) (bool, error)
}

type userIdeaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserIdeaRepo(db *gorm.DB, baseLog *logger.Logger) UserIdeaRepo {
	repoLog := baseLog.With("repo", "UserIdeaRepo")
	return &userIdeaRepo{db: db, log: repoLog}
}

func (r *userIdeaRepo) CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.UserIdea) ([]*types.UserIdea, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.UserIdea{}, nil
	}

	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "idea_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
	if db.TolerateMissingTable(r.log, table, "create", err) {
		return rows, nil
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userIdeaRepo) Save(ctx context.Context, tx *gorm.DB, row *types.UserIdea) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	created := false
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var existing types.UserIdea
		err := txx.Where("user_id = ? AND idea_id = ?", row.UserID, row.IdeaID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return txx.Create(row).Error
		}
		if err != nil {
			return err
		}
		if existing.Status != string(types.IdeaStatusGenerated) || existing.Status == row.Status {
			*row = existing
			return nil
		}
		created = true
		if err := txx.Model(&existing).Updates(map[string]interface{}{
			"status":     row.Status,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		existing.Status = row.Status
		*row = existing
		return nil
	})
	if db.TolerateMissingTable(r.log, table, "save", err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *userIdeaRepo) GetByIdeaID(ctx context.Context, tx *gorm.DB, userID, ideaID string) (*types.UserIdea, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var out types.UserIdea
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND idea_id = ?", userID, ideaID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || db.TolerateMissingTable(r.log, table, "get", err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userIdeaRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string, status string, limit int) ([]*types.UserIdea, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.UserIdea{}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("created_at DESC").Find(&results).Error
	if db.TolerateMissingTable(r.log, table, "list", err) {
		return []*types.UserIdea{}, nil
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userIdeaRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID, ideaID string, updates map[string]interface{}) (*types.UserIdea, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()

	res := transaction.WithContext(ctx).
		Model(&types.UserIdea{}).
		Where("user_id = ? AND idea_id = ?", userID, ideaID).
		Updates(updates)
	if db.TolerateMissingTable(r.log, table, "update", res.Error) {
		return nil, nil
	}
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByIdeaID(ctx, transaction, userID, ideaID)
}

func (r *userIdeaRepo) Delete(ctx context.Context, tx *gorm.DB, userID, ideaID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("user_id = ? AND idea_id = ?", userID, ideaID).
		Delete(&types.UserIdea{})
	if db.TolerateMissingTable(r.log, table, "delete", res.Error) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
