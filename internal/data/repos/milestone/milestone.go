package milestone

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ideavault/ideavault-backend/internal/data/db"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const table = "milestones"

type MilestoneRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Milestone) (*types.Milestone, error)
	GetForUser(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.Milestone, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID, ideaID string) ([]*types.Milestone, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Milestone) (*types.Milestone, error)
	Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (bool, error)
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	repoLog := baseLog.With("repo", "MilestoneRepo")
	return &milestoneRepo{db: db, log: repoLog}
}

func (r *milestoneRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Milestone) (*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).Create(row).Error
	if db.TolerateMissingTable(r.log, table, "create", err) {
		return row, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *milestoneRepo) GetForUser(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Milestone
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || db.TolerateMissingTable(r.log, table, "get", err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *milestoneRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID, ideaID string) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.Milestone{}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if ideaID != "" {
		q = q.Where("idea_id = ?", ideaID)
	}
	err := q.Order("due_date ASC").Order("created_at ASC").Find(&results).Error
	if db.TolerateMissingTable(r.log, table, "list", err) {
		return []*types.Milestone{}, nil
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *milestoneRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Milestone) (*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).Save(row).Error
	if db.TolerateMissingTable(r.log, table, "save", err) {
		return row, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *milestoneRepo) Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.Milestone{})
	if db.TolerateMissingTable(r.log, table, "delete", res.Error) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
