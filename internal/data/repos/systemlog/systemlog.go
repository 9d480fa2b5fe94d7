package systemlog

import (
	"context"

	"gorm.io/gorm"

	"github.com/ideavault/ideavault-backend/internal/data/db"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type SystemLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.SystemLog) (*types.SystemLog, error)
	ListRecent(ctx context.Context, tx *gorm.DB, userID string, level types.SystemLogLevel, limit int) ([]*types.SystemLog, error)
}

type systemLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSystemLogRepo(db *gorm.DB, baseLog *logger.Logger) SystemLogRepo {
	repoLog := baseLog.With("repo", "SystemLogRepo")
	return &systemLogRepo{db: db, log: repoLog}
}

func (r *systemLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.SystemLog) (*types.SystemLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).Create(row).Error
	if db.TolerateMissingTable(r.log, "system_logs", "create", err) {
		return row, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *systemLogRepo) ListRecent(ctx context.Context, tx *gorm.DB, userID string, level types.SystemLogLevel, limit int) ([]*types.SystemLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.SystemLog{}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if level != "" {
		q = q.Where("level = ?", level)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("created_at DESC").Find(&results).Error
	if db.TolerateMissingTable(r.log, "system_logs", "list", err) {
		return []*types.SystemLog{}, nil
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}
