package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ideavault/ideavault-backend/internal/data/db"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type ReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.StoredReport) (*types.StoredReport, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StoredReport, error)
	GetForUser(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.StoredReport, error)
	LatestForIdea(ctx context.Context, tx *gorm.DB, userID, ideaID string) (*types.StoredReport, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*types.StoredReport, error)
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	repoLog := baseLog.With("repo", "ReportRepo")
	return &reportRepo{db: db, log: repoLog}
}

func (r *reportRepo) Create(ctx context.Context, tx *gorm.DB, row *types.StoredReport) (*types.StoredReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).Create(row).Error
	if db.TolerateMissingTable(r.log, "reports", "create", err) {
		return row, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *reportRepo) first(ctx context.Context, tx *gorm.DB, op string, query string, args ...interface{}) (*types.StoredReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.StoredReport
	err := transaction.WithContext(ctx).
		Where(query, args...).
		Order("created_at DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || db.TolerateMissingTable(r.log, "reports", op, err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StoredReport, error) {
	return r.first(ctx, tx, "get", "id = ?", id)
}

func (r *reportRepo) GetForUser(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.StoredReport, error) {
	return r.first(ctx, tx, "get_for_user", "id = ? AND user_id = ?", id, userID)
}

func (r *reportRepo) LatestForIdea(ctx context.Context, tx *gorm.DB, userID, ideaID string) (*types.StoredReport, error) {
	return r.first(ctx, tx, "latest_for_idea", "user_id = ? AND idea_id = ?", userID, ideaID)
}

func (r *reportRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*types.StoredReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.StoredReport{}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&results).Error
	if db.TolerateMissingTable(r.log, "reports", "list", err) {
		return []*types.StoredReport{}, nil
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}
