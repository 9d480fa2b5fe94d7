package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ideavault/ideavault-backend/internal/data/db"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type SharedReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.SharedReport) (*types.SharedReport, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.SharedReport, error)
	// FindActive returns an unexpired share the owner already created for
	// the report.
	FindActive(ctx context.Context, tx *gorm.DB, ownerUserID string, reportID uuid.UUID, now time.Time) (*types.SharedReport, error)
	IncrementViews(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type sharedReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSharedReportRepo(db *gorm.DB, baseLog *logger.Logger) SharedReportRepo {
	repoLog := baseLog.With("repo", "SharedReportRepo")
	return &sharedReportRepo{db: db, log: repoLog}
}

func (r *sharedReportRepo) Create(ctx context.Context, tx *gorm.DB, row *types.SharedReport) (*types.SharedReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).Create(row).Error
	if db.TolerateMissingTable(r.log, "shared_reports", "create", err) {
		return row, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sharedReportRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.SharedReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.SharedReport
	err := transaction.WithContext(ctx).Where("token = ?", token).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || db.TolerateMissingTable(r.log, "shared_reports", "get", err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sharedReportRepo) FindActive(ctx context.Context, tx *gorm.DB, ownerUserID string, reportID uuid.UUID, now time.Time) (*types.SharedReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.SharedReport
	err := transaction.WithContext(ctx).
		Where("owner_user_id = ? AND report_id = ?", ownerUserID, reportID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || db.TolerateMissingTable(r.log, "shared_reports", "find_active", err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sharedReportRepo) IncrementViews(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).
		Model(&types.SharedReport{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if db.TolerateMissingTable(r.log, "shared_reports", "increment_views", err) {
		return nil
	}
	return err
}
