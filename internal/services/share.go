package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault-backend/internal/data/repos"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const ShareTTL = 30 * 24 * time.Hour

type ShareReportRequest struct {
	ReportID string `json:"report_id"`
	// IdeaID shares the user's latest report for the idea when ReportID is empty.
	IdeaID string `json:"idea_id"`
}

type ShareReportResult struct {
	Success   bool       `json:"success"`
	ShareID   string     `json:"share_id"`
	ShareURL  string     `json:"share_url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type SharedReportView struct {
	Success   bool            `json:"success"`
	Report    json.RawMessage `json:"report"`
	IdeaTitle string          `json:"idea_title"`
	IdeaID    string          `json:"idea_id"`
	CreatedAt time.Time       `json:"created_at"`
	ViewCount int             `json:"view_count"`
}

type ShareService interface {
	Share(ctx context.Context, req ShareReportRequest) (*ShareReportResult, error)
	// GetShared is public: it resolves a token and counts the view.
	GetShared(ctx context.Context, token string) (*SharedReportView, error)
}

type shareService struct {
	log     *logger.Logger
	reports repos.ReportRepo
	shares  repos.SharedReportRepo
	appURL  string
	now     func() time.Time
}

func NewShareService(log *logger.Logger, reports repos.ReportRepo, shares repos.SharedReportRepo, appURL string) ShareService {
	return &shareService{
		log:     log.With("service", "ShareService"),
		reports: reports,
		shares:  shares,
		appURL:  strings.TrimRight(strings.TrimSpace(appURL), "/"),
		now:     time.Now,
	}
}

func (s *shareService) Share(ctx context.Context, req ShareReportRequest) (*ShareReportResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var reportID uuid.UUID
	switch {
	case strings.TrimSpace(req.ReportID) != "":
		reportID, err = uuid.Parse(strings.TrimSpace(req.ReportID))
		if err != nil {
			return nil, apierr.BadRequest("Invalid report id")
		}
		row, err := s.reports.GetForUser(ctx, nil, userID, reportID)
		if err != nil {
			return nil, fmt.Errorf("load report: %w", err)
		}
		if row == nil {
			return nil, apierr.NotFound("Report not found")
		}
	case strings.TrimSpace(req.IdeaID) != "":
		row, err := s.reports.LatestForIdea(ctx, nil, userID, strings.TrimSpace(req.IdeaID))
		if err != nil {
			return nil, fmt.Errorf("load report: %w", err)
		}
		if row == nil {
			return nil, apierr.NotFound("Report not found")
		}
		reportID = row.ID
	default:
		return nil, apierr.BadRequest("report_id is required")
	}

	now := s.now().UTC()
	share, err := s.shares.FindActive(ctx, nil, userID, reportID, now)
	if err != nil {
		return nil, fmt.Errorf("find share: %w", err)
	}
	if share == nil {
		expires := now.Add(ShareTTL)
		share, err = s.shares.Create(ctx, nil, &types.SharedReport{
			ReportID:    reportID,
			OwnerUserID: userID,
			ExpiresAt:   &expires,
		})
		if err != nil {
			return nil, fmt.Errorf("create share: %w", err)
		}
		s.log.Info("Report shared", "user_id", userID, "report_id", reportID.String())
	}

	return &ShareReportResult{
		Success:   true,
		ShareID:   share.Token,
		ShareURL:  s.appURL + "/shared/" + share.Token,
		ExpiresAt: share.ExpiresAt,
	}, nil
}

func (s *shareService) GetShared(ctx context.Context, token string) (*SharedReportView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apierr.NotFound("Shared report not found")
	}
	share, err := s.shares.GetByToken(ctx, nil, token)
	if err != nil {
		return nil, fmt.Errorf("load share: %w", err)
	}
	if share == nil || share.Expired(s.now()) {
		return nil, apierr.NotFound("Shared report not found")
	}
	row, err := s.reports.GetByID(ctx, nil, share.ReportID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("Shared report not found")
	}
	if err := s.shares.IncrementViews(ctx, nil, share.ID); err != nil {
		s.log.Warn("Failed to count shared report view", "share_id", share.ID.String(), "error", err)
	}
	return &SharedReportView{
		Success:   true,
		Report:    json.RawMessage(row.Body),
		IdeaTitle: row.IdeaTitle,
		IdeaID:    row.IdeaID,
		CreatedAt: row.CreatedAt,
		ViewCount: share.ViewCount + 1,
	}, nil
}
