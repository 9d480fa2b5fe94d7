package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault-backend/internal/data/repos"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type CreateMilestoneRequest struct {
	IdeaID               string  `json:"idea_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Status               string  `json:"status"`
	Priority             string  `json:"priority"`
	DueDate              *string `json:"due_date"`
	CompletionPercentage *int    `json:"completion_percentage"`
}

type UpdateMilestoneRequest struct {
	Title                *string `json:"title"`
	Description          *string `json:"description"`
	Status               *string `json:"status"`
	Priority             *string `json:"priority"`
	DueDate              *string `json:"due_date"`
	CompletionPercentage *int    `json:"completion_percentage"`
}

type MilestoneService interface {
	List(ctx context.Context, ideaID string) ([]*types.Milestone, error)
	Create(ctx context.Context, req CreateMilestoneRequest) (*types.Milestone, error)
	Update(ctx context.Context, id string, req UpdateMilestoneRequest) (*types.Milestone, error)
	Delete(ctx context.Context, id string) error
}

type milestoneService struct {
	log  *logger.Logger
	repo repos.MilestoneRepo
	now  func() time.Time
}

func NewMilestoneService(log *logger.Logger, repo repos.MilestoneRepo) MilestoneService {
	return &milestoneService{
		log:  log.With("service", "MilestoneService"),
		repo: repo,
		now:  time.Now,
	}
}

func (s *milestoneService) List(ctx context.Context, ideaID string) ([]*types.Milestone, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, nil, userID, strings.TrimSpace(ideaID))
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return rows, nil
}

func (s *milestoneService) Create(ctx context.Context, req CreateMilestoneRequest) (*types.Milestone, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apierr.BadRequest("Milestone title is required")
	}

	m := &types.Milestone{
		UserID:      userID,
		IdeaID:      strings.TrimSpace(req.IdeaID),
		Title:       title,
		Description: req.Description,
		Status:      types.MilestoneNotStarted,
		Priority:    types.PriorityMedium,
	}
	if req.Status != "" {
		if m.Status, err = parseMilestoneStatus(req.Status); err != nil {
			return nil, err
		}
	}
	if req.Priority != "" {
		if m.Priority, err = parseMilestonePriority(req.Priority); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil {
		if m.DueDate, err = parseDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.CompletionPercentage != nil {
		if err := validatePercentage(*req.CompletionPercentage); err != nil {
			return nil, err
		}
		m.CompletionPercentage = *req.CompletionPercentage
	}
	m.ApplyStatusRules(req.CompletionPercentage != nil, s.now().UTC())

	out, err := s.repo.Create(ctx, nil, m)
	if err != nil {
		return nil, fmt.Errorf("create milestone: %w", err)
	}
	return out, nil
}

func (s *milestoneService) Update(ctx context.Context, id string, req UpdateMilestoneRequest) (*types.Milestone, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	milestoneID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apierr.NotFound("Milestone not found")
	}

	// Validate before touching the store.
	var status *types.MilestoneStatus
	if req.Status != nil {
		st, err := parseMilestoneStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}
	var priority *types.MilestonePriority
	if req.Priority != nil {
		p, err := parseMilestonePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		priority = &p
	}
	if req.CompletionPercentage != nil {
		if err := validatePercentage(*req.CompletionPercentage); err != nil {
			return nil, err
		}
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, apierr.BadRequest("Milestone title is required")
	}
	var due *time.Time
	if req.DueDate != nil {
		if due, err = parseDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}

	m, err := s.repo.GetForUser(ctx, nil, userID, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("load milestone: %w", err)
	}
	if m == nil {
		return nil, apierr.NotFound("Milestone not found")
	}

	if req.Title != nil {
		m.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if priority != nil {
		m.Priority = *priority
	}
	if req.DueDate != nil {
		m.DueDate = due
	}
	if req.CompletionPercentage != nil {
		m.CompletionPercentage = *req.CompletionPercentage
	}
	if status != nil {
		m.Status = *status
	}
	m.ApplyStatusRules(req.CompletionPercentage != nil, s.now().UTC())

	out, err := s.repo.Save(ctx, nil, m)
	if err != nil {
		return nil, fmt.Errorf("update milestone: %w", err)
	}
	return out, nil
}

func (s *milestoneService) Delete(ctx context.Context, id string) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	milestoneID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return apierr.NotFound("Milestone not found")
	}
	deleted, err := s.repo.Delete(ctx, nil, userID, milestoneID)
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	if !deleted {
		return apierr.NotFound("Milestone not found")
	}
	return nil
}

func parseMilestoneStatus(raw string) (types.MilestoneStatus, error) {
	st := types.MilestoneStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !st.Valid() {
		return "", apierr.BadRequest("Invalid status")
	}
	return st, nil
}

func parseMilestonePriority(raw string) (types.MilestonePriority, error) {
	p := types.MilestonePriority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", apierr.BadRequest("Invalid priority")
	}
	return p, nil
}

func validatePercentage(p int) error {
	if p < 0 || p > 100 {
		return apierr.BadRequest("Completion percentage must be between 0 and 100")
	}
	return nil
}

// parseDueDate accepts RFC 3339 timestamps or plain dates. An empty string
// clears the due date.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apierr.BadRequest("Invalid due date")
}
