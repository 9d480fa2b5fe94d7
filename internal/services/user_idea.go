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
	"github.com/ideavault/ideavault-backend/internal/platform/ctxutil"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const (
	defaultIdeaListLimit = 50
	maxIdeaListLimit     = 200
)

type UpdateUserIdeaRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type UserIdeaService interface {
	Save(ctx context.Context, idea *types.Idea) (*types.UserIdea, error)
	List(ctx context.Context, status string, limit int) ([]*types.UserIdea, error)
	Get(ctx context.Context, ideaID string) (*types.UserIdea, error)
	Update(ctx context.Context, ideaID string, req UpdateUserIdeaRequest) (*types.UserIdea, error)
	Delete(ctx context.Context, ideaID string) error
}

type userIdeaService struct {
	log  *logger.Logger
	repo repos.UserIdeaRepo
}

func NewUserIdeaService(log *logger.Logger, repo repos.UserIdeaRepo) UserIdeaService {
	return &userIdeaService{log: log.With("service", "UserIdeaService"), repo: repo}
}

func requireUser(ctx context.Context) (string, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return "", apierr.Unauthorized()
	}
	return userID, nil
}

func (s *userIdeaService) Save(ctx context.Context, idea *types.Idea) (*types.UserIdea, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if idea == nil || strings.TrimSpace(idea.Title) == "" {
		return nil, apierr.BadRequest("Idea title is required")
	}
	in := *idea
	if strings.TrimSpace(in.ID) == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	in.Difficulty = types.ParseDifficulty(string(in.Difficulty))

	row := types.NewUserIdea(userID, in, types.IdeaStatusSaved)
	created, err := s.repo.Save(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("save idea: %w", err)
	}
	if !created {
		return nil, apierr.Conflict("Idea already saved")
	}
	s.log.Info("Idea saved", "user_id", userID, "idea_id", row.IdeaID)
	return row, nil
}

func (s *userIdeaService) List(ctx context.Context, status string, limit int) ([]*types.UserIdea, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	if status != "" && !types.IdeaStatus(status).Valid() {
		return nil, apierr.BadRequest("Invalid status")
	}
	if limit <= 0 {
		limit = defaultIdeaListLimit
	}
	if limit > maxIdeaListLimit {
		limit = maxIdeaListLimit
	}
	rows, err := s.repo.ListByUser(ctx, nil, userID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return rows, nil
}

func (s *userIdeaService) Get(ctx context.Context, ideaID string) (*types.UserIdea, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetByIdeaID(ctx, nil, userID, strings.TrimSpace(ideaID))
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("Idea not found")
	}
	return row, nil
}

func (s *userIdeaService) Update(ctx context.Context, ideaID string, req UpdateUserIdeaRequest) (*types.UserIdea, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Status != nil {
		status := types.IdeaStatus(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			return nil, apierr.BadRequest("Invalid status")
		}
		updates["status"] = string(status)
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return nil, apierr.BadRequest("No updatable fields provided")
	}

	row, err := s.repo.UpdateFields(ctx, nil, userID, strings.TrimSpace(ideaID), updates)
	if err != nil {
		return nil, fmt.Errorf("update idea: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("Idea not found")
	}
	return row, nil
}

func (s *userIdeaService) Delete(ctx context.Context, ideaID string) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, nil, userID, strings.TrimSpace(ideaID))
	if err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}
	if !deleted {
		return apierr.NotFound("Idea not found")
	}
	return nil
}
