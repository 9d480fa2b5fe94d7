package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/ideavault/ideavault-backend/internal/data/repos"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const (
	defaultSystemLogLimit = 50
	maxSystemLogLimit     = 500
	maxSystemLogMessage   = 4000
)

type CreateSystemLogRequest struct {
	Level   string          `json:"level"`
	Message string          `json:"message"`
	Source  string          `json:"source"`
	Context json.RawMessage `json:"context"`
}

type SystemLogService interface {
	Record(ctx context.Context, req CreateSystemLogRequest) (*types.SystemLog, error)
	ListRecent(ctx context.Context, level string, limit int) ([]*types.SystemLog, error)
}

type systemLogService struct {
	log  *logger.Logger
	repo repos.SystemLogRepo
}

func NewSystemLogService(log *logger.Logger, repo repos.SystemLogRepo) SystemLogService {
	return &systemLogService{log: log.With("service", "SystemLogService"), repo: repo}
}

func (s *systemLogService) Record(ctx context.Context, req CreateSystemLogRequest) (*types.SystemLog, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	level := types.SystemLogLevel(strings.ToLower(strings.TrimSpace(req.Level)))
	if level == "" {
		level = types.LogLevelInfo
	}
	if !level.Valid() {
		return nil, apierr.BadRequest("Invalid log level")
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, apierr.BadRequest("Log message is required")
	}
	if r := []rune(msg); len(r) > maxSystemLogMessage {
		msg = string(r[:maxSystemLogMessage])
	}
	row := &types.SystemLog{
		UserID:  userID,
		Level:   level,
		Message: msg,
		Source:  strings.TrimSpace(req.Source),
	}
	if len(req.Context) > 0 && json.Valid(req.Context) {
		row.Context = datatypes.JSON(req.Context)
	}

	out, err := s.repo.Create(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("record system log: %w", err)
	}
	if level == types.LogLevelError {
		s.log.Warn("Client reported error", "user_id", userID, "source", row.Source, "message", msg)
	}
	return out, nil
}

func (s *systemLogService) ListRecent(ctx context.Context, level string, limit int) ([]*types.SystemLog, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	lvl := types.SystemLogLevel(strings.ToLower(strings.TrimSpace(level)))
	if lvl != "" && !lvl.Valid() {
		return nil, apierr.BadRequest("Invalid log level")
	}
	if limit <= 0 {
		limit = defaultSystemLogLimit
	}
	if limit > maxSystemLogLimit {
		limit = maxSystemLogLimit
	}
	rows, err := s.repo.ListRecent(ctx, nil, userID, lvl, limit)
	if err != nil {
		return nil, fmt.Errorf("list system logs: %w", err)
	}
	return rows, nil
}
