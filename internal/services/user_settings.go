package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ideavault/ideavault-backend/internal/data/repos"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type PreferencesInput struct {
	Interests       []string `json:"interests"`
	ExperienceLevel string   `json:"experience_level"`
	TimeCommitment  string   `json:"time_commitment"`
	Capital         string   `json:"capital"`
	PreferredAIRole string   `json:"preferred_ai_role"`
	TargetAudiences []string `json:"target_audiences"`
}

type ProfileInput struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Website     string `json:"website"`
}

type UserSettingsService interface {
	// GetPreferences returns the stored preferences or the defaults.
	GetPreferences(ctx context.Context) (*types.UserPreferences, error)
	// SavePreferences replaces the user's preferences.
	SavePreferences(ctx context.Context, in PreferencesInput) (*types.UserPreferences, error)
	GetProfile(ctx context.Context) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, in ProfileInput) (*types.UserProfile, error)
}

type userSettingsService struct {
	log         *logger.Logger
	preferences repos.PreferencesRepo
	profiles    repos.ProfileRepo
}

func NewUserSettingsService(log *logger.Logger, preferences repos.PreferencesRepo, profiles repos.ProfileRepo) UserSettingsService {
	return &userSettingsService{
		log:         log.With("service", "UserSettingsService"),
		preferences: preferences,
		profiles:    profiles,
	}
}

func (s *userSettingsService) GetPreferences(ctx context.Context) (*types.UserPreferences, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.preferences.Get(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if row == nil {
		return types.DefaultPreferences(userID), nil
	}
	return row, nil
}

func (s *userSettingsService) SavePreferences(ctx context.Context, in PreferencesInput) (*types.UserPreferences, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	def := types.DefaultPreferences(userID)
	row := &types.UserPreferences{
		UserID:          userID,
		Interests:       cleanList(in.Interests),
		ExperienceLevel: orDefault(in.ExperienceLevel, def.ExperienceLevel),
		TimeCommitment:  orDefault(in.TimeCommitment, def.TimeCommitment),
		Capital:         orDefault(in.Capital, def.Capital),
		PreferredAIRole: orDefault(in.PreferredAIRole, def.PreferredAIRole),
		TargetAudiences: cleanList(in.TargetAudiences),
	}
	out, err := s.preferences.Upsert(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return out, nil
}

func (s *userSettingsService) GetProfile(ctx context.Context) (*types.UserProfile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.profiles.Get(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if row == nil {
		return types.DefaultProfile(userID), nil
	}
	return row, nil
}

func (s *userSettingsService) UpdateProfile(ctx context.Context, in ProfileInput) (*types.UserProfile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	website := strings.TrimSpace(in.Website)
	if website != "" && !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		return nil, apierr.BadRequest("Website must be an http(s) URL")
	}
	row := types.DefaultProfile(userID)
	row.DisplayName = strings.TrimSpace(in.DisplayName)
	row.Bio = in.Bio
	row.Company = strings.TrimSpace(in.Company)
	row.Website = website

	out, err := s.profiles.UpsertEditable(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return out, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(v)]; ok {
			continue
		}
		seen[strings.ToLower(v)] = struct{}{}
		out = append(out, v)
	}
	return out
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
