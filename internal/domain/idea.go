package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty maps free text onto a difficulty, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d.Valid() {
		return d
	}
	switch {
	case strings.Contains(string(d), "beginner"), strings.Contains(string(d), "low"):
		return DifficultyEasy
	case strings.Contains(string(d), "advanced"), strings.Contains(string(d), "high"), strings.Contains(string(d), "expert"):
		return DifficultyHard
	}
	return DifficultyMedium
}

type IdeaSource string

const (
	SourceProductHunt IdeaSource = "product_hunt"
	SourceSynthesis   IdeaSource = "gemini_synthesis"
	SourceFallback    IdeaSource = "fallback"
)

// Idea is a candidate business idea. Ideas come from the vector store, from
// LLM synthesis, or from fallback templates.
type Idea struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	TargetAudience string     `json:"target_audience"`
	Tags           []string   `json:"tags"`
	Upvotes        int        `json:"upvotes"`
	Source         IdeaSource `json:"source"`
	Similarity     float64    `json:"similarity"`
	CreatedAt      time.Time  `json:"created_at"`
	UserID         string     `json:"user_id,omitempty"`

	RelevanceScore  *float64 `json:"relevance_score,omitempty"`
	PromptRelevance *float64 `json:"prompt_relevance,omitempty"`
}

// NormalizeTitle lowercases and strips everything but letters and digits.
// Two ideas with the same normalized title are duplicates.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DedupeByTitle keeps the first idea for each normalized title, preserving order.
func DedupeByTitle(ideas []Idea) []Idea {
	seen := make(map[string]struct{}, len(ideas))
	out := make([]Idea, 0, len(ideas))
	for _, idea := range ideas {
		key := NormalizeTitle(idea.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, idea)
	}
	return out
}

type IdeaStatus string

const (
	IdeaStatusGenerated  IdeaStatus = "generated"
	IdeaStatusSaved      IdeaStatus = "saved"
	IdeaStatusInProgress IdeaStatus = "in_progress"
	IdeaStatusCompleted  IdeaStatus = "completed"
	IdeaStatusArchived   IdeaStatus = "archived"
)

func (s IdeaStatus) Valid() bool {
	switch s {
	case IdeaStatusGenerated, IdeaStatusSaved, IdeaStatusInProgress, IdeaStatusCompleted, IdeaStatusArchived:
		return true
	}
	return false
}

// UserIdea is an idea row in the user-data store. Pipeline output is stored
// with status "generated"; saving promotes it to "saved".
type UserIdea struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string    `gorm:"column:user_id;not null;uniqueIndex:idx_user_ideas_user_idea" json:"user_id"`
	IdeaID string    `gorm:"column:idea_id;not null;uniqueIndex:idx_user_ideas_user_idea" json:"idea_id"`

	Title          string   `gorm:"not null" json:"title"`
	Description    string   `gorm:"type:text" json:"description"`
	Category       string   `gorm:"index" json:"category"`
	Difficulty     string   `json:"difficulty"`
	TargetAudience string   `gorm:"column:target_audience" json:"target_audience"`
	Tags           []string `gorm:"serializer:json;type:jsonb" json:"tags"`
	Upvotes        int      `json:"upvotes"`
	Source         string   `json:"source"`
	Similarity     float64  `json:"similarity"`

	Status string `gorm:"not null;index" json:"status"`
	Notes  string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserIdea) TableName() string { return "user_ideas" }

func (u *UserIdea) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = string(IdeaStatusGenerated)
	}
	return nil
}

func NewUserIdea(userID string, idea Idea, status IdeaStatus) *UserIdea {
	return &UserIdea{
		UserID:         userID,
		IdeaID:         idea.ID,
		Title:          idea.Title,
		Description:    idea.Description,
		Category:       idea.Category,
		Difficulty:     string(idea.Difficulty),
		TargetAudience: idea.TargetAudience,
		Tags:           idea.Tags,
		Upvotes:        idea.Upvotes,
		Source:         string(idea.Source),
		Similarity:     idea.Similarity,
		Status:         string(status),
		CreatedAt:      idea.CreatedAt,
	}
}

func (u *UserIdea) Idea() Idea {
	return Idea{
		ID:             u.IdeaID,
		Title:          u.Title,
		Description:    u.Description,
		Category:       u.Category,
		Difficulty:     ParseDifficulty(u.Difficulty),
		TargetAudience: u.TargetAudience,
		Tags:           u.Tags,
		Upvotes:        u.Upvotes,
		Source:         IdeaSource(u.Source),
		Similarity:     u.Similarity,
		CreatedAt:      u.CreatedAt,
		UserID:         u.UserID,
	}
}
