package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MilestoneStatus string

const (
	MilestoneNotStarted MilestoneStatus = "not_started"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneArchived   MilestoneStatus = "archived"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneNotStarted, MilestoneInProgress, MilestoneCompleted, MilestoneArchived:
		return true
	}
	return false
}

type MilestonePriority string

const (
	PriorityLow    MilestonePriority = "low"
	PriorityMedium MilestonePriority = "medium"
	PriorityHigh   MilestonePriority = "high"
)

func (p MilestonePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// InProgressDefaultPercentage is applied when a milestone moves to
// in_progress without an explicit completion percentage.
const InProgressDefaultPercentage = 25

type Milestone struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;not null;index" json:"user_id"`
	IdeaID      string    `gorm:"column:idea_id;index" json:"idea_id,omitempty"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`

	Status               MilestoneStatus   `gorm:"not null;index" json:"status"`
	Priority             MilestonePriority `gorm:"not null" json:"priority"`
	DueDate              *time.Time        `gorm:"column:due_date" json:"due_date,omitempty"`
	CompletionPercentage int               `gorm:"column:completion_percentage;not null" json:"completion_percentage"`
	CompletedAt          *time.Time        `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Milestone) TableName() string { return "milestones" }

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ApplyStatusRules enforces the completion percentage implied by status.
// percentageSet reports whether the caller supplied a percentage in the
// same update.
func (m *Milestone) ApplyStatusRules(percentageSet bool, now time.Time) {
	switch m.Status {
	case MilestoneCompleted:
		m.CompletionPercentage = 100
		if m.CompletedAt == nil {
			t := now
			m.CompletedAt = &t
		}
	case MilestoneInProgress:
		if !percentageSet && m.CompletionPercentage == 0 {
			m.CompletionPercentage = InProgressDefaultPercentage
		}
		m.CompletedAt = nil
	default:
		m.CompletedAt = nil
	}
}
