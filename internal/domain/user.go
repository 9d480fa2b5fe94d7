package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserPreferences is keyed by the Clerk user id and always written whole.
type UserPreferences struct {
	UserID          string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	Interests       []string  `gorm:"serializer:json;type:jsonb" json:"interests"`
	ExperienceLevel string    `gorm:"column:experience_level" json:"experience_level"`
	TimeCommitment  string    `gorm:"column:time_commitment" json:"time_commitment"`
	Capital         string    `json:"capital"`
	PreferredAIRole string    `gorm:"column:preferred_ai_role" json:"preferred_ai_role"`
	TargetAudiences []string  `gorm:"serializer:json;type:jsonb;column:target_audiences" json:"target_audiences"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (UserPreferences) TableName() string { return "user_preferences" }

func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:          userID,
		Interests:       []string{},
		ExperienceLevel: "beginner",
		TimeCommitment:  "part_time",
		Capital:         "bootstrap",
		PreferredAIRole: "co_founder",
		TargetAudiences: []string{},
	}
}

const DefaultCredits = 10

type UserProfile struct {
	UserID      string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Bio         string    `gorm:"type:text" json:"bio"`
	Company     string    `json:"company"`
	Website     string    `json:"website"`
	Credits     int       `gorm:"not null" json:"credits"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

func DefaultProfile(userID string) *UserProfile {
	return &UserProfile{UserID: userID, Credits: DefaultCredits}
}

type SystemLogLevel string

const (
	LogLevelDebug SystemLogLevel = "debug"
	LogLevelInfo  SystemLogLevel = "info"
	LogLevelWarn  SystemLogLevel = "warn"
	LogLevelError SystemLogLevel = "error"
)

func (l SystemLogLevel) Valid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

// SystemLog is a client-reported or server-side diagnostic entry.
type SystemLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;index" json:"user_id,omitempty"`
	Level     SystemLogLevel `gorm:"not null;index" json:"level"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Source    string         `json:"source,omitempty"`
	Context   datatypes.JSON `gorm:"type:jsonb" json:"context,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (SystemLog) TableName() string { return "system_logs" }

func (l *SystemLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// UserDataModels lists every table owned by the user-data store.
func UserDataModels() []any {
	return []any{
		&UserIdea{},
		&StoredReport{},
		&SharedReport{},
		&Milestone{},
		&UserPreferences{},
		&UserProfile{},
		&SystemLog{},
	}
}
