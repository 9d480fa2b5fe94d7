package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is the six-section business report for one idea. After synthesis
// every leaf string is non-empty and placeholder free.
type Report struct {
	BusinessConcept     BusinessConcept     `json:"business_concept"`
	MarketIntelligence  MarketIntelligence  `json:"market_intelligence"`
	ProductStrategy     ProductStrategy     `json:"product_strategy"`
	GoToMarket          GoToMarket          `json:"go_to_market"`
	FinancialFoundation FinancialFoundation `json:"financial_foundation"`
	Evaluation          Evaluation          `json:"evaluation"`
	Visualization       Visualization       `json:"visualization"`
	MVPPrompt           string              `json:"mvp_prompt"`

	// Fallback is set when the report was built from the static tables.
	Fallback bool `json:"fallback,omitempty"`
}

type BusinessConcept struct {
	Title            string `json:"title"`
	Summary          string `json:"summary"`
	ProblemStatement string `json:"problem_statement"`
	Solution         string `json:"solution"`
	ValueProposition string `json:"value_proposition"`
	UniqueAdvantage  string `json:"unique_advantage"`
}

type Competitor struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Strengths   string `json:"strengths" yaml:"strengths"`
	Weaknesses  string `json:"weaknesses" yaml:"weaknesses"`
}

type MarketIntelligence struct {
	MarketSize           string       `json:"market_size"`
	TargetMarket         string       `json:"target_market"`
	GrowthRate           string       `json:"growth_rate"`
	Trends               []string     `json:"trends"`
	KeyPlayers           []Competitor `json:"key_players"`
	CompetitiveLandscape string       `json:"competitive_landscape"`
}

type ProductStrategy struct {
	CoreFeatures        []string `json:"core_features"`
	MVPScope            string   `json:"mvp_scope"`
	TechnologyStack     []string `json:"technology_stack"`
	DevelopmentTimeline string   `json:"development_timeline"`
	Roadmap             []string `json:"roadmap"`
}

type GoToMarket struct {
	LaunchStrategy      string   `json:"launch_strategy"`
	Channels            []string `json:"channels"`
	PricingModel        string   `json:"pricing_model"`
	CustomerAcquisition string   `json:"customer_acquisition"`
	Partnerships        []string `json:"partnerships"`
}

type FinancialFoundation struct {
	StartupCosts      string   `json:"startup_costs"`
	RevenueStreams    []string `json:"revenue_streams"`
	ProjectedRevenue  string   `json:"projected_revenue"`
	BreakEvenTimeline string   `json:"break_even_timeline"`
	FundingStrategy   string   `json:"funding_strategy"`
}

type Evaluation struct {
	OverallScore     float64  `json:"overall_score"`
	MarketScore      float64  `json:"market_score"`
	FeasibilityScore float64  `json:"feasibility_score"`
	InnovationScore  float64  `json:"innovation_score"`
	Strengths        []string `json:"strengths"`
	Risks            []string `json:"risks"`
	Opportunities    []string `json:"opportunities"`
	Recommendation   string   `json:"recommendation"`
	NextSteps        []string `json:"next_steps"`
}

// Visualization is the 3D scaffold consumed by the report viewer.
type Visualization struct {
	Type       string            `json:"type"`
	Axes       VisualizationAxes `json:"axes"`
	DataPoints []DataPoint       `json:"data_points"`
}

type VisualizationAxes struct {
	X string `json:"x"`
	Y string `json:"y"`
	Z string `json:"z"`
}

type DataPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// StoredReport is a generated report persisted in the user-data store.
type StoredReport struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string         `gorm:"column:user_id;not null;index" json:"user_id"`
	IdeaID           string         `gorm:"column:idea_id;index" json:"idea_id"`
	IdeaTitle        string         `gorm:"column:idea_title" json:"idea_title"`
	Checksum         string         `gorm:"not null;index" json:"checksum"`
	Body             datatypes.JSON `gorm:"column:report;type:jsonb;not null" json:"report"`
	GenerationTimeMS int64          `gorm:"column:generation_time_ms" json:"generation_time_ms"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (StoredReport) TableName() string { return "reports" }

func (r *StoredReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// SharedReport grants public read access to a stored report by token.
type SharedReport struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Token       string     `gorm:"not null;uniqueIndex" json:"token"`
	ReportID    uuid.UUID  `gorm:"type:uuid;column:report_id;not null;index" json:"report_id"`
	OwnerUserID string     `gorm:"column:owner_user_id;not null;index" json:"-"`
	ViewCount   int        `gorm:"column:view_count;not null" json:"view_count"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (SharedReport) TableName() string { return "shared_reports" }

func (s *SharedReport) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Token == "" {
		s.Token = uuid.NewString()
	}
	return nil
}

func (s *SharedReport) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}
