package llm

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ideavault/ideavault-backend/internal/domain"
)

//go:embed fallback_tables.yaml
var fallbackTablesYAML []byte

type categoryRow struct {
	Aliases         []string            `yaml:"aliases"`
	MarketSize      string              `yaml:"market_size"`
	GrowthRate      string              `yaml:"growth_rate"`
	Trends          []string            `yaml:"trends"`
	KeyPlayers      []domain.Competitor `yaml:"key_players"`
	TechnologyStack []string            `yaml:"technology_stack"`
	CoreFeatures    []string            `yaml:"core_features"`
	RevenueStreams  []string            `yaml:"revenue_streams"`
	PricingModel    string              `yaml:"pricing_model"`
	Partnerships    []string            `yaml:"partnerships"`
}

type audienceRow struct {
	Aliases             []string `yaml:"aliases"`
	TargetMarket        string   `yaml:"target_market"`
	Channels            []string `yaml:"channels"`
	CustomerAcquisition string   `yaml:"customer_acquisition"`
	LaunchStrategy      string   `yaml:"launch_strategy"`
}

type difficultyRow struct {
	DevelopmentTimeline string   `yaml:"development_timeline"`
	MVPScope            string   `yaml:"mvp_scope"`
	StartupCosts        string   `yaml:"startup_costs"`
	BreakEvenTimeline   string   `yaml:"break_even_timeline"`
	FundingStrategy     string   `yaml:"funding_strategy"`
	ProjectedRevenue    string   `yaml:"projected_revenue"`
	FeasibilityScore    float64  `yaml:"feasibility_score"`
	Roadmap             []string `yaml:"roadmap"`
}

// FallbackTables are the static lookup tables behind the deterministic
// fallback report. Every table has a "default" row.
type FallbackTables struct {
	Categories   map[string]categoryRow   `yaml:"categories"`
	Audiences    map[string]audienceRow   `yaml:"audiences"`
	Difficulties map[string]difficultyRow `yaml:"difficulties"`
}

func LoadFallbackTables() (*FallbackTables, error) {
	return parseFallbackTables(fallbackTablesYAML)
}

func parseFallbackTables(raw []byte) (*FallbackTables, error) {
	var t FallbackTables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse fallback tables: %w", err)
	}
	if _, ok := t.Categories["default"]; !ok {
		return nil, fmt.Errorf("fallback tables: categories.default missing")
	}
	if _, ok := t.Audiences["default"]; !ok {
		return nil, fmt.Errorf("fallback tables: audiences.default missing")
	}
	if _, ok := t.Difficulties[string(domain.DifficultyMedium)]; !ok {
		return nil, fmt.Errorf("fallback tables: difficulties.medium missing")
	}
	return &t, nil
}

// MustLoadFallbackTables panics when the embedded tables are malformed,
// which can only happen through a bad edit of the YAML file.
func MustLoadFallbackTables() *FallbackTables {
	t, err := LoadFallbackTables()
	if err != nil {
		panic(err)
	}
	return t
}

// lookupKey resolves free text to a table key: exact key, exact alias, a
// word equal to a key or alias, then substring matches of four or more
// characters. Keys are tried in sorted order so results are stable.
func lookupKey(value string, keys []string, aliases func(string) []string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "default"
	}
	for _, k := range keys {
		if k == v {
			return k
		}
	}
	for _, k := range keys {
		for _, a := range aliases(k) {
			if a == v {
				return k
			}
		}
	}
	words := strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '-' || r == '&'
	})
	for _, w := range words {
		for _, k := range keys {
			if w == k {
				return k
			}
			for _, a := range aliases(k) {
				if w == a {
					return k
				}
			}
		}
	}
	for _, k := range keys {
		if k != "default" && len(k) >= 4 && strings.Contains(v, k) {
			return k
		}
		for _, a := range aliases(k) {
			if len(a) >= 4 && strings.Contains(v, a) {
				return k
			}
		}
	}
	return "default"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *FallbackTables) category(name string) categoryRow {
	key := lookupKey(name, sortedKeys(t.Categories), func(k string) []string { return t.Categories[k].Aliases })
	row := t.Categories[key]
	def := t.Categories["default"]
	if row.MarketSize == "" {
		row.MarketSize = def.MarketSize
	}
	if row.GrowthRate == "" {
		row.GrowthRate = def.GrowthRate
	}
	if len(row.Trends) == 0 {
		row.Trends = def.Trends
	}
	if len(row.KeyPlayers) == 0 {
		row.KeyPlayers = def.KeyPlayers
	}
	if len(row.TechnologyStack) == 0 {
		row.TechnologyStack = def.TechnologyStack
	}
	if len(row.CoreFeatures) == 0 {
		row.CoreFeatures = def.CoreFeatures
	}
	if len(row.RevenueStreams) == 0 {
		row.RevenueStreams = def.RevenueStreams
	}
	if row.PricingModel == "" {
		row.PricingModel = def.PricingModel
	}
	if len(row.Partnerships) == 0 {
		row.Partnerships = def.Partnerships
	}
	return row
}

func (t *FallbackTables) audience(name string) audienceRow {
	key := lookupKey(name, sortedKeys(t.Audiences), func(k string) []string { return t.Audiences[k].Aliases })
	row := t.Audiences[key]
	def := t.Audiences["default"]
	if row.TargetMarket == "" {
		row.TargetMarket = def.TargetMarket
	}
	if len(row.Channels) == 0 {
		row.Channels = def.Channels
	}
	if row.CustomerAcquisition == "" {
		row.CustomerAcquisition = def.CustomerAcquisition
	}
	if row.LaunchStrategy == "" {
		row.LaunchStrategy = def.LaunchStrategy
	}
	return row
}

func (t *FallbackTables) difficulty(d domain.Difficulty) difficultyRow {
	if row, ok := t.Difficulties[string(d)]; ok {
		return row
	}
	return t.Difficulties[string(domain.DifficultyMedium)]
}

// CompetitorsFor returns the table competitors for a category.
func (t *FallbackTables) CompetitorsFor(idea domain.Idea) []domain.Competitor {
	fill := templater(idea)
	players := t.category(idea.Category).KeyPlayers
	out := make([]domain.Competitor, len(players))
	for i, p := range players {
		out[i] = domain.Competitor{
			Name:        fill(p.Name),
			Description: fill(p.Description),
			Strengths:   fill(p.Strengths),
			Weaknesses:  fill(p.Weaknesses),
		}
	}
	return out
}

func templater(idea domain.Idea) func(string) string {
	title := orDefault(idea.Title, "this idea")
	category := orDefault(idea.Category, "this market")
	audience := orDefault(idea.TargetAudience, "early adopters")
	description := orDefault(idea.Description, title)
	r := strings.NewReplacer(
		"{title}", title,
		"{category}", category,
		"{audience}", audience,
		"{description}", description,
	)
	return r.Replace
}

func fillAll(fill func(string) string, in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fill(s)
	}
	return out
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" || isPlaceholder(s) {
		return def
	}
	return s
}

// FallbackReport builds the deterministic report for idea from the tables.
// The same idea always yields the same report.
func (t *FallbackTables) FallbackReport(idea domain.Idea) *domain.Report {
	fill := templater(idea)
	cat := t.category(idea.Category)
	aud := t.audience(idea.TargetAudience)
	diff := t.difficulty(domain.ParseDifficulty(string(idea.Difficulty)))

	title := orDefault(idea.Title, "Untitled idea")
	audience := orDefault(idea.TargetAudience, "early adopters")
	category := orDefault(idea.Category, "general")

	marketScore := 7.0
	innovation := 6.5
	feasibility := diff.FeasibilityScore
	overall := roundScore((marketScore + feasibility + innovation) / 3)

	return &domain.Report{
		BusinessConcept: domain.BusinessConcept{
			Title:            title,
			Summary:          fill("{title} is a {category} product for {audience}. {description}"),
			ProblemStatement: fill("{audience} lack a focused, affordable way to handle their {category} needs."),
			Solution:         fill("{title} packages the essential {category} workflow into a simple product built for {audience}."),
			ValueProposition: fill("Save time and reduce friction for {audience} with a purpose-built {category} tool."),
			UniqueAdvantage:  fill("Deep focus on {audience} instead of a one-size-fits-all {category} platform."),
		},
		MarketIntelligence: domain.MarketIntelligence{
			MarketSize:           fill(cat.MarketSize),
			TargetMarket:         fill(aud.TargetMarket),
			GrowthRate:           fill(cat.GrowthRate),
			Trends:               fillAll(fill, cat.Trends),
			KeyPlayers:           t.CompetitorsFor(idea),
			CompetitiveLandscape: fill("The {category} space has broad incumbents and focused startups; few serve {audience} specifically."),
		},
		ProductStrategy: domain.ProductStrategy{
			CoreFeatures:        fillAll(fill, cat.CoreFeatures),
			MVPScope:            fill(diff.MVPScope),
			TechnologyStack:     fillAll(fill, cat.TechnologyStack),
			DevelopmentTimeline: fill(diff.DevelopmentTimeline),
			Roadmap:             fillAll(fill, diff.Roadmap),
		},
		GoToMarket: domain.GoToMarket{
			LaunchStrategy:      fill(aud.LaunchStrategy),
			Channels:            fillAll(fill, aud.Channels),
			PricingModel:        fill(cat.PricingModel),
			CustomerAcquisition: fill(aud.CustomerAcquisition),
			Partnerships:        fillAll(fill, cat.Partnerships),
		},
		FinancialFoundation: domain.FinancialFoundation{
			StartupCosts:      fill(diff.StartupCosts),
			RevenueStreams:    fillAll(fill, cat.RevenueStreams),
			ProjectedRevenue:  fill(diff.ProjectedRevenue),
			BreakEvenTimeline: fill(diff.BreakEvenTimeline),
			FundingStrategy:   fill(diff.FundingStrategy),
		},
		Evaluation: domain.Evaluation{
			OverallScore:     overall,
			MarketScore:      marketScore,
			FeasibilityScore: feasibility,
			InnovationScore:  innovation,
			Strengths: []string{
				fill("Clear focus on {audience}"),
				fill("Proven demand in the {category} market"),
			},
			Risks: []string{
				"Established competitors may copy key features",
				"Customer acquisition costs may exceed early estimates",
			},
			Opportunities: fillAll(fill, cat.Trends),
			Recommendation: fmt.Sprintf("Validate %s with 10-20 %s before building beyond the MVP scope.",
				title, strings.ToLower(audience)),
			NextSteps: []string{
				fill("Interview at least 15 {audience} about their current workflow"),
				"Publish a landing page and measure signup conversion",
				"Build the smallest version of the core workflow",
			},
		},
		Visualization: scaffoldVisualization(title, marketScore, feasibility, innovation),
		MVPPrompt:     FallbackMVPPrompt(domain.Idea{Title: title, Category: category, Description: idea.Description, TargetAudience: audience}),
		Fallback:      true,
	}
}

func roundScore(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

var defaultAxes = domain.VisualizationAxes{X: "Market Potential", Y: "Feasibility", Z: "Innovation"}

func scaffoldVisualization(label string, x, y, z float64) domain.Visualization {
	return domain.Visualization{
		Type:       "3d_scatter",
		Axes:       defaultAxes,
		DataPoints: []domain.DataPoint{{Label: label, X: x, Y: y, Z: z}},
	}
}

// ensureVisualization fills a missing scaffold with zeroed defaults.
func ensureVisualization(r *domain.Report) {
	v := &r.Visualization
	if strings.TrimSpace(v.Type) == "" {
		v.Type = "3d_scatter"
	}
	if strings.TrimSpace(v.Axes.X) == "" {
		v.Axes.X = defaultAxes.X
	}
	if strings.TrimSpace(v.Axes.Y) == "" {
		v.Axes.Y = defaultAxes.Y
	}
	if strings.TrimSpace(v.Axes.Z) == "" {
		v.Axes.Z = defaultAxes.Z
	}
	if len(v.DataPoints) == 0 {
		label := orDefault(r.BusinessConcept.Title, "Idea")
		v.DataPoints = []domain.DataPoint{{Label: label}}
	}
}

const mvpPromptTemplate = `Build an MVP for "{title}", a {category} product.

Product description:
{description}

Target users: {audience}

Requirements:
1. Implement the single most important user workflow end to end.
2. Include sign-up and login.
3. Store user data in a relational database.
4. Provide a clean, responsive web interface.
5. Add basic analytics to measure activation and retention.

Deliver a working application with setup instructions and a short list of next features.`

// FallbackMVPPrompt interpolates the fixed MVP template.
func FallbackMVPPrompt(idea domain.Idea) string {
	return templater(idea)(mvpPromptTemplate)
}
