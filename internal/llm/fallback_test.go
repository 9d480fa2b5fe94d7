package llm

import (
	"reflect"
	"testing"

	"github.com/ideavault/ideavault-backend/internal/domain"
)

func sampleIdea() domain.Idea {
	return domain.Idea{
		Title:          "Study Sprint",
		Description:    "Timed group study rooms with accountability.",
		Category:       "Education",
		Difficulty:     domain.DifficultyEasy,
		TargetAudience: "college students",
	}
}

func assertNoBadLeaves(t *testing.T, r *domain.Report) {
	t.Helper()
	for _, s := range LeafStrings(r) {
		if badLeaf(s) {
			t.Fatalf("report contains bad leaf %q", s)
		}
	}
}

func TestFallbackReportComplete(t *testing.T) {
	tables := MustLoadFallbackTables()
	ideas := []domain.Idea{
		sampleIdea(),
		{Title: "X", Category: "unknown-space", Difficulty: domain.DifficultyHard},
		{},
		{Title: "TBD", Description: "N/A", Category: "undefined", TargetAudience: "n/a"},
	}
	for _, idea := range ideas {
		r := tables.FallbackReport(idea)
		if !r.Fallback {
			t.Fatalf("fallback flag not set")
		}
		assertNoBadLeaves(t, r)
		if len(r.MarketIntelligence.KeyPlayers) == 0 {
			t.Fatalf("fallback report has no key players for %+v", idea)
		}
		if len(r.Visualization.DataPoints) == 0 {
			t.Fatalf("fallback report has no visualization points")
		}
		e := r.Evaluation
		for _, s := range []float64{e.OverallScore, e.MarketScore, e.FeasibilityScore, e.InnovationScore} {
			if s < 0 || s > 10 {
				t.Fatalf("score %v out of range", s)
			}
		}
	}
}

func TestFallbackReportDeterministic(t *testing.T) {
	tables := MustLoadFallbackTables()
	a := tables.FallbackReport(sampleIdea())
	b := tables.FallbackReport(sampleIdea())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("fallback report is not deterministic")
	}
}

func TestSanitizeReportReplacesPlaceholders(t *testing.T) {
	ref := MustLoadFallbackTables().FallbackReport(sampleIdea())
	r := &domain.Report{
		BusinessConcept: domain.BusinessConcept{Title: "Study Sprint", Summary: "N/A"},
		MarketIntelligence: domain.MarketIntelligence{
			Trends:     []string{"remote learning", "TBD", ""},
			KeyPlayers: []domain.Competitor{{Name: "Focusmate", Description: "undefined"}},
		},
		Evaluation: domain.Evaluation{OverallScore: 14, MarketScore: -2},
		MVPPrompt:  "Build it",
	}
	SanitizeReport(r, ref)

	assertNoBadLeaves(t, r)
	if r.BusinessConcept.Title != "Study Sprint" {
		t.Fatalf("good value overwritten: %q", r.BusinessConcept.Title)
	}
	if r.BusinessConcept.Summary != ref.BusinessConcept.Summary {
		t.Fatalf("summary not taken from reference: %q", r.BusinessConcept.Summary)
	}
	if len(r.MarketIntelligence.Trends) != 1 || r.MarketIntelligence.Trends[0] != "remote learning" {
		t.Fatalf("unexpected trends: %v", r.MarketIntelligence.Trends)
	}
	if r.MarketIntelligence.KeyPlayers[0].Name != "Focusmate" {
		t.Fatalf("competitor name overwritten")
	}
	if r.MarketIntelligence.KeyPlayers[0].Description != ref.MarketIntelligence.KeyPlayers[0].Description {
		t.Fatalf("competitor description not taken from reference")
	}
	if len(r.ProductStrategy.CoreFeatures) != len(ref.ProductStrategy.CoreFeatures) {
		t.Fatalf("empty list not copied from reference")
	}
	if r.Evaluation.OverallScore != 10 || r.Evaluation.MarketScore != 0 {
		t.Fatalf("scores not clamped: %+v", r.Evaluation)
	}
}

func TestSanitizeReportKeepsSlashJoinedTerms(t *testing.T) {
	ref := MustLoadFallbackTables().FallbackReport(sampleIdea())
	r := &domain.Report{
		BusinessConcept: domain.BusinessConcept{Title: "Study Sprint", Summary: "A Design/Architecture review tool"},
		ProductStrategy: domain.ProductStrategy{
			TechnologyStack: []string{"Kotlin/Android", "Go", "Education/Analytics", "Pricing TBD", "n/a"},
		},
	}
	SanitizeReport(r, ref)

	if r.BusinessConcept.Summary != "A Design/Architecture review tool" {
		t.Fatalf("summary replaced: %q", r.BusinessConcept.Summary)
	}
	want := []string{"Kotlin/Android", "Go", "Education/Analytics"}
	if !reflect.DeepEqual(r.ProductStrategy.TechnologyStack, want) {
		t.Fatalf("stack=%v want %v", r.ProductStrategy.TechnologyStack, want)
	}
}

func TestIsPlaceholder(t *testing.T) {
	cases := map[string]bool{
		"N/A":                 true,
		" n/a ":               true,
		"Tbd":                 true,
		"undefined":           true,
		"Launch date TBD":     true,
		"value is undefined.": true,
		"Kotlin/Android":      false,
		"Design/Architecture": false,
		"TBDX platform":       false,
		"undefinedness":       false,
		"Go":                  false,
	}
	for in, want := range cases {
		if got := isPlaceholder(in); got != want {
			t.Fatalf("isPlaceholder(%q)=%v want %v", in, got, want)
		}
	}
}

func TestSanitizeReportWithoutReference(t *testing.T) {
	r := &domain.Report{}
	SanitizeReport(r, nil)
	assertNoBadLeaves(t, r)
	if r.BusinessConcept.Title != lastResortText {
		t.Fatalf("title=%q", r.BusinessConcept.Title)
	}
}

func TestLookupCategoryAlias(t *testing.T) {
	tables := MustLoadFallbackTables()
	if got := tables.category("Health & Wellness"); got.MarketSize == tables.category("").MarketSize {
		t.Fatalf("expected healthcare row for alias, got default")
	}
}
