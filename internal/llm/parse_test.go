package llm

import (
	"testing"

	"github.com/ideavault/ideavault-backend/internal/domain"
)

func TestParseIdeasJSONFencedArray(t *testing.T) {
	text := "Here you go:\n```json\n[{\"title\":\"Pet Pal\",\"description\":\"Dog walking\",\"difficulty\":\"easy\",\"tags\":[\"pets\",\"local\"]}," +
		"{\"name\":\"Meal Map\",\"summary\":\"Plan meals\",\"target_audience\":\"parents\",\"tags\":\"food, planning\"}]\n```"
	ideas, err := parseIdeasJSON(text)
	if err != nil {
		t.Fatalf("parseIdeasJSON: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("got %d ideas", len(ideas))
	}
	if ideas[0].Title != "Pet Pal" || ideas[0].Difficulty != domain.DifficultyEasy || len(ideas[0].Tags) != 2 {
		t.Fatalf("unexpected first idea: %+v", ideas[0])
	}
	if ideas[1].Title != "Meal Map" || ideas[1].Description != "Plan meals" || ideas[1].TargetAudience != "parents" {
		t.Fatalf("unexpected second idea: %+v", ideas[1])
	}
	if ideas[1].Difficulty != domain.DifficultyMedium {
		t.Fatalf("missing difficulty should default to medium, got %q", ideas[1].Difficulty)
	}
	if len(ideas[1].Tags) != 2 || ideas[1].Tags[1] != "planning" {
		t.Fatalf("unexpected tags: %v", ideas[1].Tags)
	}
}

func TestParseIdeasJSONWrappedObject(t *testing.T) {
	ideas, err := parseIdeasJSON(`{"ideas":[{"title":"A"},{"title":""}]}`)
	if err != nil {
		t.Fatalf("parseIdeasJSON: %v", err)
	}
	if len(ideas) != 1 || ideas[0].Title != "A" {
		t.Fatalf("unexpected ideas: %+v", ideas)
	}
}

func TestParseIdeasJSONRejectsProse(t *testing.T) {
	if _, err := parseIdeasJSON("no json here"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseIdeasLines(t *testing.T) {
	text := `Idea 1: Budget Buddy
Description: Tracks shared expenses
**Category:** finance
Difficulty: hard
Target Audience: students
Tags: money, roommates

2. Title: Plant Doctor
Description: Diagnoses sick plants from photos`
	ideas := parseIdeasLines(text)
	if len(ideas) != 2 {
		t.Fatalf("got %d ideas: %+v", len(ideas), ideas)
	}
	first := ideas[0]
	if first.Title != "Budget Buddy" || first.Category != "finance" || first.Difficulty != domain.DifficultyHard {
		t.Fatalf("unexpected first idea: %+v", first)
	}
	if first.TargetAudience != "students" || len(first.Tags) != 2 {
		t.Fatalf("unexpected first idea fields: %+v", first)
	}
	if ideas[1].Title != "Plant Doctor" || ideas[1].Difficulty != domain.DifficultyMedium {
		t.Fatalf("unexpected second idea: %+v", ideas[1])
	}
}

func TestParseCompetitors(t *testing.T) {
	got, err := parseCompetitors(`{"competitors":[{"name":"Acme","strengths":["fast","cheap"]}]}`)
	if err != nil {
		t.Fatalf("parseCompetitors: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Acme" || got[0].Strengths != "fast; cheap" {
		t.Fatalf("unexpected competitors: %+v", got)
	}
}

func TestParseReportInvalid(t *testing.T) {
	if _, err := parseReport(`{"business_concept": [}`); err == nil {
		t.Fatalf("expected decode error")
	}
}
