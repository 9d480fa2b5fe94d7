package ideastore

import (
	"context"
	"testing"

	"github.com/ideavault/ideavault-backend/internal/data/repos/testutil"
	types "github.com/ideavault/ideavault-backend/internal/domain"
)

func TestProductIdeaRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProductIdeaRepo(db, testutil.Logger(t))
	ctx := context.Background()

	rows := []*types.ProductIdea{
		{ID: 1, Name: "Pet Pal", Description: "Dog walking marketplace", Category: "Pets", Upvotes: 50, Tags: []string{"pets"}},
		{ID: 2, Name: "Study Sprint", Description: "Group study timers", Category: "Education", Upvotes: 300},
		{ID: 3, Name: "Quiz Quest", Description: "Gamified STUDY quizzes", Category: "education", Upvotes: 120},
		{ID: 4, Name: "100% Margin", Description: "Pricing calculator", Category: "Finance", Upvotes: 10},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := repo.SearchKeyword(ctx, nil, "study", 10)
	if err != nil {
		t.Fatalf("SearchKeyword: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("SearchKeyword: unexpected result: %+v", got)
	}

	got, err = repo.SearchKeyword(ctx, nil, "100%", 10)
	if err != nil {
		t.Fatalf("SearchKeyword escaped: %v", err)
	}
	if len(got) != 1 || got[0].ID != 4 {
		t.Fatalf("SearchKeyword escaped: unexpected result: %+v", got)
	}

	got, err = repo.ListByCategory(ctx, nil, "EDUCATION", 1)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("ListByCategory: unexpected result: %+v", got)
	}

	got, err = repo.Sample(ctx, nil, 3)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Sample: expected 3 rows, got %d", len(got))
	}

	idea := rows[0].Idea()
	if idea.ID != "1" || idea.Title != "Pet Pal" || idea.Source != types.SourceProductHunt {
		t.Fatalf("Idea: unexpected conversion: %+v", idea)
	}
}

func TestMatchByEmbeddingRejectsUnknownProc(t *testing.T) {
	repo := NewProductIdeaRepo(testutil.DB(t), testutil.Logger(t))
	if _, err := repo.MatchByEmbedding(context.Background(), nil, "drop_table", []float32{1}, 0.5, 5); err == nil {
		t.Fatalf("expected error for unknown procedure")
	}
}

func TestVectorLiteral(t *testing.T) {
	if got := VectorLiteral([]float32{0.5, -1, 2.25}); got != "[0.5,-1,2.25]" {
		t.Fatalf("VectorLiteral=%q", got)
	}
}
