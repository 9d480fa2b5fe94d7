package useridea

import (
	"context"
	"testing"

	"github.com/ideavault/ideavault-backend/internal/data/repos/testutil"
	types "github.com/ideavault/ideavault-backend/internal/domain"
)

func TestUserIdeaRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserIdeaRepo(db, testutil.Logger(t))
	ctx := context.Background()

	idea := types.Idea{ID: "4242", Title: "Pet Pal", Difficulty: types.DifficultyEasy, Tags: []string{"pets"}}
	rows := []*types.UserIdea{
		types.NewUserIdea("user_1", idea, types.IdeaStatusGenerated),
		types.NewUserIdea("user_1", types.Idea{ID: "7", Title: "Other"}, types.IdeaStatusGenerated),
	}
	if _, err := repo.CreateIgnoreDuplicates(ctx, nil, rows); err != nil {
		t.Fatalf("CreateIgnoreDuplicates: %v", err)
	}
	dup := []*types.UserIdea{types.NewUserIdea("user_1", idea, types.IdeaStatusGenerated)}
	if _, err := repo.CreateIgnoreDuplicates(ctx, nil, dup); err != nil {
		t.Fatalf("CreateIgnoreDuplicates duplicate: %v", err)
	}

	all, err := repo.ListByUser(ctx, nil, "user_1", "", 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListByUser: expected 2 rows, got %d", len(all))
	}

	saved := types.NewUserIdea("user_1", idea, types.IdeaStatusSaved)
	created, err := repo.Save(ctx, nil, saved)
	if err != nil || !created {
		t.Fatalf("Save: created=%v err=%v", created, err)
	}
	created, err = repo.Save(ctx, nil, types.NewUserIdea("user_1", idea, types.IdeaStatusSaved))
	if err != nil || created {
		t.Fatalf("Save again: created=%v err=%v", created, err)
	}

	savedOnly, err := repo.ListByUser(ctx, nil, "user_1", string(types.IdeaStatusSaved), 10)
	if err != nil || len(savedOnly) != 1 || savedOnly[0].IdeaID != "4242" {
		t.Fatalf("ListByUser saved: %+v err=%v", savedOnly, err)
	}

	updated, err := repo.UpdateFields(ctx, nil, "user_1", "4242", map[string]interface{}{"notes": "call vets"})
	if err != nil || updated == nil || updated.Notes != "call vets" {
		t.Fatalf("UpdateFields: %+v err=%v", updated, err)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "pets" {
		t.Fatalf("UpdateFields: tags lost: %v", updated.Tags)
	}

	missing, err := repo.UpdateFields(ctx, nil, "user_2", "4242", map[string]interface{}{"notes": "x"})
	if err != nil || missing != nil {
		t.Fatalf("UpdateFields other user: %+v err=%v", missing, err)
	}

	deleted, err := repo.Delete(ctx, nil, "user_1", "4242")
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
	got, err := repo.GetByIdeaID(ctx, nil, "user_1", "4242")
	if err != nil || got != nil {
		t.Fatalf("GetByIdeaID after delete: %+v err=%v", got, err)
	}
}

func TestUserIdeaRepoMissingTable(t *testing.T) {
	repo := NewUserIdeaRepo(testutil.EmptyDB(t), testutil.Logger(t))
	ctx := context.Background()

	list, err := repo.ListByUser(ctx, nil, "user_1", "", 0)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListByUser: %+v err=%v", list, err)
	}
	rows := []*types.UserIdea{types.NewUserIdea("user_1", types.Idea{ID: "1", Title: "A"}, types.IdeaStatusGenerated)}
	out, err := repo.CreateIgnoreDuplicates(ctx, nil, rows)
	if err != nil || len(out) != 1 {
		t.Fatalf("CreateIgnoreDuplicates: %+v err=%v", out, err)
	}
}
