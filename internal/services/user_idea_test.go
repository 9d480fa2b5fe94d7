package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideavault/ideavault-backend/internal/data/repos"
	"github.com/ideavault/ideavault-backend/internal/data/repos/testutil"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

func newUserIdeaService(t *testing.T) (UserIdeaService, repos.UserIdeaRepo) {
	t.Helper()
	repo := repos.NewUserIdeaRepo(testutil.DB(t), logger.Nop())
	return NewUserIdeaService(logger.Nop(), repo), repo
}

func TestSaveIdea(t *testing.T) {
	svc, _ := newUserIdeaService(t)
	ctx := userCtx("user_s1")

	row, err := svc.Save(ctx, &types.Idea{ID: "42", Title: "Pet Sitter Finder", Difficulty: "hard"})
	require.NoError(t, err)
	assert.Equal(t, string(types.IdeaStatusSaved), row.Status)
	assert.Equal(t, "hard", row.Difficulty)

	_, err = svc.Save(ctx, &types.Idea{ID: "42", Title: "Pet Sitter Finder"})
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err, 0))

	_, err = svc.Save(ctx, &types.Idea{ID: "43"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err, 0))

	noID, err := svc.Save(ctx, &types.Idea{Title: "No Id Yet"})
	require.NoError(t, err)
	assert.NotEmpty(t, noID.IdeaID)
}

func TestSaveIdeaPromotesGenerated(t *testing.T) {
	svc, repo := newUserIdeaService(t)
	ctx := userCtx("user_s2")

	generated := types.Idea{ID: "77", Title: "Meal Planner"}
	_, err := repo.CreateIgnoreDuplicates(context.Background(), nil, []*types.UserIdea{
		types.NewUserIdea("user_s2", generated, types.IdeaStatusGenerated),
	})
	require.NoError(t, err)

	row, err := svc.Save(ctx, &generated)
	require.NoError(t, err)
	assert.Equal(t, string(types.IdeaStatusSaved), row.Status)

	saved, err := svc.List(ctx, "saved", 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "77", saved[0].IdeaID)
}

func TestUpdateAndDeleteIdea(t *testing.T) {
	svc, _ := newUserIdeaService(t)
	ctx := userCtx("user_s3")

	_, err := svc.Save(ctx, &types.Idea{ID: "9", Title: "Tool Library"})
	require.NoError(t, err)

	row, err := svc.Update(ctx, "9", UpdateUserIdeaRequest{Status: strPtr("in_progress"), Notes: strPtr("call the council")})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", row.Status)
	assert.Equal(t, "call the council", row.Notes)

	_, err = svc.Update(ctx, "9", UpdateUserIdeaRequest{Status: strPtr("abandoned")})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err, 0))

	_, err = svc.Update(ctx, "missing", UpdateUserIdeaRequest{Notes: strPtr("x")})
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err, 0))

	_, err = svc.Get(userCtx("other"), "9")
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err, 0))

	require.NoError(t, svc.Delete(ctx, "9"))
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(svc.Delete(ctx, "9"), 0))

	_, err = svc.List(ctx, "bogus", 0)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err, 0))
}

func TestUserIdeaServiceToleratesMissingTable(t *testing.T) {
	repo := repos.NewUserIdeaRepo(testutil.EmptyDB(t), logger.Nop())
	svc := NewUserIdeaService(logger.Nop(), repo)
	ctx := userCtx("user_s4")

	rows, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	row, err := svc.Save(ctx, &types.Idea{ID: "1", Title: "Offline Idea"})
	require.NoError(t, err)
	assert.Equal(t, "Offline Idea", row.Title)
}
