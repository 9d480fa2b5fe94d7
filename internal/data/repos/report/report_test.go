package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ideavault/ideavault-backend/internal/data/repos/testutil"
	types "github.com/ideavault/ideavault-backend/internal/domain"
)

func TestReportRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewReportRepo(db, testutil.Logger(t))
	ctx := context.Background()

	older, err := repo.Create(ctx, nil, &types.StoredReport{
		UserID:    "user_1",
		IdeaID:    "11",
		Checksum:  "aaaa",
		Body:      datatypes.JSON([]byte(`{"mvp_prompt":"old"}`)),
		CreatedAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	newer, err := repo.Create(ctx, nil, &types.StoredReport{
		UserID:   "user_1",
		IdeaID:   "11",
		Checksum: "bbbb",
		Body:     datatypes.JSON([]byte(`{"mvp_prompt":"new"}`)),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	latest, err := repo.LatestForIdea(ctx, nil, "user_1", "11")
	if err != nil || latest == nil || latest.ID != newer.ID {
		t.Fatalf("LatestForIdea: %+v err=%v", latest, err)
	}

	got, err := repo.GetForUser(ctx, nil, "user_1", older.ID)
	if err != nil || got == nil || got.Checksum != "aaaa" {
		t.Fatalf("GetForUser: %+v err=%v", got, err)
	}
	other, err := repo.GetForUser(ctx, nil, "user_2", older.ID)
	if err != nil || other != nil {
		t.Fatalf("GetForUser other user: %+v err=%v", other, err)
	}

	list, err := repo.ListByUser(ctx, nil, "user_1", 1)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByUser: %+v err=%v", list, err)
	}
}

func TestSharedReportRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSharedReportRepo(db, testutil.Logger(t))
	ctx := context.Background()
	reportID := uuid.New()
	now := time.Now().UTC()

	past := now.Add(-time.Hour)
	if _, err := repo.Create(ctx, nil, &types.SharedReport{ReportID: reportID, OwnerUserID: "user_1", ExpiresAt: &past}); err != nil {
		t.Fatalf("Create expired: %v", err)
	}
	active, err := repo.FindActive(ctx, nil, "user_1", reportID, now)
	if err != nil || active != nil {
		t.Fatalf("FindActive with only expired share: %+v err=%v", active, err)
	}

	share, err := repo.Create(ctx, nil, &types.SharedReport{ReportID: reportID, OwnerUserID: "user_1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if share.Token == "" {
		t.Fatalf("Create: token not generated")
	}

	active, err = repo.FindActive(ctx, nil, "user_1", reportID, now)
	if err != nil || active == nil || active.ID != share.ID {
		t.Fatalf("FindActive: %+v err=%v", active, err)
	}

	if err := repo.IncrementViews(ctx, nil, share.ID); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	got, err := repo.GetByToken(ctx, nil, share.Token)
	if err != nil || got == nil || got.ViewCount != 1 {
		t.Fatalf("GetByToken: %+v err=%v", got, err)
	}

	missing, err := repo.GetByToken(ctx, nil, "nope")
	if err != nil || missing != nil {
		t.Fatalf("GetByToken unknown: %+v err=%v", missing, err)
	}
}

func TestReportRepoMissingTable(t *testing.T) {
	repo := NewReportRepo(testutil.EmptyDB(t), testutil.Logger(t))
	ctx := context.Background()
	row := &types.StoredReport{UserID: "u", Checksum: "c", Body: datatypes.JSON([]byte(`{}`))}
	got, err := repo.Create(ctx, nil, row)
	if err != nil || got != row {
		t.Fatalf("Create: %+v err=%v", got, err)
	}
	latest, err := repo.LatestForIdea(ctx, nil, "u", "1")
	if err != nil || latest != nil {
		t.Fatalf("LatestForIdea: %+v err=%v", latest, err)
	}
}
