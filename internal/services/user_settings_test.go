package services

import (
	"encoding/json"
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

func newSettingsService(t *testing.T) UserSettingsService {
	t.Helper()
	db := testutil.DB(t)
	return NewUserSettingsService(logger.Nop(), repos.NewPreferencesRepo(db, logger.Nop()), repos.NewProfileRepo(db, logger.Nop()))
}

func TestPreferencesDefaultAndOverwrite(t *testing.T) {
	svc := newSettingsService(t)
	ctx := userCtx("user_p1")

	prefs, err := svc.GetPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPreferences("user_p1"), prefs)

	_, err = svc.SavePreferences(ctx, PreferencesInput{
		Interests:       []string{"fintech", " Fintech ", "", "health"},
		ExperienceLevel: "expert",
		Capital:         "seed",
		TargetAudiences: []string{"students"},
	})
	require.NoError(t, err)

	_, err = svc.SavePreferences(ctx, PreferencesInput{Interests: []string{"travel"}})
	require.NoError(t, err)

	prefs, err = svc.GetPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"travel"}, prefs.Interests)
	assert.Equal(t, "beginner", prefs.ExperienceLevel)
	assert.Equal(t, "bootstrap", prefs.Capital)
	assert.Empty(t, prefs.TargetAudiences)
}

func TestProfileCreditsAreReadOnly(t *testing.T) {
	svc := newSettingsService(t)
	ctx := userCtx("user_p2")

	p, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultCredits, p.Credits)

	var in ProfileInput
	require.NoError(t, json.Unmarshal([]byte(`{"display_name":"Ada","website":"https://ada.dev","credits":9999}`), &in))
	p, err = svc.UpdateProfile(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, types.DefaultCredits, p.Credits)

	p, err = svc.UpdateProfile(ctx, ProfileInput{DisplayName: "Ada L."})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", p.DisplayName)
	assert.Equal(t, types.DefaultCredits, p.Credits)

	_, err = svc.UpdateProfile(ctx, ProfileInput{Website: "ftp://nope"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err, 0))
}
