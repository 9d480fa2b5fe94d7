package services

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideavault/ideavault-backend/internal/data/repos"
	"github.com/ideavault/ideavault-backend/internal/data/repos/testutil"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

func TestSystemLogRecordAndList(t *testing.T) {
	svc := NewSystemLogService(logger.Nop(), repos.NewSystemLogRepo(testutil.DB(t), logger.Nop()))
	ctx := userCtx("user_l1")

	row, err := svc.Record(ctx, CreateSystemLogRequest{Message: "page loaded"})
	require.NoError(t, err)
	assert.Equal(t, types.LogLevelInfo, row.Level)

	_, err = svc.Record(ctx, CreateSystemLogRequest{
		Level:   "ERROR",
		Message: strings.Repeat("x", 5000),
		Source:  "report-viewer",
		Context: json.RawMessage(`{"step":3}`),
	})
	require.NoError(t, err)

	errs, err := svc.ListRecent(ctx, "error", 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Len(t, errs[0].Message, 4000)
	assert.JSONEq(t, `{"step":3}`, string(errs[0].Context))

	all, err := svc.ListRecent(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Record(ctx, CreateSystemLogRequest{Level: "fatal", Message: "x"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err, 0))
	_, err = svc.Record(ctx, CreateSystemLogRequest{Message: "  "})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err, 0))
	_, err = svc.ListRecent(ctx, "loud", 0)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err, 0))
}
