package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ideavault/ideavault-backend/internal/cache"
	"github.com/ideavault/ideavault-backend/internal/config"
	"github.com/ideavault/ideavault-backend/internal/data/repos"
	"github.com/ideavault/ideavault-backend/internal/data/repos/testutil"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	httpH "github.com/ideavault/ideavault-backend/internal/http/handlers"
	httpMW "github.com/ideavault/ideavault-backend/internal/http/middleware"
	"github.com/ideavault/ideavault-backend/internal/llm"
	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/services"
)

const testSecret = "router-test-secret"

type emptySearcher struct{}

func (emptySearcher) Search(context.Context, string, int, float64) []types.Idea { return nil }
func (emptySearcher) ByCategory(context.Context, string, int) []types.Idea      { return nil }
func (emptySearcher) RandomSample(context.Context, int) []types.Idea            { return nil }

type emptyIdeaSynth struct{}

func (emptyIdeaSynth) SynthesizeIdeas(context.Context, llm.IdeaSynthesisRequest) []types.Idea {
	return nil
}

type echoReportSynth struct{}

func (echoReportSynth) SynthesizeReport(_ context.Context, idea types.Idea) (*types.Report, error) {
	r := &types.Report{MVPPrompt: "Build " + idea.Title}
	r.BusinessConcept.Title = idea.Title
	return r, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	db := testutil.DB(t)

	ideaRepo := repos.NewUserIdeaRepo(db, log)
	reportRepo := repos.NewReportRepo(db, log)

	generation := services.NewIdeaGenerationService(log, emptySearcher{}, emptyIdeaSynth{}, ideaRepo, "")
	ideas := services.NewUserIdeaService(log, ideaRepo)
	reports := services.NewReportService(log, cache.NewMemoryStore(), echoReportSynth{}, ideaRepo, reportRepo,
		services.ReportServiceConfig{ChecksumMode: services.ChecksumContent})
	shares := services.NewShareService(log, reportRepo, repos.NewSharedReportRepo(db, log), "https://ideavault.test")
	milestones := services.NewMilestoneService(log, repos.NewMilestoneRepo(db, log))
	settings := services.NewUserSettingsService(log, repos.NewPreferencesRepo(db, log), repos.NewProfileRepo(db, log))
	systemLogs := services.NewSystemLogService(log, repos.NewSystemLogRepo(db, log))

	verifier := services.NewClerkVerifier(log, services.ClerkVerifierConfig{HMACSecret: testSecret})
	snapshot := func() config.Result {
		return config.Validate(func(string) (string, bool) { return "", false }, config.SideServer)
	}

	return NewRouter(RouterConfig{
		Log:              log,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, verifier),
		HealthHandler:    httpH.NewHealthHandler(),
		ConfigHandler:    httpH.NewConfigHandler(snapshot),
		IdeaHandler:      httpH.NewIdeaHandler(log, generation, ideas),
		ReportHandler:    httpH.NewReportHandler(log, reports, shares),
		MilestoneHandler: httpH.NewMilestoneHandler(log, milestones),
		UserHandler:      httpH.NewUserHandler(log, settings),
		SystemLogHandler: httpH.NewSystemLogHandler(log, systemLogs),
	})
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := do(t, r, http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec, body := do(t, r, http.MethodGet, "/api/config/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("config status: want=200 got=%d", rec.Code)
	}
	if body["valid"] != false {
		t.Fatalf("empty environment should be invalid: %v", body)
	}
	features, _ := body["features"].(map[string]any)
	if features["ai_generation"] != false {
		t.Fatalf("features: %v", features)
	}

	rec, body = do(t, r, http.MethodGet, "/api/share-report/unknown", "", nil)
	if rec.Code != http.StatusNotFound || body["error"] == nil {
		t.Fatalf("unknown share: status=%d body=%v", rec.Code, body)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/api/ideas", "/api/milestones", "/api/preferences", "/api/profile", "/api/system-logs"} {
		rec, body := do(t, r, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized || body["error"] != "Unauthorized" {
			t.Fatalf("%s: status=%d body=%v", path, rec.Code, body)
		}
	}
	rec, _ := do(t, r, http.MethodPost, "/api/generate-idea", "not-a-token", map[string]any{"type": "freeform", "prompt": "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: want=401 got=%d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t)
	rec, body := do(t, r, http.MethodPut, "/api/generate-idea", tokenFor(t, "u"), nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want=405 got=%d", rec.Code)
	}
	if body["error"] != "Method not allowed" {
		t.Fatalf("body: %v", body)
	}
}

func TestGenerateIdeaResponses(t *testing.T) {
	r := newTestRouter(t)
	tok := tokenFor(t, "user_gen")

	rec, body := do(t, r, http.MethodPost, "/api/generate-idea", tok, map[string]any{
		"type":   "freeform",
		"prompt": "fitness app for seniors",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("freeform: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if _, wrapped := body["ideas"]; wrapped {
		t.Fatalf("single idea should not be wrapped: %v", body)
	}
	if title, _ := body["title"].(string); title == "" {
		t.Fatalf("expected an idea object: %v", body)
	}

	rec, body = do(t, r, http.MethodPost, "/api/generate-idea", tok, map[string]any{
		"type":     "structured",
		"data":     map[string]any{"category": "Technology", "difficulty": "easy", "targetAudience": "Developers"},
		"multiple": true,
		"count":    3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("structured: want=200 got=%d", rec.Code)
	}
	ideas, _ := body["ideas"].([]any)
	if len(ideas) != 3 || body["total"] != float64(3) || body["source"] != "fallback" {
		t.Fatalf("structured body: %v", body)
	}
	first, _ := ideas[0].(map[string]any)
	if first["title"] != "Technology Platform for Developers" || first["source"] != "fallback" {
		t.Fatalf("first idea: %v", first)
	}

	rec, body = do(t, r, http.MethodPost, "/api/generate-idea", tok, map[string]any{
		"type":     "structured",
		"data":     map[string]any{"category": "Technology", "difficulty": "easy", "targetAudience": "Developers"},
		"multiple": true,
		"count":    11,
	})
	if rec.Code != http.StatusBadRequest || body["error"] != "Count must be between 1 and 10" {
		t.Fatalf("count 11: status=%d body=%v", rec.Code, body)
	}
}

func TestSaveIdeaAndMilestones(t *testing.T) {
	r := newTestRouter(t)
	tok := tokenFor(t, "user_crud")
	idea := map[string]any{"id": "5551234567890", "title": "Repair Cafe Finder", "difficulty": "easy"}

	rec, body := do(t, r, http.MethodPost, "/api/save-idea", tok, map[string]any{"idea": idea})
	if rec.Code != http.StatusCreated || body["success"] != true {
		t.Fatalf("save: status=%d body=%v", rec.Code, body)
	}
	rec, _ = do(t, r, http.MethodPost, "/api/save-idea", tok, map[string]any{"idea": idea})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second save: want=409 got=%d", rec.Code)
	}
	rec, _ = do(t, r, http.MethodPatch, "/api/ideas/5551234567890", tok, map[string]any{"status": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: want=400 got=%d", rec.Code)
	}
	rec, _ = do(t, r, http.MethodGet, "/api/ideas/missing", tok, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing idea: want=404 got=%d", rec.Code)
	}

	rec, body = do(t, r, http.MethodPost, "/api/milestones", tok, map[string]any{
		"idea_id": "5551234567890",
		"title":   "Find first venue",
		"status":  "completed",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("milestone: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	m, _ := body["milestone"].(map[string]any)
	if m["completion_percentage"] != float64(100) {
		t.Fatalf("completed milestone percentage: %v", m)
	}
	rec, _ = do(t, r, http.MethodPost, "/api/milestones", tok, map[string]any{"title": "x", "completion_percentage": 120})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad percentage: want=400 got=%d", rec.Code)
	}
}

func TestReportGenerateShareAndView(t *testing.T) {
	r := newTestRouter(t)
	tok := tokenFor(t, "user_rep")
	idea := map[string]any{"id": "1112223334445", "title": "Night Market Map", "description": "Find stalls", "category": "food"}

	rec, _ := do(t, r, http.MethodPost, "/api/generate-report", tok, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing idea: want=400 got=%d", rec.Code)
	}

	rec, body := do(t, r, http.MethodPost, "/api/generate-report", tok, map[string]any{"idea": idea, "ideaId": "1112223334445"})
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("generate: status=%d body=%v", rec.Code, body)
	}
	reportID, _ := body["report_id"].(string)
	if reportID == "" {
		t.Fatalf("expected a report id: %v", body)
	}

	_, body = do(t, r, http.MethodPost, "/api/generate-report", tok, map[string]any{"idea": idea, "ideaId": "1112223334445"})
	if body["cached"] != true {
		t.Fatalf("second call should be cached: %v", body)
	}

	rec, body = do(t, r, http.MethodGet, "/api/generate-report?idea_id=1", tok, nil)
	if rec.Code != http.StatusOK || body["message"] == nil {
		t.Fatalf("info: status=%d body=%v", rec.Code, body)
	}

	rec, body = do(t, r, http.MethodPost, "/api/share-report", tok, map[string]any{"report_id": reportID})
	if rec.Code != http.StatusOK {
		t.Fatalf("share: status=%d body=%v", rec.Code, body)
	}
	shareID, _ := body["share_id"].(string)
	if !strings.HasPrefix(body["share_url"].(string), "https://ideavault.test/shared/") {
		t.Fatalf("share url: %v", body["share_url"])
	}

	rec, body = do(t, r, http.MethodGet, "/api/share-report/"+shareID, "", nil)
	if rec.Code != http.StatusOK || body["idea_title"] != "Night Market Map" {
		t.Fatalf("shared view: status=%d body=%v", rec.Code, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.Init(true)
	r := NewRouter(RouterConfig{Log: logger.Nop(), HealthHandler: httpH.NewHealthHandler(), Metrics: m})

	do(t, r, http.MethodGet, "/healthcheck", "", nil)
	rec, _ := do(t, r, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `iv_api_requests_total{method="GET",route="/healthcheck",status="200"}`) {
		t.Fatalf("healthcheck not recorded:\n%s", rec.Body.String())
	}
}
