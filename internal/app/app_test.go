package app

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ideavault/ideavault-backend/internal/cache"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

func TestJWKSURLFromPublishableKey(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString([]byte("clerk.example.dev$"))
	tests := []struct {
		name string
		pk   string
		want string
	}{
		{"test key", "pk_test_" + enc, "https://clerk.example.dev/.well-known/jwks.json"},
		{"live key", "pk_live_" + enc, "https://clerk.example.dev/.well-known/jwks.json"},
		{"unknown prefix", "sk_test_" + enc, ""},
		{"not base64", "pk_test_%%%", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jwksURLFromPublishableKey(tt.pk); got != tt.want {
				t.Fatalf("want=%q got=%q", tt.want, got)
			}
		})
	}
}

func TestDefaultOriginsAddsAppURL(t *testing.T) {
	got := defaultOrigins("https://ideavault.app/")
	if got[len(got)-1] != "https://ideavault.app" {
		t.Fatalf("app url not appended: %v", got)
	}
	if n := len(defaultOrigins("http://localhost:3000")); n != len(defaultOrigins("")) {
		t.Fatalf("local app url should not be duplicated")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REPORT_STORE", "Redis")
	t.Setenv("SUPABASE_USER_DATA_DB_URL", "postgres://user")
	t.Setenv("SUPABASE_USER_DATA_SERVICE_ROLE_DB_URL", "postgres://service")
	t.Setenv("CLERK_AUTHORIZED_PARTIES", "https://a.dev, https://b.dev")
	t.Setenv("CLERK_JWKS_URL", "")
	t.Setenv("CLERK_PUBLISHABLE_KEY", "")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")

	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "9090" || cfg.ReportStore != ReportStoreRedis {
		t.Fatalf("port/store: %+v", cfg)
	}
	if cfg.UserDataDBURL != "postgres://service" {
		t.Fatalf("service role DSN should win: %q", cfg.UserDataDBURL)
	}
	if len(cfg.ClerkAuthorizedParties) != 2 || cfg.ClerkAuthorizedParties[1] != "https://b.dev" {
		t.Fatalf("authorized parties: %v", cfg.ClerkAuthorizedParties)
	}
	if cfg.Otel.SampleRatio != 0.5 || cfg.MaintenanceSchedule != defaultMaintenanceSchedule {
		t.Fatalf("otel/schedule: %+v", cfg)
	}
}

func TestMaintenanceSweep(t *testing.T) {
	now := time.Now()
	store := cache.NewMemoryStore().WithClock(func() time.Time { return now })
	if err := store.Put(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	m, err := newMaintenance(logger.Nop(), "@every 10m", Services{ReportStore: store})
	if err != nil {
		t.Fatalf("newMaintenance: %v", err)
	}
	m.Sweep()
	if _, ok, _ := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("live entry swept")
	}

	now = now.Add(2 * time.Minute)
	m.Sweep()
	if _, ok, _ := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expired entry kept")
	}

	if _, err := newMaintenance(logger.Nop(), "every now and then", Services{}); err == nil {
		t.Fatalf("expected bad schedule error")
	}
}

func TestNewWithoutExternalServices(t *testing.T) {
	cfg := Config{
		Port:                "0",
		AppURL:              "http://localhost:3000",
		ReportStore:         ReportStoreMemory,
		ShutdownTimeout:     time.Second,
		MaintenanceSchedule: defaultMaintenanceSchedule,
	}
	a, err := New(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Clients.Gemini != nil || a.Clients.IdeasDB != nil {
		t.Fatalf("no external clients expected")
	}
	if _, ok := a.Services.ReportStore.(*cache.MemoryStore); !ok {
		t.Fatalf("expected memory report store, got %T", a.Services.ReportStore)
	}

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ideas", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("ideas without token: %d", rec.Code)
	}
}
