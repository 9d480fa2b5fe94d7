package app

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/ideavault/ideavault-backend/internal/clients/gemini"
	"github.com/ideavault/ideavault-backend/internal/http/middleware"
	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/platform/envutil"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/services"
)

const (
	ReportStoreMemory = "memory"
	ReportStoreRedis  = "redis"

	defaultMaintenanceSchedule = "@every 10m"
)

type Config struct {
	Port    string
	LogMode string
	Env     string
	Version string
	AppURL  string

	ClerkPublishableKey    string
	ClerkJWKSURL           string
	ClerkIssuer            string
	ClerkAuthorizedParties []string
	ClerkJWTSecret         string

	IdeasDBURL    string
	UserDataDBURL string

	Gemini gemini.Config

	ReportStore        string
	RedisURL           string
	ReportChecksumMode string

	AllowedOrigins      []string
	MetricsEnabled      bool
	Otel                observability.OtelConfig
	ShutdownTimeout     time.Duration
	MaintenanceSchedule string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080", log),
		LogMode: envutil.String("LOG_MODE", "development", log),
		Env:     envutil.String("APP_ENV", "development", log),
		Version: envutil.String("APP_VERSION", "dev", log),
		AppURL:  envutil.String("APP_URL", "http://localhost:3000", log),

		ClerkPublishableKey:    envutil.String("CLERK_PUBLISHABLE_KEY", "", log),
		ClerkJWKSURL:           envutil.String("CLERK_JWKS_URL", "", log),
		ClerkIssuer:            envutil.String("CLERK_ISSUER", "", log),
		ClerkAuthorizedParties: envutil.CSV("CLERK_AUTHORIZED_PARTIES", nil, log),
		ClerkJWTSecret:         envutil.String("CLERK_JWT_SECRET", "", log),

		IdeasDBURL: envutil.String("SUPABASE_IDEAS_DB_URL", "", log),
		UserDataDBURL: envutil.String("SUPABASE_USER_DATA_SERVICE_ROLE_DB_URL",
			envutil.String("SUPABASE_USER_DATA_DB_URL", "", log), log),

		Gemini: gemini.Config{
			APIKey:     envutil.String("GEMINI_API_KEY", "", log),
			BaseURL:    envutil.String("GEMINI_BASE_URL", gemini.DefaultBaseURL, log),
			Model:      envutil.String("GEMINI_MODEL", gemini.DefaultModel, log),
			EmbedModel: envutil.String("GEMINI_EMBED_MODEL", gemini.DefaultEmbedModel, log),
		},

		ReportStore:        strings.ToLower(envutil.String("REPORT_STORE", ReportStoreMemory, log)),
		RedisURL:           envutil.String("REDIS_URL", "", log),
		ReportChecksumMode: strings.ToLower(envutil.String("REPORT_CHECKSUM_MODE", services.ChecksumTimestamped, log)),

		MetricsEnabled:      envutil.Bool("METRICS_ENABLED", false, log),
		ShutdownTimeout:     envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second, log),
		MaintenanceSchedule: envutil.String("MAINTENANCE_SCHEDULE", defaultMaintenanceSchedule, log),
	}

	cfg.Otel = observability.OtelConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "ideavault-backend", log),
		Environment: cfg.Env,
		Version:     cfg.Version,
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
		Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
		SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1, log),
	}

	if cfg.ClerkJWKSURL == "" {
		cfg.ClerkJWKSURL = jwksURLFromPublishableKey(cfg.ClerkPublishableKey)
	}
	cfg.AllowedOrigins = envutil.CSV("CORS_ALLOWED_ORIGINS", defaultOrigins(cfg.AppURL), log)
	return cfg
}

func defaultOrigins(appURL string) []string {
	out := append([]string{}, middleware.DefaultAllowedOrigins...)
	appURL = strings.TrimRight(strings.TrimSpace(appURL), "/")
	if appURL == "" {
		return out
	}
	for _, o := range out {
		if o == appURL {
			return out
		}
	}
	return append(out, appURL)
}

// jwksURLFromPublishableKey decodes the frontend API host embedded in a
// Clerk publishable key (pk_test_<base64("host$")>).
func jwksURLFromPublishableKey(pk string) string {
	pk = strings.TrimSpace(pk)
	var encoded string
	switch {
	case strings.HasPrefix(pk, "pk_test_"):
		encoded = strings.TrimPrefix(pk, "pk_test_")
	case strings.HasPrefix(pk, "pk_live_"):
		encoded = strings.TrimPrefix(pk, "pk_live_")
	default:
		return ""
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.TrimSpace(string(raw)), "$")
	if host == "" || strings.ContainsAny(host, "/ ") {
		return ""
	}
	return "https://" + host + "/.well-known/jwks.json"
}
