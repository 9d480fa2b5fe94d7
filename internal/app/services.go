package app

import (
	"fmt"

	"github.com/ideavault/ideavault-backend/internal/cache"
	"github.com/ideavault/ideavault-backend/internal/llm"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/search"
	"github.com/ideavault/ideavault-backend/internal/services"
)

type Services struct {
	Generation services.IdeaGenerationService
	UserIdeas  services.UserIdeaService
	Reports    services.ReportService
	Shares     services.ShareService
	Milestones services.MilestoneService
	Settings   services.UserSettingsService
	SystemLogs services.SystemLogService
	Verifier   services.SessionVerifier

	// Process-local caches swept by the maintenance job.
	ReportStore cache.Store
	Embedder    *llm.CachedEmbedder
}

func wireServices(log *logger.Logger, cfg Config, clients *Clients, r Repos) (Services, error) {
	log.Info("Wiring services...")

	tables, err := llm.LoadFallbackTables()
	if err != nil {
		return Services{}, fmt.Errorf("load fallback tables: %w", err)
	}
	retrier := llm.NewRetrier(log)

	var (
		gen   llm.TextGenerator
		embed llm.EmbeddingClient
		model string
	)
	if clients.Gemini != nil {
		gen = clients.Gemini
		embed = clients.Gemini
		model = clients.Gemini.Model()
	}
	synthesizer := llm.NewSynthesizer(log, gen, retrier, tables)
	embedder := llm.NewCachedEmbedder(log, embed, retrier)
	searcher := search.NewSearcher(log, r.ProductIdea, embedder)

	var store cache.Store
	if clients.Redis != nil {
		store = cache.NewRedisStore(log, clients.Redis)
	} else {
		store = cache.NewMemoryStore()
	}

	return Services{
		Generation: services.NewIdeaGenerationService(log, searcher, synthesizer, r.UserIdea, model),
		UserIdeas:  services.NewUserIdeaService(log, r.UserIdea),
		Reports: services.NewReportService(log, store, synthesizer, r.UserIdea, r.Report, services.ReportServiceConfig{
			ChecksumMode: cfg.ReportChecksumMode,
		}),
		Shares:     services.NewShareService(log, r.Report, r.SharedReport, cfg.AppURL),
		Milestones: services.NewMilestoneService(log, r.Milestone),
		Settings:   services.NewUserSettingsService(log, r.Preferences, r.Profile),
		SystemLogs: services.NewSystemLogService(log, r.SystemLog),
		Verifier: services.NewClerkVerifier(log, services.ClerkVerifierConfig{
			JWKSURL:           cfg.ClerkJWKSURL,
			Issuer:            cfg.ClerkIssuer,
			AuthorizedParties: cfg.ClerkAuthorizedParties,
			HMACSecret:        cfg.ClerkJWTSecret,
		}),
		ReportStore: store,
		Embedder:    embedder,
	}, nil
}
