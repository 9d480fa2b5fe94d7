package app

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/config"
	"github.com/ideavault/ideavault-backend/internal/data/db"
	"github.com/ideavault/ideavault-backend/internal/http"
	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type App struct {
	Log         *logger.Logger
	Cfg         Config
	Clients     *Clients
	Repos       Repos
	Services    Services
	Router      *gin.Engine
	Metrics     *observability.Metrics
	maintenance *Maintenance

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	logConfigSnapshot(log, config.Snapshot())

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(cfg.MetricsEnabled)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}

	reposet := wireRepos(clients.IdeasDB, clients.UserDB, log)

	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		clients.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	maintenance, err := newMaintenance(log, cfg.MaintenanceSchedule, serviceset)
	if err != nil {
		clients.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Router:       router,
		Metrics:      metrics,
		maintenance:  maintenance,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: cache maintenance and metric collectors.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.maintenance.Start()
	if a.Metrics != nil {
		a.Metrics.StartPostgresCollector(ctx, a.Log, "user_data", a.Clients.UserDB)
		a.Metrics.StartPostgresCollector(ctx, a.Log, "ideas", a.Clients.IdeasDB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := net.JoinHostPort("", strings.TrimPrefix(a.Cfg.Port, ":"))
	a.Log.Info("Server listening", "addr", addr)
	return http.NewServer(a.Router).Run(ctx, addr, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.maintenance != nil {
		a.maintenance.Stop()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Clients.Close()
	a.Log.Sync()
}

// Migrate creates the user-data tables and indexes.
func Migrate(log *logger.Logger, cfg Config) error {
	if cfg.UserDataDBURL == "" {
		return fmt.Errorf("SUPABASE_USER_DATA_DB_URL is not set")
	}
	pg, err := openPostgres(log, "user_data", cfg.UserDataDBURL)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := db.AutoMigrateUserData(pg.DB()); err != nil {
		return err
	}
	if err := db.EnsureUserDataIndexes(pg.DB()); err != nil {
		return err
	}
	log.Info("User data schema migrated")
	return nil
}

func logConfigSnapshot(log *logger.Logger, res config.Result) {
	if res.Valid {
		log.Info("Configuration valid", "features", res.Features)
		return
	}
	for _, c := range res.InvalidCategories() {
		cr := res.Categories[c]
		log.Warn("Configuration category incomplete",
			"category", string(c),
			"missing", cr.Missing,
			"invalid", cr.Invalid,
		)
	}
	log.Warn("Running with reduced features", "features", res.Features)
}
