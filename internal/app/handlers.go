package app

import (
	"github.com/gin-gonic/gin"

	"github.com/ideavault/ideavault-backend/internal/config"
	"github.com/ideavault/ideavault-backend/internal/http"
	httpH "github.com/ideavault/ideavault-backend/internal/http/handlers"
	httpMW "github.com/ideavault/ideavault-backend/internal/http/middleware"
	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Config    *httpH.ConfigHandler
	Idea      *httpH.IdeaHandler
	Report    *httpH.ReportHandler
	Milestone *httpH.MilestoneHandler
	User      *httpH.UserHandler
	SystemLog *httpH.SystemLogHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Verifier),
	}
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Config:    httpH.NewConfigHandler(config.Snapshot),
		Idea:      httpH.NewIdeaHandler(log, services.Generation, services.UserIdeas),
		Report:    httpH.NewReportHandler(log, services.Reports, services.Shares),
		Milestone: httpH.NewMilestoneHandler(log, services.Milestones),
		User:      httpH.NewUserHandler(log, services.Settings),
		SystemLog: httpH.NewSystemLogHandler(log, services.SystemLogs),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		AllowedOrigins:   cfg.AllowedOrigins,
		AuthMiddleware:   middleware.Auth,
		Metrics:          metrics,
		HealthHandler:    handlers.Health,
		ConfigHandler:    handlers.Config,
		IdeaHandler:      handlers.Idea,
		ReportHandler:    handlers.Report,
		MilestoneHandler: handlers.Milestone,
		UserHandler:      handlers.User,
		SystemLogHandler: handlers.SystemLog,
	})
}
