package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/ideavault/ideavault-backend/internal/http/handlers"
	httpMW "github.com/ideavault/ideavault-backend/internal/http/middleware"
	"github.com/ideavault/ideavault-backend/internal/http/response"
	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware
	Metrics        *observability.Metrics

	HealthHandler    *httpH.HealthHandler
	ConfigHandler    *httpH.ConfigHandler
	IdeaHandler      *httpH.IdeaHandler
	ReportHandler    *httpH.ReportHandler
	MilestoneHandler *httpH.MilestoneHandler
	UserHandler      *httpH.UserHandler
	SystemLogHandler *httpH.SystemLogHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.RespondError(c, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, http.StatusNotFound, "Not found")
	})

	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Public
		if cfg.ConfigHandler != nil {
			api.GET("/config/status", cfg.ConfigHandler.Status)
		}
		if cfg.ReportHandler != nil {
			api.GET("/share-report/:token", cfg.ReportHandler.GetSharedReport)
		}
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Ideas
		if cfg.IdeaHandler != nil {
			protected.POST("/generate-idea", cfg.IdeaHandler.GenerateIdea)
			protected.POST("/save-idea", cfg.IdeaHandler.SaveIdea)
			protected.GET("/ideas", cfg.IdeaHandler.ListIdeas)
			protected.GET("/ideas/:id", cfg.IdeaHandler.GetIdea)
			protected.PATCH("/ideas/:id", cfg.IdeaHandler.UpdateIdea)
			protected.DELETE("/ideas/:id", cfg.IdeaHandler.DeleteIdea)
		}

		// Reports
		if cfg.ReportHandler != nil {
			protected.POST("/generate-report", cfg.ReportHandler.GenerateReport)
			protected.GET("/generate-report", cfg.ReportHandler.GenerateReportInfo)
			protected.GET("/reports", cfg.ReportHandler.ListReports)
			protected.GET("/reports/:id", cfg.ReportHandler.GetReport)
			protected.POST("/share-report", cfg.ReportHandler.ShareReport)
		}

		// Milestones
		if cfg.MilestoneHandler != nil {
			protected.GET("/milestones", cfg.MilestoneHandler.ListMilestones)
			protected.POST("/milestones", cfg.MilestoneHandler.CreateMilestone)
			protected.PATCH("/milestones/:id", cfg.MilestoneHandler.UpdateMilestone)
			protected.DELETE("/milestones/:id", cfg.MilestoneHandler.DeleteMilestone)
		}

		// Preferences + profile
		if cfg.UserHandler != nil {
			protected.GET("/preferences", cfg.UserHandler.GetPreferences)
			protected.POST("/preferences", cfg.UserHandler.SavePreferences)
			protected.GET("/profile", cfg.UserHandler.GetProfile)
			protected.PUT("/profile", cfg.UserHandler.UpdateProfile)
		}

		// System logs
		if cfg.SystemLogHandler != nil {
			protected.POST("/system-logs", cfg.SystemLogHandler.CreateLog)
			protected.GET("/system-logs", cfg.SystemLogHandler.ListLogs)
		}
	}

	return r
}
