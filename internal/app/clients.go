package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ideavault/ideavault-backend/internal/clients/gemini"
	"github.com/ideavault/ideavault-backend/internal/clients/redis"
	"github.com/ideavault/ideavault-backend/internal/data/db"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type Clients struct {
	// IdeasDB is nil when the ideas store is not configured; search then
	// degrades to fallback ideas.
	IdeasDB *gorm.DB
	UserDB  *gorm.DB
	Gemini  gemini.Client
	Redis   *redis.Client

	closers []func() error
}

var (
	openPostgres = db.NewPostgresService
	openLocalDB  = db.OpenLocal
	connectRedis = redis.Connect
)

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{}

	// Ideas store (read only)
	if cfg.IdeasDBURL != "" {
		pg, err := openPostgres(log, "ideas", cfg.IdeasDBURL)
		if err != nil {
			log.Warn("Ideas store unavailable, search will use fallbacks", "error", err)
		} else {
			c.IdeasDB = pg.DB()
			c.closers = append(c.closers, pg.Close)
		}
	} else {
		log.Warn("SUPABASE_IDEAS_DB_URL not set, search will use fallbacks")
	}

	// User data store
	if cfg.UserDataDBURL != "" {
		pg, err := openPostgres(log, "user_data", cfg.UserDataDBURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init user data store: %w", err)
		}
		c.UserDB = pg.DB()
		c.closers = append(c.closers, pg.Close)
	} else {
		local, err := openLocalDB(log)
		if err != nil {
			c.Close()
			return nil, err
		}
		if err := db.AutoMigrateUserData(local); err != nil {
			c.Close()
			return nil, err
		}
		c.UserDB = local
	}

	// Gemini
	gc, err := gemini.New(log, cfg.Gemini)
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		log.Warn("GEMINI_API_KEY not set, generation will use fallbacks")
	case err != nil:
		c.Close()
		return nil, fmt.Errorf("init gemini client: %w", err)
	default:
		c.Gemini = gc
	}

	// Redis
	if cfg.ReportStore == ReportStoreRedis {
		rc, err := connectRedis(ctx, log, cfg.RedisURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		c.Redis = rc
		c.closers = append(c.closers, rc.Close)
	}

	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
}
