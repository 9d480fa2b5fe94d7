package app

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/ideavault/ideavault-backend/internal/cache"
	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// Maintenance periodically evicts expired entries from process-local caches.
type Maintenance struct {
	log      *logger.Logger
	cron     *cron.Cron
	sweepers map[string]cache.Sweeper
}

func newMaintenance(log *logger.Logger, schedule string, services Services) (*Maintenance, error) {
	m := &Maintenance{
		log:      log.With("component", "Maintenance"),
		cron:     cron.New(),
		sweepers: map[string]cache.Sweeper{},
	}
	if sw, ok := services.ReportStore.(cache.Sweeper); ok {
		m.sweepers["report"] = sw
	}
	if services.Embedder != nil {
		m.sweepers["embedding"] = services.Embedder
	}
	if _, err := m.cron.AddFunc(schedule, m.Sweep); err != nil {
		return nil, fmt.Errorf("schedule cache sweep %q: %w", schedule, err)
	}
	return m, nil
}

// Sweep runs one eviction pass over every registered cache.
func (m *Maintenance) Sweep() {
	metrics := observability.Current()
	for name, sw := range m.sweepers {
		n := sw.Sweep()
		metrics.AddCacheSwept(name, n)
		if n > 0 {
			m.log.Debug("Swept expired cache entries", "cache", name, "removed", n)
		}
	}
}

func (m *Maintenance) Start() { m.cron.Start() }

// Stop waits for a running sweep to finish.
func (m *Maintenance) Stop() {
	<-m.cron.Stop().Done()
}
