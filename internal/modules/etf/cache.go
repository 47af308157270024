package etf

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/macrobasket/etf-server/internal/domain"
)

// Cache owns the latest snapshot behind a mutex. Refreshes are serialized:
// when a periodic job races an on-demand request, one of them rebuilds and
// the other reuses the result.
type Cache struct {
	mu       sync.Mutex
	service  *Service
	snapshot *domain.Snapshot
	now      func() time.Time
	log      zerolog.Logger
}

// NewCache creates a snapshot cache around a pipeline service.
func NewCache(service *Service, log zerolog.Logger) *Cache {
	return &Cache{
		service: service,
		now:     time.Now,
		log:     log.With().Str("component", "snapshot_cache").Logger(),
	}
}

// GetOrRefresh returns the cached snapshot, rebuilding first when it is
// older than maxAge or absent. The lock is held across the rebuild so at
// most one refresh executes at a time.
func (c *Cache) GetOrRefresh(ctx context.Context, maxAge time.Duration) (*domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && c.snapshot.Age(c.now()) <= maxAge {
		return c.snapshot, nil
	}

	return c.refreshLocked(ctx)
}

// Refresh rebuilds unconditionally.
func (c *Cache) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.refreshLocked(ctx)
}

// Current returns the cached snapshot without triggering a rebuild, or nil
// when nothing has been built yet.
func (c *Cache) Current() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot
}

func (c *Cache) refreshLocked(ctx context.Context) (*domain.Snapshot, error) {
	snapshot, err := c.service.Build(ctx)
	if err != nil {
		// Keep serving the previous snapshot; a failed run never
		// replaces a consistent one.
		c.log.Error().Err(err).Msg("Snapshot refresh failed")
		return nil, err
	}

	c.snapshot = snapshot
	c.log.Info().
		Str("run_id", snapshot.RunID).
		Time("built_at", snapshot.BuiltAt).
		Msg("Snapshot refreshed")

	return snapshot, nil
}
