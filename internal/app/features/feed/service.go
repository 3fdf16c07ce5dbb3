// internal/app/features/feed/service.go
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/prepboard/internal/app/system/feedcache"
	"github.com/dalemusser/prepboard/internal/app/system/feedsource"
	"github.com/dalemusser/prepboard/internal/app/system/metrics"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"go.uber.org/zap"
)

// Service keeps a cached copy of the upstream feed.
type Service struct {
	Source  feedsource.Fetcher // nil when no feed_url is configured
	Cache   feedcache.Cache
	TTL     time.Duration // how long a snapshot counts as fresh
	Keep    time.Duration // how long a stale snapshot is kept as a fallback
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Now     func() time.Time

	mu sync.Mutex // serializes upstream fetches
}

// Result is what the feed endpoint returns.
type Result struct {
	Items     []models.FeedItem `json:"items"`
	FetchedAt *time.Time        `json:"fetched_at,omitempty"`
	Stale     bool              `json:"stale"`
	Enabled   bool              `json:"enabled"`
}

func NewService(src feedsource.Fetcher, cache feedcache.Cache, ttl, keep time.Duration, m *metrics.Metrics, logger *zap.Logger) *Service {
	if cache == nil {
		cache = feedcache.NewMemory()
	}
	if keep < ttl {
		keep = ttl
	}
	return &Service{Source: src, Cache: cache, TTL: ttl, Keep: keep, Metrics: m, Log: logger, Now: time.Now}
}

// Enabled reports whether an upstream is configured.
func (s *Service) Enabled() bool { return s.Source != nil }

// Refresh fetches the upstream and replaces the cached snapshot. On failure
// the previous snapshot is left in place.
func (s *Service) Refresh(ctx context.Context) error {
	if s.Source == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.refreshLocked(ctx)
	return err
}

func (s *Service) refreshLocked(ctx context.Context) (models.FeedSnapshot, error) {
	items, err := s.Source.Fetch(ctx)
	if err != nil {
		s.Metrics.FeedFetch("error")
		return models.FeedSnapshot{}, err
	}
	s.Metrics.FeedFetch("ok")

	snap := models.FeedSnapshot{Items: items, FetchedAt: s.Now().UTC()}
	if err := s.Cache.Set(ctx, snap, s.Keep); err != nil {
		s.Log.Warn("failed to cache feed snapshot", zap.Error(err))
	}
	return snap, nil
}

// Current returns the feed, fetching when the cache is cold or expired.
// Upstream failures fall back to the last snapshot, or an empty list, with
// Stale set.
func (s *Service) Current(ctx context.Context) Result {
	if s.Source == nil {
		return Result{Items: []models.FeedItem{}}
	}

	if snap, ok := s.cached(ctx); ok && feedcache.Fresh(snap, s.TTL, s.Now()) {
		s.Metrics.FeedFetch("cache_hit")
		return fromSnapshot(snap, false)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have refreshed while we waited.
	cached, haveCached := s.cached(ctx)
	if haveCached && feedcache.Fresh(cached, s.TTL, s.Now()) {
		return fromSnapshot(cached, false)
	}

	fctx, cancel := timeouts.WithTimeout(ctx, timeouts.Upstream(), s.Log, "fetch feed")
	defer cancel()
	snap, err := s.refreshLocked(fctx)
	if err == nil {
		return fromSnapshot(snap, false)
	}

	s.Log.Warn("feed upstream unavailable; serving cached copy",
		zap.Bool("have_cached", haveCached), zap.Error(err))
	if haveCached {
		return fromSnapshot(cached, true)
	}
	return Result{Items: []models.FeedItem{}, Stale: true, Enabled: true}
}

func (s *Service) cached(ctx context.Context) (models.FeedSnapshot, bool) {
	snap, ok, err := s.Cache.Get(ctx)
	if err != nil {
		s.Log.Warn("feed cache read failed", zap.Error(err))
		return models.FeedSnapshot{}, false
	}
	return snap, ok
}

func fromSnapshot(snap models.FeedSnapshot, stale bool) Result {
	items := snap.Items
	if items == nil {
		items = []models.FeedItem{}
	}
	at := snap.FetchedAt
	return Result{Items: items, FetchedAt: &at, Stale: stale, Enabled: true}
}
