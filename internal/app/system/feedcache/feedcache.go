// Package feedcache holds the last fetched copy of the external feed.
//
// Entries are kept past their freshness window so that the feed handler can
// serve a stale copy when the upstream is down.
package feedcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/go-redis/redis/v8"
)

// Cache stores a single feed snapshot.
type Cache interface {
	// Get returns the snapshot and whether one exists.
	Get(ctx context.Context) (models.FeedSnapshot, bool, error)
	// Set stores snap, retaining it for at most keep.
	Set(ctx context.Context, snap models.FeedSnapshot, keep time.Duration) error
}

// Fresh reports whether snap was fetched within ttl of now.
func Fresh(snap models.FeedSnapshot, ttl time.Duration, now time.Time) bool {
	return !snap.FetchedAt.IsZero() && now.Sub(snap.FetchedAt) < ttl
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.RWMutex
	snap    models.FeedSnapshot
	ok      bool
	expires time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Get(_ context.Context) (models.FeedSnapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ok || (!m.expires.IsZero() && !m.now().Before(m.expires)) {
		return models.FeedSnapshot{}, false, nil
	}
	return m.snap, true, nil
}

func (m *Memory) Set(_ context.Context, snap models.FeedSnapshot, keep time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.ok = true
	m.expires = time.Time{}
	if keep > 0 {
		m.expires = m.now().Add(keep)
	}
	return nil
}

// Redis stores the snapshot as JSON under one key.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis wraps client; key defaults to "prepboard:feed".
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = "prepboard:feed"
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) Get(ctx context.Context) (models.FeedSnapshot, bool, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.FeedSnapshot{}, false, nil
	}
	if err != nil {
		return models.FeedSnapshot{}, false, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var snap models.FeedSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.FeedSnapshot{}, false, fmt.Errorf("decode cached feed: %w", err)
	}
	return snap, true, nil
}

func (r *Redis) Set(ctx context.Context, snap models.FeedSnapshot, keep time.Duration) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, raw, keep).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
