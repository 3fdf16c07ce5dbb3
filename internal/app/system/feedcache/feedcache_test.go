package feedcache

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/prepboard/internal/testutil"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	if _, ok, _ := m.Get(ctx); ok {
		t.Fatal("empty cache reported a snapshot")
	}

	snap := models.FeedSnapshot{
		Items:     []models.FeedItem{{Title: "Library hours", Link: "https://example.edu/1"}},
		FetchedAt: now,
	}
	if err := m.Set(ctx, snap, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := m.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got.Items) != 1 || got.Items[0].Title != "Library hours" {
		t.Errorf("snapshot = %+v", got)
	}

	now = now.Add(time.Hour)
	if _, ok, _ := m.Get(ctx); ok {
		t.Error("snapshot should be gone after keep elapsed")
	}
}

func TestFresh(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	snap := models.FeedSnapshot{FetchedAt: now.Add(-4 * time.Minute)}

	if !Fresh(snap, 5*time.Minute, now) {
		t.Error("expected fresh")
	}
	if Fresh(snap, 3*time.Minute, now) {
		t.Error("expected stale")
	}
	if Fresh(models.FeedSnapshot{}, time.Hour, now) {
		t.Error("zero snapshot is never fresh")
	}
}

func TestRedis_SetGet(t *testing.T) {
	client, prefix := testutil.SetupTestRedis(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	r := NewRedis(client, prefix+"feed")

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, ok, err := r.Get(ctx); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	fetched := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	snap := models.FeedSnapshot{
		Items:     []models.FeedItem{{Title: "Library hours", Link: "https://example.edu/1"}},
		FetchedAt: fetched,
	}
	if err := r.Set(ctx, snap, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := r.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got.Items) != 1 || got.Items[0].Link != "https://example.edu/1" || !got.FetchedAt.Equal(fetched) {
		t.Errorf("snapshot = %+v", got)
	}

	ttl, err := client.TTL(ctx, prefix+"feed").Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("ttl = %v, want (0, 1h]", ttl)
	}
}

func TestRedis_CorruptEntry(t *testing.T) {
	client, prefix := testutil.SetupTestRedis(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	r := NewRedis(client, prefix+"feed")

	if err := client.Set(ctx, prefix+"feed", "not json", 0).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := r.Get(ctx); err == nil || ok {
		t.Errorf("corrupt entry: ok=%v err=%v", ok, err)
	}
}

func TestNewRedis_DefaultKey(t *testing.T) {
	if r := NewRedis(nil, ""); r.key != "prepboard:feed" {
		t.Errorf("key = %q", r.key)
	}
}
