package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	infraredis "github.com/arbeit/talentportal/internal/infrastructure/redis"
)

func newCache(t *testing.T) (*ExportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := infraredis.NewClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewExportCache(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestExportCacheRoundTrip(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()
	rev := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	if _, ok := cache.Get(ctx, "cand_1", rev); ok {
		t.Fatalf("expected miss on empty cache")
	}

	pdf := []byte("%PDF-1.3 fake")
	cache.Put(ctx, "cand_1", rev, pdf)

	got, ok := cache.Get(ctx, "cand_1", rev)
	if !ok || string(got) != string(pdf) {
		t.Fatalf("expected cached pdf, got %q %v", got, ok)
	}

	if _, ok := cache.Get(ctx, "cand_1", rev.Add(time.Second)); ok {
		t.Fatalf("a newer revision must miss")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := cache.Get(ctx, "cand_1", rev); ok {
		t.Fatalf("entry should expire after ttl")
	}
}

func TestExportCacheInvalidate(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()
	rev := time.Now()

	cache.Put(ctx, "cand_1", rev, []byte("a"))
	cache.Put(ctx, "cand_2", rev, []byte("b"))

	if err := cache.Invalidate(ctx, "cand_1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := cache.Get(ctx, "cand_1", rev); ok {
		t.Fatalf("cand_1 should be gone")
	}
	if _, ok := cache.Get(ctx, "cand_2", rev); !ok {
		t.Fatalf("cand_2 should survive")
	}
}

func TestExportCacheDownIsMiss(t *testing.T) {
	cache, mr := newCache(t)
	mr.Close()
	if _, ok := cache.Get(context.Background(), "cand_1", time.Now()); ok {
		t.Fatalf("unreachable redis must read as a miss")
	}
}
