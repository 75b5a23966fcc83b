package service

import (
	"context"
	"fmt"
	"time"

	"github.com/arbeit/talentportal/pkg/cache"
)

// ExportCache stores rendered story PDFs keyed by candidate and revision
type ExportCache interface {
	Get(ctx context.Context, candidateID string, revision time.Time) ([]byte, bool)
	Put(ctx context.Context, candidateID string, revision time.Time, pdf []byte)
	Invalidate(ctx context.Context, candidateID string) error
}

// MemoryExportCache is the in-process ExportCache used without Redis
type MemoryExportCache struct {
	items *cache.Cache[[]byte]
	ttl   time.Duration
}

func NewMemoryExportCache(ttl time.Duration) *MemoryExportCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryExportCache{items: cache.New[[]byte](), ttl: ttl}
}

func memoryExportKey(candidateID string, revision time.Time) string {
	return fmt.Sprintf("%s:%d", candidateID, revision.UTC().UnixNano())
}

func (c *MemoryExportCache) Get(_ context.Context, candidateID string, revision time.Time) ([]byte, bool) {
	return c.items.Get(memoryExportKey(candidateID, revision))
}

func (c *MemoryExportCache) Put(_ context.Context, candidateID string, revision time.Time, pdf []byte) {
	c.items.Set(memoryExportKey(candidateID, revision), pdf, c.ttl)
}

func (c *MemoryExportCache) Invalidate(_ context.Context, candidateID string) error {
	c.items.Invalidate(candidateID + ":")
	return nil
}

type noopExportCache struct{}

func (noopExportCache) Get(context.Context, string, time.Time) ([]byte, bool) { return nil, false }
func (noopExportCache) Put(context.Context, string, time.Time, []byte)        {}
func (noopExportCache) Invalidate(context.Context, string) error              { return nil }
