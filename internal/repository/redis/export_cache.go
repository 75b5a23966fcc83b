package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	infraredis "github.com/arbeit/talentportal/internal/infrastructure/redis"
)

const exportPrefix = "talentportal:story-pdf:"

// ExportCache keeps rendered story PDFs keyed by candidate and revision.
// A new updated_at produces a new key, so stale PDFs are never served.
type ExportCache struct {
	client *infraredis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewExportCache(client *infraredis.Client, ttl time.Duration, log *slog.Logger) *ExportCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ExportCache{client: client, ttl: ttl, log: log}
}

func exportKey(candidateID string, revision time.Time) string {
	return fmt.Sprintf("%s%s:%d", exportPrefix, candidateID, revision.UTC().UnixNano())
}

// Get returns the cached PDF, or ok=false on a miss. Redis failures count as
// misses so exports keep working when the cache is down.
func (c *ExportCache) Get(ctx context.Context, candidateID string, revision time.Time) ([]byte, bool) {
	b, err := c.client.GetBytes(ctx, exportKey(candidateID, revision))
	if err != nil {
		if !errors.Is(err, infraredis.ErrMiss) {
			c.log.Warn("export cache read failed", slog.String("candidate_id", candidateID), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return b, true
}

func (c *ExportCache) Put(ctx context.Context, candidateID string, revision time.Time, pdf []byte) {
	if err := c.client.Set(ctx, exportKey(candidateID, revision), pdf, c.ttl); err != nil {
		c.log.Warn("export cache write failed", slog.String("candidate_id", candidateID), slog.String("error", err.Error()))
	}
}

// Invalidate drops every cached revision for candidateID
func (c *ExportCache) Invalidate(ctx context.Context, candidateID string) error {
	return c.client.DeletePrefix(ctx, exportPrefix+candidateID+":")
}
