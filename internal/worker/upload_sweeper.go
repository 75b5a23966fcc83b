package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/observability/metrics"
	"github.com/arbeit/talentportal/internal/uploads"
)

// DefaultGracePeriod protects files whose candidate is still being created
const DefaultGracePeriod = time.Hour

// UploadSweeper periodically deletes stored CV files that no candidate
// references. Uploads that fail halfway leave such files behind.
type UploadSweeper struct {
	files      *uploads.Store
	candidates domain.CandidateRepository
	logger     *slog.Logger
	interval   time.Duration
	grace      time.Duration
	now        func() time.Time
}

// NewUploadSweeper creates a new sweeper. A non-positive grace uses
// DefaultGracePeriod.
func NewUploadSweeper(
	files *uploads.Store,
	candidates domain.CandidateRepository,
	logger *slog.Logger,
	interval time.Duration,
	grace time.Duration,
) *UploadSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &UploadSweeper{
		files:      files,
		candidates: candidates,
		logger:     logger,
		interval:   interval,
		grace:      grace,
		now:        time.Now,
	}
}

// Schedule is the cron spec the sweeper registers
func (w *UploadSweeper) Schedule() string {
	return fmt.Sprintf("@every %s", w.interval)
}

// Start schedules Sweep and blocks until ctx is cancelled. A sweep still
// running at cancellation is waited for.
func (w *UploadSweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{w.logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.logger})))
	if _, err := c.AddFunc(w.Schedule(), func() { w.Sweep(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	c.Start()
	w.logger.Info("upload sweeper started",
		slog.String("schedule", w.Schedule()),
		slog.Duration("grace", w.grace),
	)

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("upload sweeper stopped")
	return nil
}

type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append([]interface{}{slog.String("error", err.Error())}, keysAndValues...)...)
}

// Sweep performs one pass and returns the number of files removed
func (w *UploadSweeper) Sweep(ctx context.Context) int {
	files, err := w.files.List()
	if err != nil {
		w.logger.Error("failed to list uploads", slog.String("error", err.Error()))
		metrics.ObserveSweep("error", 1)
		return 0
	}

	cutoff := w.now().Add(-w.grace)
	removed, failed := 0, 0
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		if f.ModTime.After(cutoff) {
			continue
		}
		logger := w.logger.With(slog.String("file", f.Name))

		exists, err := w.candidates.Exists(ctx, f.CandidateID)
		if err != nil {
			logger.Error("failed to check candidate", slog.String("error", err.Error()))
			failed++
			continue
		}
		if exists {
			continue
		}
		if err := w.files.Remove(f.Name); err != nil {
			logger.Error("failed to remove orphaned upload", slog.String("error", err.Error()))
			failed++
			continue
		}
		logger.Info("removed orphaned upload", slog.Int64("bytes", f.Size))
		removed++
	}

	metrics.ObserveSweep("removed", removed)
	metrics.ObserveSweep("error", failed)
	if removed > 0 || failed > 0 {
		w.logger.Info("upload sweep finished", slog.Int("removed", removed), slog.Int("failed", failed))
	}
	return removed
}
