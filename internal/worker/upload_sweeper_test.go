package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/repository/memory"
	"github.com/arbeit/talentportal/internal/uploads"
)

func newSweeper(t *testing.T, repo domain.CandidateRepository) (*UploadSweeper, *uploads.Store) {
	t.Helper()
	files, err := uploads.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("uploads: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUploadSweeper(files, repo, log, time.Minute, time.Hour), files
}

func saveAged(t *testing.T, files *uploads.Store, id string, age time.Duration) {
	t.Helper()
	if _, err := files.Save(id, []byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("save %s: %v", id, err)
	}
	ts := time.Now().Add(-age)
	if err := os.Chtimes(filepath.Join(files.Dir(), uploads.FileName(id)), ts, ts); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func exists(files *uploads.Store, id string) bool {
	_, err := os.Stat(filepath.Join(files.Dir(), uploads.FileName(id)))
	return err == nil
}

func TestSweepRemovesOnlyOldOrphans(t *testing.T) {
	repo := memory.NewCandidateRepository()
	if err := repo.Create(context.Background(), &domain.Candidate{CandidateID: "cand_kept", JobID: "job_1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	sweeper, files := newSweeper(t, repo)

	saveAged(t, files, "cand_kept", 2*time.Hour)
	saveAged(t, files, "cand_orphan", 2*time.Hour)
	saveAged(t, files, "cand_fresh", time.Minute)

	if removed := sweeper.Sweep(context.Background()); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if !exists(files, "cand_kept") {
		t.Fatalf("referenced upload was removed")
	}
	if exists(files, "cand_orphan") {
		t.Fatalf("orphaned upload was kept")
	}
	if !exists(files, "cand_fresh") {
		t.Fatalf("upload inside the grace period was removed")
	}
}

type failingRepo struct {
	domain.CandidateRepository
}

func (failingRepo) Exists(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}

func TestSweepKeepsFilesWhenLookupFails(t *testing.T) {
	sweeper, files := newSweeper(t, failingRepo{})
	saveAged(t, files, "cand_unknown", 3*time.Hour)

	if removed := sweeper.Sweep(context.Background()); removed != 0 {
		t.Fatalf("expected no removals, got %d", removed)
	}
	if !exists(files, "cand_unknown") {
		t.Fatalf("file removed despite lookup failure")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	sweeper, _ := newSweeper(t, memory.NewCandidateRepository())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		if err := sweeper.Start(ctx); err != nil {
			t.Errorf("start: %v", err)
		}
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop")
	}
}

func TestScheduleUsesInterval(t *testing.T) {
	sweeper, _ := newSweeper(t, memory.NewCandidateRepository())
	if got := sweeper.Schedule(); got != "@every 1m0s" {
		t.Fatalf("unexpected schedule %q", got)
	}
	if _, err := cron.ParseStandard(sweeper.Schedule()); err != nil {
		t.Fatalf("schedule does not parse: %v", err)
	}
}
