package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"explainer/internal/history"
	"explainer/internal/testsupport"
)

func TestBeginAndFinishSucceeded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run := history.Run{
		ID:           "run-1",
		Language:     "es",
		CaptionMode:  "centered",
		CustomScript: true,
		Speed:        1.25,
		WorkDir:      "/work/run-1",
	}
	if err := store.Begin(ctx, run); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	fetched, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched.Status != history.StatusRunning || fetched.Language != "es" || !fetched.CustomScript {
		t.Fatalf("unexpected running row %+v", fetched)
	}
	if fetched.StartedAt.IsZero() || !fetched.FinishedAt.IsZero() {
		t.Fatalf("unexpected timestamps %+v", fetched)
	}
	if fetched.Duration() != 0 {
		t.Fatalf("running run should have no duration")
	}

	err = store.Finish(ctx, "run-1", history.Outcome{
		Status:       history.StatusSucceeded,
		VideoPath:    "/videos/clip.mp4",
		OutputPath:   "/out/run-1.mp4",
		CaptionsPath: "/work/run-1/captions.srt",
	})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	done, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if done.Status != history.StatusSucceeded || done.OutputPath != "/out/run-1.mp4" || done.VideoPath != "/videos/clip.mp4" {
		t.Fatalf("unexpected finished row %+v", done)
	}
	if done.FinishedAt.IsZero() || done.Speed != 1.25 {
		t.Fatalf("unexpected finished row %+v", done)
	}
}

func TestFinishFailedKeepsVideoPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	if err := store.Begin(ctx, history.Run{ID: "run-2", Language: "en", CaptionMode: "simple", Speed: 1, VideoPath: "/videos/explicit.mp4"}); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	err := store.Finish(ctx, "run-2", history.Outcome{
		Status:       history.StatusFailed,
		FailedStage:  "transcription",
		FailureKind:  "TranscriptionFailure",
		ErrorMessage: "no segments",
	})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	run, err := store.Get(ctx, "run-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != history.StatusFailed || run.FailureKind != "TranscriptionFailure" || run.FailedStage != "transcription" {
		t.Fatalf("unexpected failed row %+v", run)
	}
	if run.VideoPath != "/videos/explicit.mp4" {
		t.Fatalf("expected video path preserved, got %q", run.VideoPath)
	}
	if run.OutputPath != "" {
		t.Fatalf("failed run must not record output, got %q", run.OutputPath)
	}
}

func TestFinishRejectsUnknownRunAndStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	err := store.Finish(ctx, "missing", history.Outcome{Status: history.StatusSucceeded})
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Finish(ctx, "missing", history.Outcome{Status: history.StatusRunning}); err == nil {
		t.Fatal("expected invalid status error")
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Begin(ctx, history.Run{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := history.Run{ID: id, Language: "en", CaptionMode: "simple", Speed: 1, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Begin(ctx, run); err != nil {
			t.Fatalf("Begin %s: %v", id, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order %+v", runs)
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("started_at round trip: %v", runs[0].StartedAt)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := history.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
