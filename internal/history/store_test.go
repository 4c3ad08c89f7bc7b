package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"kiln/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.PublishDir = filepath.Join(base, "publish")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")

	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndQueryRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	started := time.Now().UTC().Add(-time.Minute)
	run := Run{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Published:  2,
		Failed:     1,
	}
	tasks := []TaskRow{
		{Item: "diffuse", Plugin: "Publish Textures", Status: "finalized", DurationMS: 1200},
		{Item: "specular", Plugin: "Publish Textures", Status: "finalized", DurationMS: 900},
		{Item: "broken", Plugin: "Publish Mipmaps", Status: "failed", Phase: "validate", ErrorMessage: "missing source"},
	}
	if err := store.SaveRun(ctx, run, tasks); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" || runs[0].Published != 2 || runs[0].Failed != 1 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].StartedAt.IsZero() {
		t.Fatal("started_at not round-tripped")
	}

	rows, err := store.RunTasks(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunTasks: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[2].Phase != "validate" || rows[2].ErrorMessage != "missing source" {
		t.Fatalf("failure row = %+v", rows[2])
	}
	if rows[0].Phase != "" {
		t.Fatalf("null phase should scan empty, got %q", rows[0].Phase)
	}
}

func TestRecentRunsOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		run := Run{
			ID:         id,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + 10*time.Second),
		}
		if err := store.SaveRun(ctx, run, nil); err != nil {
			t.Fatalf("SaveRun %s: %v", id, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("runs = %+v", runs)
	}
}

func TestSaveRunRejectsEmptyID(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveRun(context.Background(), Run{}, nil); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.PublishDir = filepath.Join(base, "publish")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")

	first, err := Open(&cfg)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	_ = first.Close()

	second, err := Open(&cfg)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	_ = second.Close()
}
