package progress

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/repsession/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func dayExercises() []models.Exercise {
	return []models.Exercise{
		{ID: "bench", Name: "Bench Press", TargetSets: 3, TargetReps: 8, RestSeconds: 90},
		{ID: "row", Name: "Barbell Row", TargetSets: 2, TargetReps: 10, RestSeconds: 60},
	}
}

// TestSaveLoadRoundTrip verifies a saved mapping loads back identically.
func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := models.Seed(dayExercises())
	p, _ = p.WithWeight("bench", 0, "100")
	p, _ = p.WithDone("bench", 0)
	p = p.WithAppendedSet(dayExercises()[1])

	if err := s.Save(ctx, "s-1", p); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Load(ctx, "s-1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("snapshot not found")
	}
	if got["bench"][0] != (models.SetLog{SetIdx: 0, Weight: "100", Reps: "8", Done: true}) {
		t.Errorf("bench[0] = %+v", got["bench"][0])
	}
	if len(got["row"]) != 3 {
		t.Errorf("row sets = %d, want 3", len(got["row"]))
	}
}

// TestSaveOverwrites verifies Save replaces the previous snapshot entirely.
func TestSaveOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := models.Seed(dayExercises())
	if err := s.Save(ctx, "s-1", first); err != nil {
		t.Fatal(err)
	}
	second := models.Progress{"bench": {{SetIdx: 0, Reps: "5"}}}
	if err := s.Save(ctx, "s-1", second); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Load(ctx, "s-1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if _, found := got["row"]; found {
		t.Error("row still present after overwrite")
	}
	if len(got["bench"]) != 1 {
		t.Errorf("bench sets = %d, want 1", len(got["bench"]))
	}
}

// TestLoadMissing verifies an unknown session is absent, not an error.
func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Load(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("ok = true for missing snapshot")
	}
}

// TestLoadCorrupt verifies unparseable or foreign-version payloads are treated as absent.
func TestLoadCorrupt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	payloads := map[models.ID]string{
		"garbage": `{not json`,
		"v2":      `{"version":2,"session_id":"v2","sets":{"bench":[]}}`,
		"other":   `{"version":1,"session_id":"someone-else","sets":{"bench":[]}}`,
		"nosets":  `{"version":1,"session_id":"nosets"}`,
	}
	for id, payload := range payloads {
		if _, err := s.db.Exec(
			`INSERT INTO progress_snapshots (key, session_id, version, payload) VALUES (?, ?, 1, ?)`,
			Key(id), id.String(), payload,
		); err != nil {
			t.Fatal(err)
		}
	}

	for id := range payloads {
		_, ok, err := s.Load(ctx, id)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", id, err)
		}
		if ok {
			t.Errorf("%s: ok = true, want absent", id)
		}
	}
}

// TestClear verifies a cleared session loads as absent and other sessions are untouched.
func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := models.Seed(dayExercises())
	for _, id := range []models.ID{"s-1", "s-2"} {
		if err := s.Save(ctx, id, p); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Clear(ctx, "s-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx, "s-1"); err != nil {
		t.Errorf("second clear: %v", err)
	}

	if _, ok, _ := s.Load(ctx, "s-1"); ok {
		t.Error("s-1 still present after clear")
	}
	if _, ok, _ := s.Load(ctx, "s-2"); !ok {
		t.Error("s-2 missing after clearing s-1")
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].SessionID != "s-2" || infos[0].Version != SnapshotVersion {
		t.Errorf("list = %+v", infos)
	}
}

// TestReopen verifies snapshots survive closing and reopening the database.
func TestReopen(t *testing.T) {
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	s, err := Open(dir, log)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "s-1", models.Seed(dayExercises())); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir, log)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Load(ctx, "s-1"); err != nil || !ok {
		t.Errorf("after reopen: ok=%v err=%v", ok, err)
	}
}
