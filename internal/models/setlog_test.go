package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func benchDay() []Exercise {
	return []Exercise{
		{ID: "bench", Name: "Bench Press", TargetSets: 3, TargetReps: 8, RestSeconds: 90},
		{ID: "row", Name: "Barbell Row", TargetSets: 2, TargetReps: 10, RestSeconds: 60},
	}
}

// TestSeed verifies the initial mapping has TargetSets pending sets per exercise
// with reps pre-filled and weight empty.
func TestSeed(t *testing.T) {
	p := Seed(benchDay())

	if len(p) != 2 {
		t.Fatalf("got %d exercises, want 2", len(p))
	}
	bench := p["bench"]
	if len(bench) != 3 {
		t.Fatalf("bench sets = %d, want 3", len(bench))
	}
	for i, s := range bench {
		if s.SetIdx != i {
			t.Errorf("set %d: SetIdx = %d", i, s.SetIdx)
		}
		if s.Reps != "8" {
			t.Errorf("set %d: reps = %q, want %q", i, s.Reps, "8")
		}
		if s.Weight != "" {
			t.Errorf("set %d: weight = %q, want empty", i, s.Weight)
		}
		if s.Done {
			t.Errorf("set %d: done = true", i)
		}
	}
}

// TestUpdatesAreCopyOnWrite verifies update functions leave the input mapping untouched.
func TestUpdatesAreCopyOnWrite(t *testing.T) {
	orig := Seed(benchDay())

	updated, err := orig.WithWeight("bench", 0, "100")
	if err != nil {
		t.Fatal(err)
	}
	updated, err = updated.WithDone("bench", 0)
	if err != nil {
		t.Fatal(err)
	}
	updated = updated.WithAppendedSet(benchDay()[1])

	if orig["bench"][0].Weight != "" || orig["bench"][0].Done {
		t.Errorf("original bench set mutated: %+v", orig["bench"][0])
	}
	if len(orig["row"]) != 2 {
		t.Errorf("original row sets = %d, want 2", len(orig["row"]))
	}
	if got := updated["bench"][0]; got.Weight != "100" || !got.Done {
		t.Errorf("updated bench set = %+v", got)
	}
	if len(updated["row"]) != 3 {
		t.Errorf("updated row sets = %d, want 3", len(updated["row"]))
	}
	if got := updated["row"][2]; got.SetIdx != 2 || got.Reps != "10" || got.Weight != "" || got.Done {
		t.Errorf("appended set = %+v", got)
	}
}

// TestDoneSetIsImmutable verifies weight, reps and done cannot change once a set is done.
func TestDoneSetIsImmutable(t *testing.T) {
	p, err := Seed(benchDay()).WithDone("bench", 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.WithWeight("bench", 1, "50"); !errors.Is(err, ErrSetDone) {
		t.Errorf("WithWeight on done set: err = %v, want ErrSetDone", err)
	}
	if _, err := p.WithReps("bench", 1, "3"); !errors.Is(err, ErrSetDone) {
		t.Errorf("WithReps on done set: err = %v, want ErrSetDone", err)
	}
	if _, err := p.WithDone("bench", 1); !errors.Is(err, ErrSetDone) {
		t.Errorf("WithDone twice: err = %v, want ErrSetDone", err)
	}
}

func TestUpdateErrors(t *testing.T) {
	p := Seed(benchDay())

	if _, err := p.WithWeight("squat", 0, "1"); !errors.Is(err, ErrUnknownExercise) {
		t.Errorf("unknown exercise: err = %v", err)
	}
	if _, err := p.WithReps("bench", 3, "1"); !errors.Is(err, ErrSetIndex) {
		t.Errorf("index past end: err = %v", err)
	}
	if _, err := p.WithDone("bench", -1); !errors.Is(err, ErrSetIndex) {
		t.Errorf("negative index: err = %v", err)
	}
}

func TestDoneCount(t *testing.T) {
	p := Seed(benchDay())
	if p.AnyDone() {
		t.Error("fresh mapping reports AnyDone")
	}

	p, _ = p.WithDone("bench", 0)
	p, _ = p.WithDone("row", 1)

	if !p.AnyDone() {
		t.Error("AnyDone = false after marking sets")
	}
	if got := p.DoneCount(); got != 2 {
		t.Errorf("DoneCount = %d, want 2", got)
	}
}

func TestSetLogValues(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"100", 100},
		{" 62.5 ", 62.5},
		{"62,5", 62.5},
		{"", 0},
		{"heavy", 0},
	}
	for _, tt := range tests {
		s := SetLog{Weight: tt.in, Reps: tt.in}
		if got := s.WeightValue(); got != tt.want {
			t.Errorf("WeightValue(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got := s.RepsValue(); got != tt.want {
			t.Errorf("RepsValue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestIDUnmarshal verifies ids decode from both JSON strings and numbers.
func TestIDUnmarshal(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"sess-1","b":42,"c":null}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.A != "sess-1" {
		t.Errorf("a = %q", v.A)
	}
	if v.B != "42" {
		t.Errorf("b = %q", v.B)
	}
	if v.C != "" {
		t.Errorf("c = %q", v.C)
	}

	if err := json.Unmarshal([]byte(`{"a":true}`), &v); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestDisplayDayName(t *testing.T) {
	if got := (Session{DayNumber: 3}).DisplayDayName(); got != "Day 3" {
		t.Errorf("placeholder = %q, want %q", got, "Day 3")
	}
	if got := (Session{DayNumber: 3, DayName: "Push"}).DisplayDayName(); got != "Push" {
		t.Errorf("custom = %q, want %q", got, "Push")
	}
}
