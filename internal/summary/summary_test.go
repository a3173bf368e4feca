package summary

import (
	"testing"

	"github.com/claude/repsession/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{61, "01:01"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3723, "1:02:03"},
		{36000, "10:00:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestVolumeTreatsEmptyAsZero verifies (100 x 10) + ("" x 8) = 1000.
func TestVolumeTreatsEmptyAsZero(t *testing.T) {
	exercises := []models.Exercise{{ID: "bench", TargetSets: 2, TargetReps: 10}}
	p := models.Progress{
		"bench": {
			{SetIdx: 0, Weight: "100", Reps: "10", Done: true},
			{SetIdx: 1, Weight: "", Reps: "8", Done: true},
		},
	}

	s := Compute(exercises, p, 0)
	if s.TotalVolume != 1000 {
		t.Errorf("volume = %v, want 1000", s.TotalVolume)
	}
	if s.SetsLogged != 2 {
		t.Errorf("sets = %d, want 2", s.SetsLogged)
	}
}

// TestCompute verifies completion counts include appended sets and ignore pending volume.
func TestCompute(t *testing.T) {
	exercises := []models.Exercise{
		{ID: "squat", TargetSets: 2},
		{ID: "press", TargetSets: 2},
		{ID: "curl", TargetSets: 0},
	}
	p := models.Progress{
		"squat": {
			{SetIdx: 0, Weight: "120", Reps: "5", Done: true},
			{SetIdx: 1, Weight: "120", Reps: "5", Done: true},
			{SetIdx: 2, Weight: "100", Reps: "8", Done: true},
		},
		"press": {
			{SetIdx: 0, Weight: "50", Reps: "8", Done: true},
			{SetIdx: 1, Weight: "50", Reps: "8", Done: false},
		},
		"curl": {},
	}

	s := Compute(exercises, p, 3725)

	if s.ExercisesCompleted != 1 || s.ExercisesTotal != 3 {
		t.Errorf("exercises = %s, want 1/3", s.ExercisesRatio())
	}
	if s.SetsLogged != 4 {
		t.Errorf("sets = %d, want 4", s.SetsLogged)
	}
	if want := 120.0*5 + 120*5 + 100*8 + 50*8; s.TotalVolume != want {
		t.Errorf("volume = %v, want %v", s.TotalVolume, want)
	}
	if s.Duration != "1:02:05" || s.DurationSeconds != 3725 {
		t.Errorf("duration = %q (%d)", s.Duration, s.DurationSeconds)
	}
}

// TestComputeIdempotent verifies recomputing from the same state gives the same result.
func TestComputeIdempotent(t *testing.T) {
	exercises := []models.Exercise{{ID: "row", TargetSets: 1}}
	p := models.Progress{"row": {{SetIdx: 0, Weight: "60", Reps: "10", Done: true}}}

	a := Compute(exercises, p, 100)
	b := Compute(exercises, p, 100)
	if a != b {
		t.Errorf("first %+v, second %+v", a, b)
	}
}
