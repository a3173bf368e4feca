// Package summary computes end-of-session statistics from the final set logs.
package summary

import (
	"fmt"

	"github.com/claude/repsession/internal/models"
)

// Summary is a read-only projection of a finished session.
type Summary struct {
	DurationSeconds    int     `json:"duration_seconds"`
	Duration           string  `json:"duration"`
	ExercisesCompleted int     `json:"exercises_completed"`
	ExercisesTotal     int     `json:"exercises_total"`
	SetsLogged         int     `json:"sets_logged"`
	TotalVolume        float64 `json:"total_volume"`
}

// Compute derives the summary. Only exercises in the list are counted.
func Compute(exercises []models.Exercise, p models.Progress, elapsedSeconds int) Summary {
	s := Summary{
		DurationSeconds: elapsedSeconds,
		Duration:        FormatDuration(elapsedSeconds),
		ExercisesTotal:  len(exercises),
	}

	for _, ex := range exercises {
		sets := p[ex.ID]
		allDone := len(sets) > 0
		for _, set := range sets {
			if !set.Done {
				allDone = false
				continue
			}
			s.SetsLogged++
			s.TotalVolume += set.WeightValue() * set.RepsValue()
		}
		if allDone {
			s.ExercisesCompleted++
		}
	}
	return s
}

// FormatDuration renders seconds as H:MM:SS from one hour up, MM:SS below.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

// ExercisesRatio renders "completed/total".
func (s Summary) ExercisesRatio() string {
	return fmt.Sprintf("%d/%d", s.ExercisesCompleted, s.ExercisesTotal)
}
