package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is an opaque backend identifier. The backend may send it as a JSON
// string or number; it is always handled as a string on this side.
type ID string

// UnmarshalJSON accepts both `"abc"` and `42`.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Session is one in-progress workout attempt, as tracked by the backend.
type Session struct {
	ID          ID         `json:"id"`
	ProgramID   ID         `json:"program_id"`
	ProgramName string     `json:"program_name"`
	DayNumber   int        `json:"day_number"`
	DayName     string     `json:"day_name"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// DisplayDayName returns the custom day label, or "Day N" when the program
// does not name its days.
func (s Session) DisplayDayName() string {
	if s.DayName != "" {
		return s.DayName
	}
	return fmt.Sprintf("Day %d", s.DayNumber)
}

// WorkoutDay is the backend's answer to "what is the next scheduled day".
type WorkoutDay struct {
	ProgramID   ID         `json:"program_id"`
	ProgramName string     `json:"program_name"`
	DayNumber   int        `json:"day_number"`
	DayName     string     `json:"day_name"`
	Exercises   []Exercise `json:"exercises"`
}

// Exercise is a read-only unit of work within a day.
type Exercise struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	TargetSets  int    `json:"target_sets"`
	TargetReps  int    `json:"target_reps"`
	RestSeconds int    `json:"rest_seconds"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	Area        string `json:"area,omitempty"`
}

// FindExercise returns the position of the exercise with the given id, or -1.
func FindExercise(exercises []Exercise, id ID) int {
	for i, ex := range exercises {
		if ex.ID == id {
			return i
		}
	}
	return -1
}
