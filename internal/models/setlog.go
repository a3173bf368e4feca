package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrSetIndex        = errors.New("set index out of range")
	ErrSetDone         = errors.New("set already done")
)

// SetLog is one performed or pending set. Weight and Reps hold what the user
// typed; use WeightValue and RepsValue for arithmetic.
type SetLog struct {
	SetIdx int    `json:"setIdx"`
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
	Done   bool   `json:"done"`
}

// WeightValue parses Weight, treating empty or malformed input as zero.
func (s SetLog) WeightValue() float64 {
	return parseNumber(s.Weight)
}

// RepsValue parses Reps, treating empty or malformed input as zero.
func (s SetLog) RepsValue() float64 {
	return parseNumber(s.Reps)
}

func parseNumber(v string) float64 {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// Progress maps exercise id to the ordered set logs recorded against it.
// The functions below never modify their receiver; they return a new mapping.
type Progress map[ID][]SetLog

// Seed builds the initial mapping: TargetSets pending sets per exercise with
// reps pre-filled from the target.
func Seed(exercises []Exercise) Progress {
	p := make(Progress, len(exercises))
	for _, ex := range exercises {
		p[ex.ID] = seedSets(ex)
	}
	return p
}

func seedSets(ex Exercise) []SetLog {
	n := max(ex.TargetSets, 0)
	sets := make([]SetLog, n)
	for i := range sets {
		sets[i] = newSet(i, ex)
	}
	return sets
}

func newSet(idx int, ex Exercise) SetLog {
	return SetLog{SetIdx: idx, Weight: "", Reps: strconv.Itoa(ex.TargetReps)}
}

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	out := make(Progress, len(p))
	for id, sets := range p {
		out[id] = append([]SetLog(nil), sets...)
	}
	return out
}

// Sets returns a copy of the sets for one exercise.
func (p Progress) Sets(id ID) []SetLog {
	return append([]SetLog(nil), p[id]...)
}

// DoneCount counts sets marked done across all exercises.
func (p Progress) DoneCount() int {
	n := 0
	for _, sets := range p {
		for _, s := range sets {
			if s.Done {
				n++
			}
		}
	}
	return n
}

// AnyDone reports whether at least one set is done.
func (p Progress) AnyDone() bool {
	for _, sets := range p {
		for _, s := range sets {
			if s.Done {
				return true
			}
		}
	}
	return false
}

// WithWeight returns a mapping with the weight of one pending set replaced.
func (p Progress) WithWeight(id ID, idx int, weight string) (Progress, error) {
	return p.withSet(id, idx, func(s *SetLog) error {
		if s.Done {
			return ErrSetDone
		}
		s.Weight = weight
		return nil
	})
}

// WithReps returns a mapping with the reps of one pending set replaced.
func (p Progress) WithReps(id ID, idx int, reps string) (Progress, error) {
	return p.withSet(id, idx, func(s *SetLog) error {
		if s.Done {
			return ErrSetDone
		}
		s.Reps = reps
		return nil
	})
}

// WithDone returns a mapping with one set marked done.
func (p Progress) WithDone(id ID, idx int) (Progress, error) {
	return p.withSet(id, idx, func(s *SetLog) error {
		if s.Done {
			return ErrSetDone
		}
		s.Done = true
		return nil
	})
}

// WithAppendedSet returns a mapping with one extra pending set for ex.
func (p Progress) WithAppendedSet(ex Exercise) Progress {
	out := p.Clone()
	sets := out[ex.ID]
	out[ex.ID] = append(sets, newSet(len(sets), ex))
	return out
}

func (p Progress) withSet(id ID, idx int, fn func(*SetLog) error) (Progress, error) {
	sets, ok := p[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, id)
	}
	if idx < 0 || idx >= len(sets) {
		return nil, fmt.Errorf("%w: exercise %s has %d sets, got %d", ErrSetIndex, id, len(sets), idx)
	}

	updated := append([]SetLog(nil), sets...)
	if err := fn(&updated[idx]); err != nil {
		return nil, fmt.Errorf("set %d of %s: %w", idx, id, err)
	}

	out := make(Progress, len(p))
	for k, v := range p {
		out[k] = v
	}
	out[id] = updated
	return out, nil
}
