package progress

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/repsession/internal/models"
)

// SnapshotVersion is the payload format written by Save. Payloads with any
// other version are treated as absent.
const SnapshotVersion = 1

// KeyPrefix namespaces snapshot keys.
const KeyPrefix = "workout_progress_"

// Key returns the storage key for a session.
func Key(sessionID models.ID) string {
	return KeyPrefix + sessionID.String()
}

type envelope struct {
	Version   int             `json:"version"`
	SessionID models.ID       `json:"session_id"`
	SavedAt   time.Time       `json:"saved_at"`
	Sets      models.Progress `json:"sets"`
}

func encodeSnapshot(sessionID models.ID, p models.Progress, now time.Time) ([]byte, error) {
	data, err := json.Marshal(envelope{
		Version:   SnapshotVersion,
		SessionID: sessionID,
		SavedAt:   now.UTC(),
		Sets:      p,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(sessionID models.ID, data []byte) (models.Progress, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if env.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", env.Version, SnapshotVersion)
	}
	if env.SessionID != sessionID {
		return nil, fmt.Errorf("snapshot belongs to session %q", env.SessionID)
	}
	if env.Sets == nil {
		return nil, fmt.Errorf("snapshot has no sets")
	}
	return env.Sets, nil
}

// Reconcile applies the resume policy. A saved mapping is accepted when at
// least one of its keys names a current exercise. Accepted mappings keep
// their sets for current exercises, seed exercises they lack, and drop keys
// for exercises no longer in the day. Otherwise a fresh mapping is seeded.
func Reconcile(exercises []models.Exercise, saved models.Progress, ok bool) (models.Progress, bool) {
	if !ok || !overlaps(exercises, saved) {
		return models.Seed(exercises), false
	}

	out := make(models.Progress, len(exercises))
	for _, ex := range exercises {
		if sets, found := saved[ex.ID]; found {
			out[ex.ID] = reindex(sets)
			continue
		}
		out[ex.ID] = models.Seed([]models.Exercise{ex})[ex.ID]
	}
	return out, true
}

func overlaps(exercises []models.Exercise, saved models.Progress) bool {
	for _, ex := range exercises {
		if _, found := saved[ex.ID]; found {
			return true
		}
	}
	return false
}

// reindex copies sets, repairing SetIdx so it always matches position.
func reindex(sets []models.SetLog) []models.SetLog {
	out := make([]models.SetLog, len(sets))
	for i, s := range sets {
		s.SetIdx = i
		out[i] = s
	}
	return out
}
