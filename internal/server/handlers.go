package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/claude/repsession/internal/models"
	"github.com/claude/repsession/internal/tracker"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tr.State())
}

type updateSetRequest struct {
	Weight *string `json:"weight"`
	Reps   *string `json:"reps"`
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	exID, idx, ok := setParams(w, r)
	if !ok {
		return
	}
	var req updateSetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Weight == nil && req.Reps == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight or reps required"})
		return
	}

	if req.Weight != nil {
		if err := s.tr.UpdateWeight(r.Context(), exID, idx, *req.Weight); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Reps != nil {
		if err := s.tr.UpdateReps(r.Context(), exID, idx, *req.Reps); err != nil {
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.tr.State())
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	exID := models.ID(chi.URLParam(r, "exerciseID"))
	idx, err := s.tr.AddSet(r.Context(), exID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"index": idx, "state": s.tr.State()})
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	exID, idx, ok := setParams(w, r)
	if !ok {
		return
	}
	if err := s.tr.CompleteSet(r.Context(), exID, idx); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tr.State())
}

func (s *Server) handleSkipRest(w http.ResponseWriter, r *http.Request) {
	skipped := s.tr.SkipRest()
	writeJSON(w, http.StatusOK, map[string]any{"skipped": skipped, "state": s.tr.State()})
}

type navigateRequest struct {
	Index     *int   `json:"index"`
	Direction string `json:"direction"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var err error
	switch {
	case req.Index != nil:
		err = s.tr.Jump(*req.Index)
	case strings.EqualFold(req.Direction, "next"):
		_, err = s.tr.Next()
	case strings.EqualFold(req.Direction, "prev"):
		_, err = s.tr.Prev()
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index or direction (next|prev) required"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tr.State())
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	sum, err := s.tr.Finish(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type abandonRequest struct {
	Reason  string `json:"reason"`
	Confirm bool   `json:"confirm"`
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	var req abandonRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "abandon must be confirmed"})
		return
	}
	if err := s.tr.Abandon(r.Context(), req.Reason); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tr.State())
}

// writeError maps tracker and model errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ae *tracker.ActionError
	switch {
	case errors.Is(err, models.ErrUnknownExercise):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrSetIndex), errors.Is(err, tracker.ErrIndex):
		status = http.StatusBadRequest
	case errors.Is(err, tracker.ErrWrongPhase),
		errors.Is(err, tracker.ErrBusy),
		errors.Is(err, tracker.ErrClosed),
		errors.Is(err, tracker.ErrNothingLogged),
		errors.Is(err, models.ErrSetDone):
		status = http.StatusConflict
	case errors.As(err, &ae):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("session action failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func setParams(w http.ResponseWriter, r *http.Request) (models.ID, int, bool) {
	exID := models.ID(chi.URLParam(r, "exerciseID"))
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return "", 0, false
	}
	return exID, idx, true
}

// decodeBody reads an optional JSON body into v. An empty body leaves v zero.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
