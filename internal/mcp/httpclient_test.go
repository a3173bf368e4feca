package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/repsession/internal/summary"
	"github.com/claude/repsession/internal/tracker"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by "METHOD path". Verifies the HTTP client sends correct methods and paths.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

func TestGetState(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/session": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "k" {
				t.Errorf("X-API-Key = %q, want k", got)
			}
			writeTestJSON(t, w, tracker.State{Phase: tracker.PhaseRest, RestRemaining: 42})
		},
	})
	defer ts.Close()

	st, err := NewHTTPClient(ts.URL+"/", "k").GetState(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Phase != tracker.PhaseRest || st.RestRemaining != 42 {
		t.Errorf("state = %+v", st)
	}
}

// TestLogSetRemote verifies edits go out as PATCH before the done POST.
func TestLogSetRemote(t *testing.T) {
	var calls []string
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"PATCH /api/v1/exercises/ohp/sets/1": func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "patch")
			body, _ := io.ReadAll(r.Body)
			if got := strings.TrimSpace(string(body)); got != `{"reps":"6"}` {
				t.Errorf("patch body = %s", got)
			}
			writeTestJSON(t, w, tracker.State{Phase: tracker.PhaseWorkout})
		},
		"POST /api/v1/exercises/ohp/sets/1/done": func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "done")
			writeTestJSON(t, w, tracker.State{Phase: tracker.PhaseRest})
		},
	})
	defer ts.Close()

	reps := "6"
	st, err := NewHTTPClient(ts.URL, "").LogSet(context.Background(), "ohp", 1, SetUpdate{Reps: &reps, Done: true})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(calls, ",") != "patch,done" {
		t.Errorf("calls = %v", calls)
	}
	if st.Phase != tracker.PhaseRest {
		t.Errorf("phase = %s, want rest", st.Phase)
	}
}

func TestSkipAndFinishRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/rest/skip": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{"skipped": true})
		},
		"POST /api/v1/finish": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, summary.Summary{SetsLogged: 4, ExercisesCompleted: 1, ExercisesTotal: 2})
		},
	})
	defer ts.Close()

	c := NewHTTPClient(ts.URL, "")
	skipped, err := c.SkipRest(context.Background())
	if err != nil || !skipped {
		t.Errorf("skip = %v, %v", skipped, err)
	}
	sum, err := c.Finish(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.SetsLogged != 4 || sum.ExercisesRatio() != "1/2" {
		t.Errorf("summary = %+v", sum)
	}
}

// TestRemoteErrorMessage verifies the API's error text is surfaced.
func TestRemoteErrorMessage(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/finish": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"no sets logged"}`))
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, "").Finish(context.Background())
	if err == nil || !strings.Contains(err.Error(), "409: no sets logged") {
		t.Errorf("err = %v", err)
	}
}
