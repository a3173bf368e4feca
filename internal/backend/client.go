package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/repsession/internal/models"
	"github.com/google/uuid"
)

// ErrNoActiveProgram is returned by NextWorkoutDay when the user has no
// program configured.
var ErrNoActiveProgram = errors.New("no active program")

// StatusError is a non-2xx backend reply.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Code, e.Message)
}

// Client calls the fitness backend's workout endpoints.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client targeting baseURL. A zero timeout means 30s.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NextWorkoutDay returns the next scheduled day of the active program.
func (c *Client) NextWorkoutDay(ctx context.Context) (*models.WorkoutDay, error) {
	body, err := c.do(ctx, "next_day", http.MethodGet, "/api/v1/workouts/next-day", nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Code == http.StatusNotFound || se.Code == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %s", ErrNoActiveProgram, se.Message)
		}
		return nil, err
	}

	var day models.WorkoutDay
	if err := json.Unmarshal(body, &day); err != nil {
		return nil, fmt.Errorf("backend: decode next day: %w", err)
	}
	return &day, nil
}

// ActiveSession returns the user's in-progress session, or nil when there is none.
func (c *Client) ActiveSession(ctx context.Context) (*models.Session, error) {
	body, err := c.do(ctx, "active_session", http.MethodGet, "/api/v1/workouts/sessions/active", nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("backend: decode active session: %w", err)
	}
	if session.ID == "" {
		return nil, nil
	}
	return &session, nil
}

// StartSession creates a session for the given program day.
func (c *Client) StartSession(ctx context.Context, programID models.ID, dayNumber int) (*models.Session, error) {
	req := struct {
		ProgramID models.ID `json:"program_id"`
		DayNumber int       `json:"day_number"`
	}{programID, dayNumber}

	body, err := c.do(ctx, "start_session", http.MethodPost, "/api/v1/workouts/sessions", req)
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("backend: decode started session: %w", err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("backend: started session has no id")
	}
	return &session, nil
}

// CompleteSession reports a finished session.
func (c *Client) CompleteSession(ctx context.Context, sessionID models.ID) error {
	path := "/api/v1/workouts/sessions/" + url.PathEscape(sessionID.String()) + "/complete"
	_, err := c.do(ctx, "complete_session", http.MethodPost, path, struct{}{})
	return err
}

// AbandonSession reports an abandoned session with an optional reason.
func (c *Client) AbandonSession(ctx context.Context, sessionID models.ID, reason string) error {
	req := struct {
		Reason string `json:"reason,omitempty"`
	}{strings.TrimSpace(reason)}

	path := "/api/v1/workouts/sessions/" + url.PathEscape(sessionID.String()) + "/abandon"
	_, err := c.do(ctx, "abandon_session", http.MethodPost, path, req)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("backend: marshal %s: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: read %s body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, Code: resp.StatusCode, Message: errorMessage(body)}
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return body, nil
}

// errorMessage pulls the human-readable part out of an error body. The
// backend uses either {"detail": ...} or {"error": ...}.
func errorMessage(body []byte) string {
	var e struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if s, ok := e.Detail.(string); ok && s != "" {
			return s
		}
		if e.Error != "" {
			return e.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
