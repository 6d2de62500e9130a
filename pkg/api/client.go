// Package api provides a Go SDK for the SMM-Optimize HTTP API. Requests go
// out through the session guard's HTTP client, so token refresh is handled
// below this layer; the SDK only ever sees a healthy session or
// auth.ErrUnauthenticated.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AweemRizwan/smm-optimize-sub001/internal/auth"
	"github.com/AweemRizwan/smm-optimize-sub001/internal/telemetry"
	"github.com/AweemRizwan/smm-optimize-sub001/internal/workflow"
	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

// TaskCache is the optional local task cache consulted when the server is
// unreachable. *cache.Store satisfies it.
type TaskCache interface {
	PutTasks(ctx context.Context, clientID int64, tasks []models.Task) error
	GetTasks(ctx context.Context, clientID int64) (tasks []models.Task, fetchedAt time.Time, ok bool, err error)
}

// APIError is a non-2xx response from a business endpoint. It is surfaced to
// the caller unchanged and never retried.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("api %s %s: status %d", e.Method, e.Path, e.Status)
}

// Client calls the SMM-Optimize HTTP API. It is safe for concurrent use.
type Client struct {
	BaseURL    string       // e.g. "https://api.smm-optimize.com"
	HTTPClient *http.Client // usually the session guard's client; nil uses http.DefaultClient
	Cache      TaskCache    // optional; nil disables the offline fallback
	Log        zerolog.Logger
}

// New returns a client for the given base URL dispatching through hc.
func New(baseURL string, hc *http.Client) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: hc, Log: zerolog.Nop()}
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, err
	}
	telemetry.RecordAPIRequest(ctx, method, path, resp.StatusCode)
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Error
		if msg == "" {
			msg = errBody.Detail
		}
		return &APIError{Status: resp.StatusCode, Method: method, Path: path, Message: msg}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Login exchanges credentials for a token pair and the user record. The call
// bypasses the session guard's bearer/refresh handling.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.doJSON(auth.WithoutAuth(ctx), http.MethodPost, "/api/auth/login/",
		map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	err := c.doJSON(ctx, http.MethodGet, "/api/users/me/", nil, &out)
	return &out, err
}

// ListClients returns all clients visible to the user.
func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	err := c.doJSON(ctx, http.MethodGet, "/api/clients/", nil, &out)
	return out, err
}

// GetClient returns one client by id.
func (c *Client) GetClient(ctx context.Context, clientID int64) (*models.Client, error) {
	var out models.Client
	err := c.doJSON(ctx, http.MethodGet, "/api/clients/"+strconv.FormatInt(clientID, 10)+"/", nil, &out)
	return &out, err
}

// ListTeams returns all teams.
func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	var out []models.Team
	err := c.doJSON(ctx, http.MethodGet, "/api/teams/", nil, &out)
	return out, err
}

// ListTasks returns a client's tasks. On success the local cache is updated;
// when the server is unreachable and a cache is configured, the cached list
// is returned with fromCache=true.
func (c *Client) ListTasks(ctx context.Context, clientID int64) (tasks []models.Task, fromCache bool, err error) {
	err = c.doJSON(ctx, http.MethodGet, "/api/clients/"+strconv.FormatInt(clientID, 10)+"/tasks/", nil, &tasks)
	if err == nil {
		if c.Cache != nil {
			if cerr := c.Cache.PutTasks(ctx, clientID, tasks); cerr != nil {
				c.Log.Warn().Err(cerr).Int64("client_id", clientID).Msg("task cache update failed")
			}
		}
		return tasks, false, nil
	}

	// APIErrors (including auth failures resolved below us) pass through;
	// only transport-level failures fall back to the cache.
	var apiErr *APIError
	if c.Cache == nil || errors.As(err, &apiErr) {
		return nil, false, err
	}
	cached, fetchedAt, ok, cerr := c.Cache.GetTasks(ctx, clientID)
	if cerr != nil || !ok {
		return nil, false, err
	}
	c.Log.Info().Int64("client_id", clientID).Time("fetched_at", fetchedAt).Msg("serving tasks from local cache")
	return cached, true, nil
}

// GetTask returns one task by id.
func (c *Client) GetTask(ctx context.Context, taskID int64) (*models.Task, error) {
	var out models.Task
	err := c.doJSON(ctx, http.MethodGet, "/api/tasks/"+strconv.FormatInt(taskID, 10)+"/", nil, &out)
	return &out, err
}

// TransitionTask validates a transition locally and submits it. A missing
// required side-selection is rejected with *workflow.MissingSelectionError
// before any network call. The server decides the task's next stage and
// returns the updated task.
func (c *Client) TransitionTask(ctx context.Context, task models.Task, role models.Role, req models.TransitionRequest) (*models.Task, error) {
	stage, _ := workflow.ResolveStage(task.TaskType)
	sel := workflow.Selection{InvoiceID: req.InvoiceID, CalendarID: req.CalendarID, MeetingID: req.MeetingID}
	if err := workflow.ValidateTransition(stage, role, sel); err != nil {
		return nil, err
	}
	req.TaskID = task.TaskID

	var out models.Task
	err := c.doJSON(ctx, http.MethodPost, "/api/tasks/"+strconv.FormatInt(task.TaskID, 10)+"/transition/", req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMeetings returns a client's meetings.
func (c *Client) ListMeetings(ctx context.Context, clientID int64) ([]models.Meeting, error) {
	var out []models.Meeting
	err := c.doJSON(ctx, http.MethodGet, "/api/clients/"+strconv.FormatInt(clientID, 10)+"/meetings/", nil, &out)
	return out, err
}

// ListCalendar returns a client's content calendar for a month (YYYY-MM; empty
// means the server's current month).
func (c *Client) ListCalendar(ctx context.Context, clientID int64, month string) ([]models.CalendarEntry, error) {
	path := "/api/clients/" + strconv.FormatInt(clientID, 10) + "/calendar/"
	if month != "" {
		path += "?month=" + month
	}
	var out []models.CalendarEntry
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// ListNotes returns a client's notes.
func (c *Client) ListNotes(ctx context.Context, clientID int64) ([]models.Note, error) {
	var out []models.Note
	err := c.doJSON(ctx, http.MethodGet, "/api/clients/"+strconv.FormatInt(clientID, 10)+"/notes/", nil, &out)
	return out, err
}

// CreateNote attaches a note to a client and returns it.
func (c *Client) CreateNote(ctx context.Context, clientID int64, body string) (*models.Note, error) {
	var out models.Note
	err := c.doJSON(ctx, http.MethodPost, "/api/clients/"+strconv.FormatInt(clientID, 10)+"/notes/",
		map[string]string{"body": body}, &out)
	return &out, err
}

// ListInvoices returns a client's invoices (for the invoice-verification
// side-selection).
func (c *Client) ListInvoices(ctx context.Context, clientID int64) ([]models.Invoice, error) {
	var out []models.Invoice
	err := c.doJSON(ctx, http.MethodGet, "/api/clients/"+strconv.FormatInt(clientID, 10)+"/invoices/", nil, &out)
	return out, err
}
