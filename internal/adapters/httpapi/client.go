package httpapi

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

	"github.com/google/uuid"

	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/logx"
)

const requestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a rejected response is kept for the error.
const maxErrorBody = 512

// Client talks to the experiment server over HTTP. Every failure is returned
// as a *domain.RequestError.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for the server at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("experiment server URL not configured")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type notesRequest struct {
	ProjectName string   `json:"projectName"`
	Experiment  string   `json:"experiment"`
	Notes       []string `json:"notes"`
}

type deleteRequest struct {
	ProjectName string   `json:"projectName"`
	Experiments []string `json:"experiments"`
}

// ListProjects returns every project known to the server.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	const op = "list projects"
	var projects []domain.Project
	if err := c.getJSON(ctx, op, "/getter/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ListExperiments returns the project's experiment ids, newest first.
func (c *Client) ListExperiments(ctx context.Context, project string) ([]string, error) {
	const op = "list experiments"
	var ids []string
	if err := c.getJSON(ctx, op, "/getter/experiments", projectQuery(project, ""), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetExperiment fetches one experiment summary.
func (c *Client) GetExperiment(ctx context.Context, project, experimentID string) (*domain.ExperimentSummary, error) {
	const op = "get experiment"
	var summary domain.ExperimentSummary
	if err := c.getJSON(ctx, op, "/getter/experiment", projectQuery(project, experimentID), &summary); err != nil {
		return nil, err
	}
	if summary.ExecutionInfo == nil {
		return nil, &domain.RequestError{Op: op, Kind: domain.KindMalformedResponse, Err: errors.New("missing execution_info")}
	}
	summary.ID = experimentID
	return &summary, nil
}

// GetNotes returns the experiment's notes, one entry per line. The server
// joins notes with newlines, so an empty body reads back as no notes (even
// when a single empty note was saved) and a note containing a newline reads
// back as several.
func (c *Client) GetNotes(ctx context.Context, project, experimentID string) ([]string, error) {
	const op = "get notes"
	resp, err := c.do(ctx, op, http.MethodGet, "/notes", projectQuery(project, experimentID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RequestError{Op: op, Kind: domain.KindNetworkFailure, Err: err}
	}
	if len(body) == 0 {
		return nil, nil
	}
	return strings.Split(string(body), "\n"), nil
}

// SaveNotes replaces the experiment's notes.
func (c *Client) SaveNotes(ctx context.Context, project, experimentID string, notes []string) error {
	if notes == nil {
		notes = []string{}
	}
	body := notesRequest{ProjectName: project, Experiment: experimentID, Notes: notes}
	return c.post(ctx, "save notes", "/notes", body)
}

// DeleteExperiments removes the given experiments from the project.
func (c *Client) DeleteExperiments(ctx context.Context, project string, experimentIDs []string) error {
	body := deleteRequest{ProjectName: project, Experiments: experimentIDs}
	return c.post(ctx, "delete experiments", "/delete", body)
}

// DownloadURL is the address of the experiment archive.
func (c *Client) DownloadURL(project, experimentID string) string {
	return c.url("/download", projectQuery(project, experimentID))
}

// Download streams the experiment archive into w.
func (c *Client) Download(ctx context.Context, project, experimentID string, w io.Writer) (int64, error) {
	const op = "download experiment"
	resp, err := c.do(ctx, op, http.MethodGet, "/download", projectQuery(project, experimentID), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &domain.RequestError{Op: op, Kind: domain.KindNetworkFailure, Err: err}
	}
	return n, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RequestError{Op: op, Kind: domain.KindMalformedResponse, Err: err}
	}
	return nil
}

// post sends a JSON body. The response body carries no meaning and is discarded.
func (c *Client) post(ctx context.Context, op, path string, body any) error {
	resp, err := c.do(ctx, op, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do sends a request and returns the response only for 2xx statuses.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logx.Ctx(ctx).With("op", op, "request_id", requestID)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "err", err)
		return nil, &domain.RequestError{Op: op, Kind: domain.KindNetworkFailure, Err: err}
	}
	log.Debug("request completed", "status", resp.StatusCode, "elapsed", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var cause error
		if msg := strings.TrimSpace(string(snippet)); msg != "" {
			cause = errors.New(msg)
		}
		return nil, &domain.RequestError{Op: op, Kind: domain.KindServerRejected, Status: resp.StatusCode, Err: cause}
	}
	return resp, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func projectQuery(project, experimentID string) url.Values {
	q := url.Values{}
	q.Set("project_name", project)
	if experimentID != "" {
		q.Set("experiment", experimentID)
	}
	return q
}
