// Package asana is a thin client for the subset of the Asana REST API that
// the mailer needs: project metadata, a project's tasks, and per-task stories.
// Every call is a single synchronous request/response; any transport or API
// error is returned to the caller and treated as fatal for the run.
package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Asana REST API root.
const DefaultBaseURL = "https://app.asana.com/api/1.0"

// DefaultTimeout bounds each individual API request.
const DefaultTimeout = 30 * time.Second

// Config holds client construction parameters. Token is required; the rest
// fall back to defaults.
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client talks to the Asana API with bearer-token auth.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     *slog.Logger
}

// New creates a client from cfg, applying defaults for unset fields.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// APIError is a non-2xx response from Asana.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("asana API error: status %d: %s", e.StatusCode, e.Body)
}

// envelope is the standard Asana response wrapper.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	NextPage *nextPage       `json:"next_page"`
}

type nextPage struct {
	Offset string `json:"offset"`
}

// GetProject fetches project metadata by gid.
func (c *Client) GetProject(ctx context.Context, projectGID string) (*Project, error) {
	c.log.Info("fetching project metadata", "project", projectGID)

	env, err := c.get(ctx, "/projects/"+projectGID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", projectGID, err)
	}

	var p Project
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", projectGID, err)
	}
	return &p, nil
}

// GetTasks fetches the full ordered task list for a project. completedSince
// is passed through to the API: an RFC3339 cutoff retains tasks completed
// after it, and the sentinel "now" retains only incomplete tasks.
// Pagination is followed transparently; the returned order is the project's
// task order.
func (c *Client) GetTasks(ctx context.Context, projectGID, completedSince string) ([]Task, error) {
	c.log.Info("fetching project tasks", "project", projectGID, "completed_since", completedSince)

	params := url.Values{}
	params.Set("completed_since", completedSince)
	params.Set("opt_expand", ".")
	params.Set("limit", "100")

	var tasks []Task
	for {
		env, err := c.get(ctx, "/projects/"+projectGID+"/tasks", params)
		if err != nil {
			return nil, fmt.Errorf("fetch tasks for project %s: %w", projectGID, err)
		}

		var page []Task
		if err := json.Unmarshal(env.Data, &page); err != nil {
			return nil, fmt.Errorf("decode tasks for project %s: %w", projectGID, err)
		}
		tasks = append(tasks, page...)

		if env.NextPage == nil || env.NextPage.Offset == "" {
			break
		}
		params.Set("offset", env.NextPage.Offset)
	}
	return tasks, nil
}

// GetStories fetches the ordered activity stories for a task.
func (c *Client) GetStories(ctx context.Context, taskGID string) ([]Story, error) {
	c.log.Debug("fetching task stories", "task", taskGID)

	env, err := c.get(ctx, "/tasks/"+taskGID+"/stories", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch stories for task %s: %w", taskGID, err)
	}

	var stories []Story
	if err := json.Unmarshal(env.Data, &stories); err != nil {
		return nil, fmt.Errorf("decode stories for task %s: %w", taskGID, err)
	}
	return stories, nil
}

// get performs one authenticated GET and decodes the response envelope.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*envelope, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	return &env, nil
}
