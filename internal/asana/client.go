package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://app.asana.com/api/1.0"
	pageSize       = 100
	taskFields     = "name,resource_subtype,start_on,due_on,completed,assignee.name,permalink_url," +
		"custom_fields.name,custom_fields.text_value"
)

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	cache      *TaskCache
	logger     *slog.Logger
	backoff    func(attempt int) time.Duration
}

func NewClient(token string, baseURL string, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   NewTaskCache(cacheTTL),
		logger:  logger,
		backoff: backoff,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("asana API request", "method", method, "path", path)

	var resp *http.Response
	maxRetries := 3
	requestStart := time.Now()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err = c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries || ctx.Err() != nil {
				c.logger.Error("API request transport error", "method", method, "path", path, "error", err, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("sending request: %w", err)
			}
			c.logger.Debug("API request transport error, retrying", "method", method, "path", path, "attempt", attempt+1, "error", err)
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				c.logger.Error("API request failed after retries", "method", method, "path", path, "status", resp.StatusCode, "attempts", maxRetries+1, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("API returned status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.logger.Debug("API request retryable error", "method", method, "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("asana API response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("API request failed", "method", method, "path", path, "status", resp.StatusCode, "response", truncate(string(respBody), 200))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, errorMessage(respBody))
	}

	return respBody, nil
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.backoff(attempt)):
		return nil
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func errorMessage(body []byte) string {
	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return truncate(string(body), 200)
	}
	msgs := make([]string, len(payload.Errors))
	for i, e := range payload.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

type page struct {
	Data     json.RawMessage `json:"data"`
	NextPage *struct {
		Offset string `json:"offset"`
	} `json:"next_page"`
}

// getAll follows offset pagination and hands each page's data to fn.
func (c *Client) getAll(ctx context.Context, path string, params url.Values, fn func(data json.RawMessage) error) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("limit", fmt.Sprint(pageSize))

	for {
		data, err := c.doRequest(ctx, http.MethodGet, path+"?"+params.Encode())
		if err != nil {
			return err
		}

		var p page
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parsing page: %w", err)
		}
		if err := fn(p.Data); err != nil {
			return err
		}

		if p.NextPage == nil || p.NextPage.Offset == "" {
			return nil
		}
		params.Set("offset", p.NextPage.Offset)
	}
}

func (c *Client) GetWorkspaces(ctx context.Context) ([]Workspace, error) {
	var all []Workspace
	err := c.getAll(ctx, "/workspaces", nil, func(data json.RawMessage) error {
		var ws []Workspace
		if err := json.Unmarshal(data, &ws); err != nil {
			return fmt.Errorf("parsing workspaces response: %w", err)
		}
		all = append(all, ws...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting workspaces: %w", err)
	}
	return all, nil
}

// FindWorkspace returns the ID of the workspace with the given name.
func (c *Client) FindWorkspace(ctx context.Context, name string) (string, error) {
	workspaces, err := c.GetWorkspaces(ctx)
	if err != nil {
		return "", err
	}
	for _, ws := range workspaces {
		if ws.Name == name {
			return ws.GID, nil
		}
	}
	return "", fmt.Errorf("workspace %q not found", name)
}

func (c *Client) GetProjects(ctx context.Context, workspaceID string) ([]Project, error) {
	if workspaceID == "" {
		return nil, fmt.Errorf("workspace ID is empty")
	}

	params := url.Values{"workspace": {workspaceID}, "archived": {"false"}}
	var all []Project
	err := c.getAll(ctx, "/projects", params, func(data json.RawMessage) error {
		var projects []Project
		if err := json.Unmarshal(data, &projects); err != nil {
			return fmt.Errorf("parsing projects response: %w", err)
		}
		all = append(all, projects...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting projects: %w", err)
	}
	return all, nil
}

// FindProject returns the ID of the non-archived project with the given name.
func (c *Client) FindProject(ctx context.Context, workspaceID, name string) (string, error) {
	projects, err := c.GetProjects(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	for _, p := range projects {
		if p.Name == name {
			return p.GID, nil
		}
	}
	return "", fmt.Errorf("project %q not found", name)
}

// GetTasks returns the default tasks of a project. Milestones and approvals
// are skipped.
func (c *Client) GetTasks(ctx context.Context, projectID string) ([]Task, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project ID is empty")
	}
	if cached := c.cache.Get(projectID); cached != nil {
		c.logger.Debug("asana tasks served from cache", "project", projectID, "count", len(cached))
		return cached, nil
	}

	params := url.Values{"opt_fields": {taskFields}}
	tasks := []Task{}
	err := c.getAll(ctx, "/projects/"+url.PathEscape(projectID)+"/tasks", params, func(data json.RawMessage) error {
		var batch []Task
		if err := json.Unmarshal(data, &batch); err != nil {
			return fmt.Errorf("parsing tasks response: %w", err)
		}
		for _, t := range batch {
			if t.ResourceSubtype != "" && t.ResourceSubtype != "default_task" {
				continue
			}
			tasks = append(tasks, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting tasks: %w", err)
	}

	c.cache.Set(projectID, tasks)
	return tasks, nil
}

func (c *Client) InvalidateCache() {
	c.cache.Invalidate()
}
