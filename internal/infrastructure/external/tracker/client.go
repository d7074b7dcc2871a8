package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Issue is a tracker work item
type Issue struct {
	Key         string `json:"key"`
	ProjectKey  string `json:"project_key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// Project is a tracker project
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Client is the contract for the issue tracker API
type Client interface {
	SearchIssues(ctx context.Context, token, projectKey, titleQuery string) ([]Issue, error)
	CreateIssue(ctx context.Context, token string, issue Issue) (*Issue, error)
	UpdateIssue(ctx context.Context, token, issueKey, description string) error
	ListProjects(ctx context.Context, token string) ([]Project, error)
}

// HTTPClient talks to the real issue tracker
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a tracker client
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchIssues finds issues in a project whose title matches the query
func (c *HTTPClient) SearchIssues(ctx context.Context, token, projectKey, titleQuery string) ([]Issue, error) {
	endpoint := fmt.Sprintf("%s/api/issues?project=%s&title=%s",
		c.baseURL, url.QueryEscape(projectKey), url.QueryEscape(titleQuery))

	var out struct {
		Issues []Issue `json:"issues"`
	}
	if err := c.do(ctx, token, "GET", endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out.Issues, nil
}

// CreateIssue creates a new issue and returns it with its assigned key
func (c *HTTPClient) CreateIssue(ctx context.Context, token string, issue Issue) (*Issue, error) {
	var created Issue
	if err := c.do(ctx, token, "POST", c.baseURL+"/api/issues", issue, &created); err != nil {
		return nil, err
	}
	if created.Key == "" {
		return nil, fmt.Errorf("tracker returned issue without key")
	}
	return &created, nil
}

// UpdateIssue replaces the description of an existing issue
func (c *HTTPClient) UpdateIssue(ctx context.Context, token, issueKey, description string) error {
	body := map[string]string{"description": description}
	return c.do(ctx, token, "PATCH", c.baseURL+"/api/issues/"+url.PathEscape(issueKey), body, nil)
}

// ListProjects lists the projects visible to the credential
func (c *HTTPClient) ListProjects(ctx context.Context, token string) ([]Project, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	if err := c.do(ctx, token, "GET", c.baseURL+"/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *HTTPClient) do(ctx context.Context, token, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tracker returned status %d: %s", resp.StatusCode, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode tracker response: %w", err)
		}
	}
	return nil
}
