// Package client is the typed REST consumer used by the terminal
// application. It never interprets tokens itself: it carries whatever the
// server issued and lets 401 responses drive re-authentication.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"internboard/internal/domain/model"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) { c.token = token }

// APIError is the decoded error body plus the HTTP status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		message := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			if errBody.Error != "" {
				message = errBody.Error
			} else if errBody.Message != "" {
				message = errBody.Message
			}
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, userName, email, password, role string) (*model.User, error) {
	var resp struct {
		User *model.User `json:"user"`
	}
	body := map[string]string{"userName": userName, "email": email, "password": password, "role": role}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	var resp struct {
		User  *model.User `json:"user"`
		Token string      `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &resp); err != nil {
		return nil, "", err
	}
	c.token = resp.Token
	return resp.User, resp.Token, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var resp struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

func (c *Client) CreateProject(ctx context.Context, name, description string) (*model.Project, error) {
	var resp struct {
		Project *model.Project `json:"project"`
	}
	body := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects", body, &resp); err != nil {
		return nil, err
	}
	return resp.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id, name, description string) (*model.Project, error) {
	var resp struct {
		Project *model.Project `json:"project"`
	}
	body := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, http.MethodPut, "/api/v1/projects/"+id, body, &resp); err != nil {
		return nil, err
	}
	return resp.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+id, nil, nil)
}

// TaskForm is the create/update payload for a task. Empty fields are
// omitted so updates stay partial.
type TaskForm struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	Priority       string `json:"priority,omitempty"`
	Deadline       string `json:"deadline,omitempty"`
	AssignedIntern string `json:"assignedIntern,omitempty"`
	Status         string `json:"status,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, projectID string, form TaskForm) (*model.Project, error) {
	var resp struct {
		Project *model.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+projectID+"/tasks", form, &resp); err != nil {
		return nil, err
	}
	return resp.Project, nil
}

func (c *Client) UpdateTask(ctx context.Context, projectID, taskID string, form TaskForm) (*model.Project, error) {
	var resp struct {
		Project *model.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/projects/"+projectID+"/tasks/"+taskID, form, &resp); err != nil {
		return nil, err
	}
	return resp.Project, nil
}

func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+projectID+"/tasks/"+taskID, nil, nil)
}

func (c *Client) Interns(ctx context.Context) ([]model.UserRef, error) {
	var resp struct {
		Interns []model.UserRef `json:"interns"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/interns", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Interns, nil
}

func (c *Client) MyTasks(ctx context.Context) ([]model.InternTask, error) {
	var resp struct {
		Tasks []model.InternTask `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/intern/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *Client) SetTaskStatus(ctx context.Context, taskID string, status model.TaskStatus) (*model.Task, error) {
	var resp struct {
		Task *model.Task `json:"task"`
	}
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/projects/intern/tasks/"+taskID+"/status", body, &resp); err != nil {
		return nil, err
	}
	return resp.Task, nil
}
