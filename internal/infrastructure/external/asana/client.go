package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/pkg/config"
)

// Client is a minimal client for the Asana REST API covering the task-sink
// surface: section lookup/creation and task creation.
type Client struct {
	accessToken string
	baseURL     string
	workspaceID string
	client      *http.Client
	logger      *zap.Logger
}

// NewClient creates an Asana client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewClient(cfg *config.AsanaConfig, logger *zap.Logger) *Client {
	var accessToken string
	if cfg != nil {
		accessToken = cfg.AccessToken
	}
	if accessToken == "" {
		accessToken = os.Getenv("ASANA_ACCESS_TOKEN")
	}

	base := "https://app.asana.com/api/1.0"
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	}

	timeout := 30 * time.Second
	if cfg != nil && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	var workspaceID string
	if cfg != nil {
		workspaceID = cfg.WorkspaceID
	}

	return &Client{
		accessToken: accessToken,
		baseURL:     base,
		workspaceID: workspaceID,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("asana returned status %d: %s", e.code, e.body)
}

type sectionData struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

type taskData struct {
	GID          string `json:"gid"`
	Name         string `json:"name"`
	PermalinkURL string `json:"permalink_url"`
}

// CreateTasks creates one Asana task per enriched action item inside the
// project, grouped under sectionName when it is non-empty. A failed item is
// logged and skipped, so the returned slice can be shorter than items.
func (c *Client) CreateTasks(ctx context.Context, projectID, sectionName string, items []entities.ActionItem) ([]entities.CreatedTask, error) {
	var sectionGID string
	if sectionName != "" {
		gid, err := c.findOrCreateSection(ctx, projectID, sectionName)
		if err != nil {
			// Tasks still land in the project, just ungrouped.
			c.logger.Warn("⚠️ Could not resolve Asana section, creating tasks without one",
				zap.String("section", sectionName),
				zap.Error(err))
		} else {
			sectionGID = gid
		}
	}

	created := make([]entities.CreatedTask, 0, len(items))
	for _, item := range items {
		task, err := c.createTaskWithRetry(ctx, projectID, sectionGID, item)
		if err != nil {
			c.logger.Error("❌ Failed to create Asana task",
				zap.String("title", item.Title),
				zap.Error(err))
			continue
		}
		created = append(created, entities.CreatedTask{
			GID:          task.GID,
			Name:         task.Name,
			PermalinkURL: task.PermalinkURL,
		})
	}

	c.logger.Info("✅ Asana tasks created",
		zap.String("project", projectID),
		zap.Int("requested", len(items)),
		zap.Int("created", len(created)))
	return created, nil
}

// findOrCreateSection returns the GID of the section with the given name,
// creating it when the project does not have one yet.
func (c *Client) findOrCreateSection(ctx context.Context, projectID, name string) (string, error) {
	var listResp struct {
		Data []sectionData `json:"data"`
	}
	path := fmt.Sprintf("/projects/%s/sections", url.PathEscape(projectID))
	if err := c.do(ctx, http.MethodGet, path, nil, &listResp); err != nil {
		return "", fmt.Errorf("list sections: %w", err)
	}
	for _, section := range listResp.Data {
		if section.Name == name {
			return section.GID, nil
		}
	}

	var createResp struct {
		Data sectionData `json:"data"`
	}
	body := map[string]any{"data": map[string]any{"name": name}}
	if err := c.do(ctx, http.MethodPost, path, body, &createResp); err != nil {
		return "", fmt.Errorf("create section %q: %w", name, err)
	}
	return createResp.Data.GID, nil
}

func (c *Client) createTaskWithRetry(ctx context.Context, projectID, sectionGID string, item entities.ActionItem) (*taskData, error) {
	data := map[string]any{
		"name":     item.Title,
		"notes":    item.Description,
		"projects": []string{projectID},
	}
	if item.Priority != "" {
		data["priority"] = item.Priority
	}
	if c.workspaceID != "" {
		data["workspace"] = c.workspaceID
	}
	if sectionGID != "" {
		data["memberships"] = []map[string]string{
			{"project": projectID, "section": sectionGID},
		}
	}

	var task *taskData
	operation := func() error {
		var resp struct {
			Data taskData `json:"data"`
		}
		if err := c.do(ctx, http.MethodPost, "/tasks", map[string]any{"data": data}, &resp); err != nil {
			var statusErr *statusError
			if errors.As(err, &statusErr) && statusErr.code < 500 && statusErr.code != http.StatusTooManyRequests {
				// Client errors will not heal on retry.
				return backoff.Permanent(err)
			}
			return err
		}
		task = &resp.Data
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return task, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{code: resp.StatusCode, body: string(payload)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}
