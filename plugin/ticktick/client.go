package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public TickTick Open API endpoint.
	DefaultBaseURL = "https://api.ticktick.com"
	// DefaultTimeout bounds one CreateTask round trip.
	DefaultTimeout = 10 * time.Second

	createTaskPath = "/open/v1/task"

	defaultRate  = 2
	defaultBurst = 4
)

// Config holds TickTick client configuration.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	// RatePerSecond throttles outgoing requests. Zero uses the default.
	RatePerSecond float64
	Burst         int
}

// TaskCreator creates tasks. Implemented by *Client.
type TaskCreator interface {
	CreateTask(ctx context.Context, task *Task) error
}

// Client talks to the TickTick Open API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new TickTick client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RatePerSecond <= 0 {
		config.RatePerSecond = defaultRate
	}
	if config.Burst <= 0 {
		config.Burst = defaultBurst
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		token:   config.AccessToken,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RatePerSecond), config.Burst),
		logger:  slog.Default(),
	}
}

// CreateTask posts task to TickTick. Any 2xx status is success; other statuses
// return *APIError. Requests are never retried.
func (c *Client) CreateTask(ctx context.Context, task *Task) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ticktick rate limiter: %w", err)
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createTaskPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create task request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ticktick request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       truncateBody(respBody),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("ticktick task created",
		"project_id", task.ProjectID,
		"due", task.DueDate,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

var _ TaskCreator = (*Client)(nil)
