// Package webhook delivers rendering calls to the consuming application
// over HTTP. Each call POSTs one JSON event to the configured endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config holds webhook surface configuration.
type Config struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

// Surface implements the notification rendering surface via webhooks.
// When disabled it degrades to structured logging only, which keeps the
// engine fully operable without a listening consumer.
type Surface struct {
	config Config
	client *http.Client
}

// NewSurface creates a webhook surface.
// Returns an error if enabled but the URL is missing.
func NewSurface(config Config) (*Surface, error) {
	if config.Enabled && config.URL == "" {
		return nil, errors.New("webhook surface: URL is required when enabled")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	slog.Info("notification surface configured",
		"webhook_enabled", config.Enabled,
		"url", config.URL,
		"timeout", config.Timeout,
	)

	return &Surface{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

type event struct {
	Event        string   `json:"event"`
	TaskID       string   `json:"task_id,omitempty"`
	Title        string   `json:"title,omitempty"`
	Body         string   `json:"body,omitempty"`
	Actions      []string `json:"actions,omitempty"`
	Count        int      `json:"count"`
	SampleTitles []string `json:"sample_titles,omitempty"`
}

// renderActions are the user actions the consumer should attach to a
// rendered notification; each maps to an API endpoint on this daemon.
var renderActions = []string{"complete", "snooze"}

// Render shows (or replaces) the notification for a task.
func (s *Surface) Render(ctx context.Context, taskID, title, body string) error {
	slog.Info("render notification", "task_id", taskID, "title", title)
	return s.post(ctx, event{Event: "render", TaskID: taskID, Title: title, Body: body, Actions: renderActions})
}

// Retract dismisses the notification for a task if one is showing.
func (s *Surface) Retract(ctx context.Context, taskID string) error {
	slog.Info("retract notification", "task_id", taskID)
	return s.post(ctx, event{Event: "retract", TaskID: taskID})
}

// RenderSummary updates the aggregate reminder entry. A count below two
// tells the consumer to collapse it.
func (s *Surface) RenderSummary(ctx context.Context, count int, sampleTitles []string) error {
	slog.Debug("render summary", "count", count)
	return s.post(ctx, event{Event: "summary", Count: count, SampleTitles: sampleTitles})
}

func (s *Surface) post(ctx context.Context, ev event) error {
	if !s.config.Enabled {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s event: %w", ev.Event, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post %s event: unexpected status %d", ev.Event, resp.StatusCode)
	}
	return nil
}
