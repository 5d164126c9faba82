// Package callback delivers upload outcomes to caller-supplied webhook URLs.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// StatusFailed is reported when an upload has exhausted its retries
const StatusFailed = "failed"

// DefaultTimeout bounds a single delivery
const DefaultTimeout = 10 * time.Second

// ResultPayload reports a completed upload. ScheduledPostID is sent as null
// for inline uploads that carry no post id.
type ResultPayload struct {
	ScheduledPostID *int64 `json:"scheduled_post_id"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	PostURL         string `json:"post_url,omitempty"`
}

// FailurePayload reports an upload that will not be retried again
type FailurePayload struct {
	ScheduledPostID int64  `json:"scheduled_post_id"`
	Status          string `json:"status"`
	Error           string `json:"error"`
}

// Notifier posts JSON payloads to webhook URLs. Delivery is best effort:
// failures are logged and never returned.
type Notifier struct {
	client *http.Client
	logger *slog.Logger
}

// NewNotifier creates a Notifier whose requests time out after timeout
func NewNotifier(timeout time.Duration, logger *slog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Notifier{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// NotifyResult sends a success or status update for a scheduled post
func (n *Notifier) NotifyResult(ctx context.Context, url string, payload ResultPayload) {
	n.send(ctx, url, slog.Any("scheduled_post_id", payload.ScheduledPostID), payload)
}

// NotifyFailure sends the terminal failure for a scheduled post
func (n *Notifier) NotifyFailure(ctx context.Context, url string, scheduledPostID int64, cause string) {
	n.send(ctx, url, slog.Int64("scheduled_post_id", scheduledPostID), FailurePayload{
		ScheduledPostID: scheduledPostID,
		Status:          StatusFailed,
		Error:           cause,
	})
}

func (n *Notifier) send(ctx context.Context, url string, postID slog.Attr, payload any) {
	if url == "" {
		return
	}

	if err := n.post(ctx, url, payload); err != nil {
		n.logger.Error("Failed to send callback",
			slog.String("url", url),
			postID,
			slog.String("error", err.Error()),
		)
		return
	}

	n.logger.Info("Callback sent",
		slog.String("url", url),
		postID,
	)
}

func (n *Notifier) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}
