// Package slack delivers the finished digest to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DeliveryError reports a webhook response other than a 2xx with body "ok".
// Delivery is never retried: the digest was already printed to the operator
// log, so nothing is lost, and a duplicate post is worse than a missing one.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("slack webhook returned %d: %s", e.StatusCode, e.Body)
}

// Webhook posts messages to one Slack incoming webhook URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook sender.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type payload struct {
	Text string `json:"text"`
}

// Notify posts text to the webhook. Success requires a 2xx response with
// the acknowledgement body "ok".
func (w *Webhook) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(payload{Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || string(respBody) != "ok" {
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}

// ActionsRunLink returns a Slack hyperlink to the current GitHub Actions
// run, or the empty string when not running under Actions. Delivered
// digests are prefixed with it so readers can trace a message back to the
// run that produced it.
func ActionsRunLink() string {
	serverURL := os.Getenv("GITHUB_SERVER_URL")
	repository := os.Getenv("GITHUB_REPOSITORY")
	runID := os.Getenv("GITHUB_RUN_ID")
	if serverURL == "" || repository == "" || runID == "" {
		return ""
	}
	return fmt.Sprintf("<%s/%s/actions/runs/%s|pr-review-queue>", serverURL, repository, runID)
}

// InActions reports whether the process runs inside GitHub Actions.
// Used to decide whether digest previews must be masked.
func InActions() bool {
	return os.Getenv("GITHUB_RUN_ID") != ""
}
