// Package service provides hook targets that deliver events outside the process.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	"github.com/bouncr/iam/internal/resilience"
)

// WebhookTarget posts events as JSON to an HTTP endpoint.
type WebhookTarget struct {
	url    string
	client *http.Client
	policy *resilience.Policy
}

// NewWebhookTarget creates a target for url. Transient failures are retried by policy.
func NewWebhookTarget(url string, client *http.Client, policy *resilience.Policy) *WebhookTarget {
	return &WebhookTarget{url: url, client: client, policy: policy}
}

// Deliver posts event. 5xx and 429 responses are retried; other non-2xx responses are final.
func (w *WebhookTarget) Deliver(ctx context.Context, event *hookDomain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = resilience.Execute(ctx, w.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.post(ctx, event, body)
	})
	return err
}

func (w *WebhookTarget) post(ctx context.Context, event *hookDomain.Event, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Bouncr-Event", string(event.Kind))
	req.Header.Set("X-Bouncr-Event-Id", event.ID.String())

	resp, err := w.client.Do(req)
	if err != nil {
		return resilience.Transient(fmt.Errorf("webhook request failed: %w", err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return resilience.Transient(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	default:
		return resilience.Rejection(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
}
