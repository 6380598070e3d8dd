package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/breathebhutan/tashi/core/logger"
	"github.com/breathebhutan/tashi/core/telegram/netutil"
	"github.com/breathebhutan/tashi/travel/finalize"
	"log/slog"
)

const (
	webhookTimeout      = 30 * time.Second
	webhookFirstBackoff = 2 * time.Second
)

// Webhook POSTs finalized plans as JSON to a business endpoint. Transient
// failures (network errors, 5xx, 429) are retried with exponential backoff
// inside the single semantic delivery attempt.
type Webhook struct {
	client      *http.Client
	url         string
	token       string
	maxAttempts int
	backoff     time.Duration
}

// NewWebhook creates the HTTP transport. maxAttempts <= 0 selects 3.
func NewWebhook(url, token string, maxAttempts int) *Webhook {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Webhook{
		client:      &http.Client{Timeout: webhookTimeout},
		url:         url,
		token:       token,
		maxAttempts: maxAttempts,
		backoff:     webhookFirstBackoff,
	}
}

// Name implements Notifier.
func (w *Webhook) Name() string { return "webhook" }

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, plan finalize.FinalizedPlan) error {
	body, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	backoff := w.backoff
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		lastErr = w.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == w.maxAttempts {
			break
		}
		logger.Debug(ctx, "travel.notify", "webhook.retry",
			slog.String("ref_id", plan.RefID),
			slog.Int("attempt", attempt),
			slog.String("err", lastErr.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("post plan after %d attempts: %w", w.maxAttempts, lastErr)
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &statusError{code: resp.StatusCode, status: resp.Status}
}

// statusError is a non-2xx response.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return "webhook status: " + e.status }

// retryable classifies a delivery failure: transient network errors, 5xx and
// 429 are worth another attempt; other HTTP statuses are permanent.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return netutil.ShouldRetry(err)
}
