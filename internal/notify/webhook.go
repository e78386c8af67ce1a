package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"moderation/internal/events"
	"moderation/internal/observability/metrics"
	"moderation/internal/observability/middleware"
)

type Config struct {
	URL     string        // empty disables delivery
	Timeout time.Duration // 0 leaves the client without a timeout
}

// StatusError is returned for non-2xx webhook responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded %d %s", e.Code, http.StatusText(e.Code))
}

// WebhookNotifier posts approved drafts to an HTTP endpoint (an n8n webhook).
// Delivery is at most once: no retries, failures are only logged.
type WebhookNotifier struct {
	url string
	hc  *http.Client
	wg  sync.WaitGroup
}

func NewWebhookNotifier(cfg Config) *WebhookNotifier {
	return &WebhookNotifier{
		url: strings.TrimSpace(cfg.URL),
		hc: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Dispatch starts delivery of ev in the background and returns immediately.
// The delivery keeps ctx's values but is not cancelled with it.
func (n *WebhookNotifier) Dispatch(ctx context.Context, ev events.DraftApproved) {
	if n.url == "" {
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		slog.Warn("webhook url not configured, skipping notification",
			append([]any{"draft_id", ev.ID}, middleware.LogAttrs(ctx)...)...,
		)
		return
	}

	detached := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				metrics.NotificationsTotal.WithLabelValues("failed").Inc()
				slog.Error("notification panicked", append([]any{"draft_id", ev.ID, "panic", rec}, middleware.LogAttrs(detached)...)...)
			}
		}()
		n.deliver(detached, ev)
	}()
}

// Wait blocks until every dispatched delivery has finished.
func (n *WebhookNotifier) Wait() { n.wg.Wait() }

func (n *WebhookNotifier) deliver(ctx context.Context, ev events.DraftApproved) {
	start := time.Now()
	err := n.post(ctx, ev)
	attrs := append([]any{
		"draft_id", ev.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	}, middleware.LogAttrs(ctx)...)

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		slog.Error("notification failed", append(attrs, "error", err)...)
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	slog.Info("notification sent", attrs...)
}

func (n *WebhookNotifier) post(ctx context.Context, ev events.DraftApproved) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.hc.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
