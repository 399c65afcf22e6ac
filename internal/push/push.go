// Package push delivers reminder notifications to registered push endpoints.
package push

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"encoding/json/v2"

	"github.com/pagepace/pagepace-server/internal/domain"
	domainerrors "github.com/pagepace/pagepace-server/internal/errors"
	"github.com/pagepace/pagepace-server/internal/ratelimit"
)

// Notification is the message delivered to one push endpoint.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

// Transport delivers a notification to one subscription endpoint.
type Transport interface {
	Send(ctx context.Context, sub *domain.PushSubscription, n Notification) error
}

// HTTPTransport posts notifications to subscription endpoints over HTTP.
// Deliveries are rate limited per endpoint host so one slow or hostile push
// service cannot starve the others.
type HTTPTransport struct {
	client     *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	ttlSeconds int
	logger     *slog.Logger
}

// NewHTTPTransport creates a push transport.
func NewHTTPTransport(ttlSeconds int, ratePerSecond float64, burst int, timeout time.Duration, logger *slog.Logger) *HTTPTransport {
	return &HTTPTransport{
		client:     &http.Client{Timeout: timeout},
		limiter:    ratelimit.New(ratePerSecond, burst),
		ttlSeconds: ttlSeconds,
		logger:     logger,
	}
}

// Send posts the notification to the subscription's endpoint. Any failure to
// reach the endpoint or a non-2xx response surfaces as a transport failure.
func (t *HTTPTransport) Send(ctx context.Context, sub *domain.PushSubscription, n Notification) error {
	endpoint, err := url.Parse(sub.Endpoint)
	if err != nil {
		return domainerrors.TransportFailure(fmt.Errorf("parse endpoint: %w", err))
	}

	if err := t.limiter.Wait(ctx, endpoint.Host); err != nil {
		return domainerrors.TransportFailure(fmt.Errorf("rate limit wait: %w", err))
	}

	var body bytes.Buffer
	if err := json.MarshalWrite(&body, n); err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", strconv.Itoa(t.ttlSeconds))

	resp, err := t.client.Do(req)
	if err != nil {
		return domainerrors.TransportFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domainerrors.TransportFailure(fmt.Errorf("endpoint returned %d", resp.StatusCode))
	}

	t.logger.Debug("delivered push notification",
		"endpoint_host", endpoint.Host,
		"subscription_id", sub.ID)
	return nil
}

// Stop releases the transport's rate limiter.
func (t *HTTPTransport) Stop() {
	t.limiter.Stop()
}
