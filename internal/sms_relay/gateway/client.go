package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Query parameter names understood by both upstream gateways.
const (
	ParamRecipient  = "recipient"
	ParamText       = "text"
	ParamCredential = "password"
	ParamAccountID  = "api_id"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
	maxErrorSnippet  = 200
)

// HTTPClient performs single delivery attempts against a gateway endpoint.
type HTTPClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPClient creates a gateway client. When httpClient is nil a client with
// the given timeout is created. maxRPS > 0 caps outbound requests per second
// across all attempts made through this client.
func NewHTTPClient(logger *slog.Logger, httpClient *http.Client, timeout time.Duration, maxRPS float64) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if maxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxRPS), 1)
	}
	return &HTTPClient{
		logger:     logger.With("component", "gateway_client"),
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// Attempt POSTs params to endpoint once and classifies the outcome. It never
// returns a Go error: every failure is carried in the result.
func (c *HTTPClient) Attempt(ctx context.Context, leg domain.GatewayLeg, endpoint string, params domain.DeliveryParams) domain.DeliveryResult {
	timer := prometheus.NewTimer(gatewayRequestDurationHist.WithLabelValues(string(leg)))
	result := c.attempt(ctx, leg, endpoint, params)
	timer.ObserveDuration()
	gatewayAttemptsCounter.WithLabelValues(string(leg), result.Outcome()).Inc()
	return result
}

func (c *HTTPClient) attempt(ctx context.Context, leg domain.GatewayLeg, endpoint string, params domain.DeliveryParams) domain.DeliveryResult {
	logger := c.logger.With("gateway", leg, "recipient", params.Recipient)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.Failed(leg, 0, fmt.Errorf("%w: waiting for rate limiter: %v", domain.ErrGatewayUnreachable, err))
		}
	}

	target, err := buildURL(endpoint, params)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid gateway endpoint", "endpoint", endpoint, "error", err)
		return domain.Failed(leg, 0, fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create gateway request", "error", err)
		return domain.Failed(leg, 0, fmt.Errorf("%w: building request: %v", domain.ErrGatewayUnreachable, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "Gateway request failed", "error", err)
		return domain.Failed(leg, 0, fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.WarnContext(ctx, "Failed to read gateway response body", "status_code", resp.StatusCode, "error", err)
		return domain.Failed(leg, resp.StatusCode, fmt.Errorf("%w: reading response: %v", domain.ErrGatewayUnreachable, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.WarnContext(ctx, "Gateway rejected message", "status_code", resp.StatusCode, "body", snippet(body))
		return domain.Failed(leg, resp.StatusCode, fmt.Errorf("%w: status %d: %s", domain.ErrGatewayRejected, resp.StatusCode, snippet(body)))
	}

	if !json.Valid(body) {
		logger.WarnContext(ctx, "Gateway returned non-JSON success body", "status_code", resp.StatusCode, "body", snippet(body))
		return domain.Failed(leg, resp.StatusCode, fmt.Errorf("%w: status %d: %s", domain.ErrMalformedResponse, resp.StatusCode, snippet(body)))
	}

	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		logger.WarnContext(ctx, "Gateway returned null success body", "status_code", resp.StatusCode)
		return domain.Failed(leg, resp.StatusCode, fmt.Errorf("%w: status %d: null body", domain.ErrMalformedResponse, resp.StatusCode))
	}

	logger.InfoContext(ctx, "Gateway accepted message", "status_code", resp.StatusCode)
	return domain.Delivered(leg, resp.StatusCode, json.RawMessage(body))
}

func buildURL(endpoint string, params domain.DeliveryParams) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("endpoint %q must be an http(s) URL", endpoint)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}

	q := u.Query()
	q.Set(ParamRecipient, params.Recipient)
	q.Set(ParamText, params.Text)
	q.Set(ParamCredential, params.Credential)
	if params.AccountID != "" {
		q.Set(ParamAccountID, params.AccountID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func snippet(body []byte) string {
	if len(body) > maxErrorSnippet {
		return string(body[:maxErrorSnippet]) + "..."
	}
	return string(body)
}
