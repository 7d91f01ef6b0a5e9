// Package client provides the core restaurant-portal HTTP client with
// bearer authentication, response decoding, and error handling.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for portal client operations.
var (
	portalRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_requests_total",
		Help: "Total portal requests by endpoint and status",
	}, []string{"endpoint", "status"})

	portalRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_request_duration_seconds",
		Help:    "Portal request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	portalErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_errors_total",
		Help: "Total portal errors by class",
	}, []string{"class"})
)

// Production endpoints of the Takeaway.com restaurant portal.
const (
	DefaultTokenURL      = "https://partner-hub.justeattakeaway.com/auth/realms/restaurant/protocol/openid-connect/token"
	DefaultOrdersURL     = "https://restaurant-portal-api.takeaway.com/api/restaurant/orders"
	DefaultLiveOrdersURL = "https://live-orders-api.takeaway.com/api/orders"

	// DefaultClientID is the fixed OAuth client identifier of the portal.
	DefaultClientID = "restaurant-portal"
)

// Client is the portal HTTP client shared by all fetchers.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// TokenURL is the OAuth token exchange endpoint.
	TokenURL string

	// OrdersURL is the paginated historical day-query endpoint.
	OrdersURL string

	// LiveOrdersURL is the live-order list endpoint.
	LiveOrdersURL string

	// ClientID is the OAuth client identifier sent on token exchange.
	ClientID string

	// UserAgent header sent on every request.
	UserAgent string

	// Timeout is the transport-level timeout per request.
	Timeout time.Duration
}

// DefaultConfig returns a configuration pointing at the production portal.
func DefaultConfig() Config {
	return Config{
		TokenURL:      DefaultTokenURL,
		OrdersURL:     DefaultOrdersURL,
		LiveOrdersURL: DefaultLiveOrdersURL,
		ClientID:      DefaultClientID,
		UserAgent:     "takeaway-orders-client/1.0",
		Timeout:       30 * time.Second,
	}
}

// New creates a new portal client.
func New(cfg Config) (*Client, error) {
	if cfg.TokenURL == "" {
		return nil, fmt.Errorf("token URL is required")
	}

	if cfg.OrdersURL == "" {
		return nil, fmt.Errorf("orders URL is required")
	}

	if cfg.LiveOrdersURL == "" {
		return nil, fmt.Errorf("live orders URL is required")
	}

	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	// Initialize logger
	logger := log.With().Str("component", "portal-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// Get performs a bearer-authenticated GET and returns the response body.
func (c *Client) Get(ctx context.Context, rawURL, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.do(req)
}

// PostForm posts form-encoded values and returns the response body.
// Used for the token exchange, which authenticates via the form itself.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

// do executes the request and reads the full body. Transport failures and
// credential rejections become APIErrors; all other statuses pass the body
// through, since the portal reports failures via an in-band error field.
func (c *Client) do(req *http.Request) ([]byte, error) {
	endpoint := req.URL.Path

	// Start request timing
	startTime := time.Now()
	defer func() {
		portalRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing portal request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		portalErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		portalRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &APIError{Class: ErrorClassTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Reading response body failed")
		portalErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		portalRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &APIError{Class: ErrorClassTransport, Message: "read response body", Err: err}
	}

	portalRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Msg("Portal rejected credentials")
		portalErrorsTotal.WithLabelValues(string(ErrorClassAuth)).Inc()
		return nil, &APIError{
			Class:      ErrorClassAuth,
			StatusCode: resp.StatusCode,
			Message:    "credentials rejected",
		}
	}

	return body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
