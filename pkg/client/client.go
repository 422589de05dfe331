// Package client provides the Viventium HCM API client: authenticated
// request construction, typed error normalization, division resolution, and
// employee profile pagination.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Viventium client operations.
var (
	viventiumRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viventium_requests_total",
		Help: "Total Viventium requests by endpoint and outcome",
	}, []string{"endpoint", "status"})

	viventiumRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "viventium_request_duration_seconds",
		Help:    "Viventium request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	viventiumErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viventium_errors_total",
		Help: "Total Viventium errors by kind",
	}, []string{"kind"})
)

// DefaultBaseURL is the production Viventium API root.
const DefaultBaseURL = "https://hcm.viventium.com/api"

const defaultTimeout = 30 * time.Second

// Client is the Viventium HCM API client. A Client holds no session state;
// credentials are supplied per operation and are never stored.
type Client struct {
	httpClient *http.Client
	requester  Requester
	baseURL    string
	userAgent  string
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the vendor API root. Override it to point at a mock server
	// in tests.
	BaseURL string

	// UserAgent pins the browser identity sent with every request. When
	// empty, a plausible identity is chosen once at construction and kept
	// for the lifetime of the client.
	UserAgent string

	// Requester substitutes the transport layer (shared connection pools,
	// test doubles). When nil the client issues requests itself.
	Requester Requester

	// Timeout applies to each request made by the built-in transport.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: defaultTimeout,
	}
}

// New creates a new Viventium client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", cfg.BaseURL)
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative (got %v)", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	// One stable browser identity per client instance.
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = uarand.GetRandom()
	}

	logger := log.With().Str("component", "viventium-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		requester: cfg.Requester,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

// dispatch issues one request and routes the response through
// handleResponse. Exactly one round trip per call; failures surface
// immediately as typed errors with no retries.
func (c *Client) dispatch(ctx context.Context, method, rawURL string, header http.Header, params url.Values) (json.RawMessage, error) {
	endpoint := endpointLabel(rawURL)

	start := time.Now()
	defer func() {
		viventiumRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Msg("Dispatching Viventium request")

	var body json.RawMessage
	var err error
	if c.requester != nil {
		body, err = c.requester.Request(ctx, method, rawURL, handleResponse, RequestOptions{
			Headers: header,
			Query:   params,
		})
	} else {
		body, err = c.send(ctx, method, rawURL, header, params)
	}

	viventiumRequestsTotal.WithLabelValues(endpoint, statusLabel(err)).Inc()
	if err != nil {
		viventiumErrorsTotal.WithLabelValues(errorKind(err)).Inc()
		c.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Str("kind", errorKind(err)).
			Msg("Viventium request failed")
		return nil, err
	}

	return body, nil
}

// send performs the request on the built-in transport. The response body is
// closed on every exit path.
func (c *Client) send(ctx context.Context, method, rawURL string, header http.Header, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	if header != nil {
		req.Header = header.Clone()
	}
	// net/http takes the Host header from Request.Host, not the header map.
	if host := header.Get("Host"); host != "" {
		req.Host = host
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viventium request: %w", err)
	}
	defer resp.Body.Close()

	return handleResponse(resp)
}

// endpointLabel maps a request URL to a low-cardinality metric label.
func endpointLabel(rawURL string) string {
	switch {
	case strings.Contains(rawURL, "/grids/EmployeeProfile"):
		return "employee_profile_grid"
	case strings.Contains(rawURL, "/divisions"):
		return "divisions"
	default:
		return "other"
	}
}

// statusLabel maps a dispatch outcome to a metric label: "ok", the HTTP
// status carried by a typed error, or "network_error".
func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("%d", authErr.StatusCode)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%d", apiErr.StatusCode)
	}
	return "network_error"
}

// errorKind categorizes an error for observability.
func errorKind(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return "auth"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return "api"
	}
	return "network"
}
