package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// newTestClient creates a client with a fixed user agent pointed at baseURL.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	c, err := New(Config{
		BaseURL:   baseURL,
		UserAgent: "TestAgent/1.0",
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "zero config uses defaults",
			config:      Config{},
			expectError: false,
		},
		{
			name: "valid custom base URL",
			config: Config{
				BaseURL:   "http://127.0.0.1:8080/api",
				UserAgent: "TestAgent/1.0",
			},
			expectError: false,
		},
		{
			name: "relative base URL",
			config: Config{
				BaseURL: "hcm.viventium.com/api",
			},
			expectError: true,
			errorMsg:    `base URL "hcm.viventium.com/api" must be absolute`,
		},
		{
			name: "malformed base URL",
			config: Config{
				BaseURL: "://nope",
			},
			expectError: true,
		},
		{
			name: "negative timeout",
			config: Config{
				Timeout: -1 * time.Second,
			},
			expectError: true,
			errorMsg:    "timeout must not be negative (got -1s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
	if c.httpClient.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
	}
	if c.userAgent == "" {
		t.Error("user agent should be generated when not configured")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:9999/api/"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if c.baseURL != "http://127.0.0.1:9999/api" {
		t.Errorf("baseURL = %q, want %q", c.baseURL, "http://127.0.0.1:9999/api")
	}
}

func TestNew_StableUserAgent(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	first := c.authHeaders("tok").Get("User-Agent")
	second := c.authHeaders("tok").Get("User-Agent")
	if first == "" {
		t.Fatal("User-Agent is empty")
	}
	if first != second {
		t.Errorf("User-Agent changed between calls: %q vs %q", first, second)
	}

	pinned := newTestClient(t, DefaultBaseURL)
	if got := pinned.authHeaders("tok").Get("User-Agent"); got != "TestAgent/1.0" {
		t.Errorf("configured User-Agent = %q, want %q", got, "TestAgent/1.0")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, 30*time.Second)
	}
	if cfg.Requester != nil {
		t.Error("Requester should be nil by default")
	}
	if cfg.UserAgent != "" {
		t.Errorf("UserAgent = %q, want empty", cfg.UserAgent)
	}
}

func TestDispatch_SuccessPassthrough(t *testing.T) {
	body := `{"hello":"world","n":42}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	raw, err := c.dispatch(context.Background(), http.MethodGet, server.URL+"/anything", c.authHeaders("tok"), nil)
	if err != nil {
		t.Fatalf("dispatch() failed: %v", err)
	}
	if string(raw) != body {
		t.Errorf("dispatch() body = %q, want %q", string(raw), body)
	}
}

func TestDispatch_HeadersSent(t *testing.T) {
	var gotHeader http.Header
	var gotHost string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotHost = r.Host
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	header := c.authHeaders("tok-abc")
	header.Set("Cookie", CookieMap{"sess": "abc"}.cookieHeader())

	if _, err := c.dispatch(context.Background(), http.MethodGet, server.URL+"/api/x", header, nil); err != nil {
		t.Fatalf("dispatch() failed: %v", err)
	}

	if gotHost != "hcm.viventium.com" {
		t.Errorf("Host = %q, want %q", gotHost, "hcm.viventium.com")
	}

	want := map[string]string{
		"User-Agent":      "TestAgent/1.0",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-GB,en;q=0.5",
		"X-XSRF-TOKEN":    "tok-abc",
		"Referer":         "https://hcm.viventium.com/apps/vm/",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-origin",
		"Cookie":          "sess=abc",
	}
	for key, value := range want {
		if got := gotHeader.Get(key); got != value {
			t.Errorf("header %s = %q, want %q", key, got, value)
		}
	}
}

func TestDispatch_QueryParamsSent(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	params := url.Values{}
	params.Set("pageNumber", "1")
	params.Set("pageSize", "1000")

	if _, err := c.dispatch(context.Background(), http.MethodGet, server.URL+"/api/x", c.authHeaders("tok"), params); err != nil {
		t.Fatalf("dispatch() failed: %v", err)
	}

	if gotQuery != "pageNumber=1&pageSize=1000" {
		t.Errorf("query = %q, want %q", gotQuery, "pageNumber=1&pageSize=1000")
	}
}

// fakeRequester records the dispatch arguments and feeds a canned response
// through the supplied normalizer.
type fakeRequester struct {
	method string
	url    string
	opts   RequestOptions
	resp   *http.Response
}

func (f *fakeRequester) Request(ctx context.Context, method, url string, process ResponseHandler, opts RequestOptions) (json.RawMessage, error) {
	f.method = method
	f.url = url
	f.opts = opts
	return process(f.resp)
}

func TestDispatch_RequesterInjection(t *testing.T) {
	fake := &fakeRequester{
		resp: &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`[{"id":"X"}]`)),
		},
	}

	c, err := New(Config{
		BaseURL:   "https://example.invalid/api",
		UserAgent: "TestAgent/1.0",
		Requester: fake,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	header := c.authHeaders("tok-inj")
	params := url.Values{"pageSize": {"1000"}}

	raw, err := c.dispatch(context.Background(), http.MethodGet, "https://example.invalid/api/paystream/v1/divisions", header, params)
	if err != nil {
		t.Fatalf("dispatch() failed: %v", err)
	}

	if string(raw) != `[{"id":"X"}]` {
		t.Errorf("body = %q, want %q", string(raw), `[{"id":"X"}]`)
	}
	if fake.method != http.MethodGet {
		t.Errorf("method = %q, want %q", fake.method, http.MethodGet)
	}
	if fake.url != "https://example.invalid/api/paystream/v1/divisions" {
		t.Errorf("url = %q", fake.url)
	}
	if got := fake.opts.Headers.Get("X-XSRF-TOKEN"); got != "tok-inj" {
		t.Errorf("forwarded token = %q, want %q", got, "tok-inj")
	}
	if got := fake.opts.Query.Get("pageSize"); got != "1000" {
		t.Errorf("forwarded pageSize = %q, want %q", got, "1000")
	}
}

// errorRequester always fails with the configured error.
type errorRequester struct {
	err error
}

func (e *errorRequester) Request(ctx context.Context, method, url string, process ResponseHandler, opts RequestOptions) (json.RawMessage, error) {
	return nil, e.err
}

func TestDispatch_RequesterErrorPassthrough(t *testing.T) {
	wantErr := &AuthError{Integration: "viventium", StatusCode: 401, Reason: "Unauthorized"}
	c, err := New(Config{
		BaseURL:   "https://example.invalid/api",
		UserAgent: "TestAgent/1.0",
		Requester: &errorRequester{err: wantErr},
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, err = c.dispatch(context.Background(), http.MethodGet, "https://example.invalid/api/x", c.authHeaders("tok"), nil)

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want *AuthError", err)
	}
	if authErr != wantErr {
		t.Errorf("error not passed through unchanged")
	}
}

func TestDispatch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	c := newTestClient(t, serverURL)

	_, err := c.dispatch(context.Background(), http.MethodGet, serverURL+"/x", c.authHeaders("tok"), nil)
	if err == nil {
		t.Fatal("Expected error for closed server")
	}
	if kind := errorKind(err); kind != "network" {
		t.Errorf("errorKind = %q, want %q", kind, "network")
	}
}

func TestEndpointLabel(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://hcm.viventium.com/api/paystream/v1/divisions", "divisions"},
		{"https://hcm.viventium.com/api/paystream/v1/divisions/42/grids/EmployeeProfile", "employee_profile_grid"},
		{"https://hcm.viventium.com/api/something/else", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := endpointLabel(tt.url); got != tt.expected {
				t.Errorf("endpointLabel(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "ok"},
		{"auth error", &AuthError{StatusCode: 401}, "401"},
		{"api error", &APIError{StatusCode: 500}, "500"},
		{"wrapped api error", fmt.Errorf("fetch: %w", &APIError{StatusCode: 502}), "502"},
		{"network error", io.EOF, "network_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusLabel(tt.err); got != tt.expected {
				t.Errorf("statusLabel() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"auth error", &AuthError{StatusCode: 400}, "auth"},
		{"api error", &APIError{StatusCode: 503}, "api"},
		{"wrapped auth error", fmt.Errorf("fetch: %w", &AuthError{StatusCode: 401}), "auth"},
		{"network error", io.EOF, "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorKind(tt.err); got != tt.expected {
				t.Errorf("errorKind() = %q, want %q", got, tt.expected)
			}
		})
	}
}
