// Package testutil provides testing utilities for the Viventium client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// DivisionsPath is the divisions listing path as seen by the mock server.
const DivisionsPath = "/api/paystream/v1/divisions"

// GridPath returns the employee profile grid path for a division.
func GridPath(divisionID string) string {
	return fmt.Sprintf("/api/paystream/v1/divisions/%s/grids/EmployeeProfile", divisionID)
}

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockViventium is a configurable mock Viventium server for testing.
type MockViventium struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	expectedToken  string
	expectedCookie string

	// Tracking
	RequestCount      int
	GridRequestCount  int
	LastRequestHeader http.Header
	LastRequestHost   string
	GridPaths         []string
}

// NewMockViventium creates a new mock Viventium server.
func NewMockViventium() *MockViventium {
	mock := &MockViventium{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastRequestHost = r.Host
		if strings.Contains(r.URL.Path, "/grids/") {
			mock.GridRequestCount++
			mock.GridPaths = append(mock.GridPaths, r.URL.Path)
		}
		token := mock.expectedToken
		cookie := mock.expectedCookie
		mock.mu.Unlock()

		// Enforce session auth when configured
		if token != "" && r.Header.Get("X-XSRF-TOKEN") != token {
			writeVendorError(w, http.StatusUnauthorized, "Invalid XSRF token", "AuthenticationError")
			return
		}
		if cookie != "" && r.Header.Get("Cookie") != cookie {
			writeVendorError(w, http.StatusUnauthorized, "Invalid session cookie", "AuthenticationError")
			return
		}

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		writeVendorError(w, http.StatusNotFound, fmt.Sprintf("No route for %s", r.URL.Path), "NotFound")
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockViventium) URL() string {
	return m.server.URL
}

// BaseURL returns the URL clients should use as their API base.
func (m *MockViventium) BaseURL() string {
	return m.server.URL + "/api"
}

// Close shuts down the mock server.
func (m *MockViventium) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockViventium) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.GridRequestCount = 0
	m.LastRequestHeader = nil
	m.LastRequestHost = ""
	m.GridPaths = nil
}

// RequireAuth makes the server reject any request whose X-XSRF-TOKEN or
// Cookie header does not match the given values. Empty values disable the
// corresponding check.
func (m *MockViventium) RequireAuth(token, cookie string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expectedToken = token
	m.expectedCookie = cookie
}

// SetHandler sets a custom handler for a specific path.
func (m *MockViventium) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockViventium) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetDivisions configures the divisions listing to return the given ids, in
// order. With no ids the listing is an empty array.
func (m *MockViventium) SetDivisions(ids ...string) {
	divisions := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		divisions = append(divisions, map[string]string{"id": id})
	}
	body, _ := json.Marshal(divisions)
	m.SetResponse(DivisionsPath, MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
}

// SetEmployeePages serves total generated employee records from the grid
// endpoint for divisionID, sliced into pages per the queryOptions parameter
// each request carries.
func (m *MockViventium) SetEmployeePages(divisionID string, total int) {
	m.SetHandler(GridPath(divisionID), func(w http.ResponseWriter, r *http.Request) {
		var q struct {
			PageSize   int `json:"pageSize"`
			PageNumber int `json:"pageNumber"`
		}
		if err := json.Unmarshal([]byte(r.URL.Query().Get("queryOptions")), &q); err != nil || q.PageSize <= 0 || q.PageNumber <= 0 {
			writeVendorError(w, http.StatusBadRequest, "Invalid queryOptions", "ValidationError")
			return
		}

		start := (q.PageNumber - 1) * q.PageSize
		end := start + q.PageSize
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}

		records := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			records = append(records, map[string]any{
				"EmployeeNumber": fmt.Sprintf("E%04d", i+1),
				"FirstName":      fmt.Sprintf("Employee %d", i+1),
				"EmployeeStatus": "Active",
				"DivisionKey":    divisionID,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockViventium) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetGridRequestCount returns the number of grid requests made to the server.
func (m *MockViventium) GetGridRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.GridRequestCount
}

// GetGridPaths returns the grid paths requested so far.
func (m *MockViventium) GetGridPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.GridPaths...)
}

// writeVendorError writes an error body in the vendor's JSON shape.
func writeVendorError(w http.ResponseWriter, status int, message, errorType string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"message":    message,
		"error_type": errorType,
	})
}

// NewAuthErrorResponse creates a 401 response in the vendor's error shape.
func NewAuthErrorResponse(message, errorType string) MockResponse {
	body, _ := json.Marshal(map[string]string{
		"message":    message,
		"error_type": errorType,
	})
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"Internal server error","error_type":"ServerError"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewHTMLErrorResponse creates a 502 response with a non-JSON body, the way
// an upstream proxy fails.
func NewHTMLErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusBadGateway,
		Body:       "<html><body>Bad Gateway</body></html>",
		Headers:    map[string]string{"Content-Type": "text/html"},
	}
}
