// Package metrics provides the centralized Prometheus metrics registry for
// the Viventium client. All metrics are defined in the packages that emit
// them to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Viventium client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - viventium_requests_total{endpoint, status} (Counter): Total requests by
//     logical endpoint and outcome. status is "ok", the HTTP status code of a
//     typed error, or "network_error".
//   - viventium_request_duration_seconds{endpoint} (Histogram): Request duration
//     by logical endpoint.
//   - viventium_errors_total{kind} (Counter): Errors by kind (auth, api, network).
//
// Pagination Metrics (pkg/client):
//   - viventium_pages_fetched_total (Counter): Non-empty employee profile grid
//     pages fetched.
//   - viventium_employees_fetched_total (Counter): Employee profile records fetched.
//
// The endpoint label takes one of two values, "divisions" or
// "employee_profile_grid", so cardinality stays flat no matter how many
// divisions or pages an account has.
//
// Example Prometheus Queries:
//
//   # Auth Failure Rate
//   rate(viventium_errors_total{kind="auth"}[5m]) /
//   sum(rate(viventium_requests_total[5m]))
//
//   # P95 Grid Latency
//   histogram_quantile(0.95, rate(viventium_request_duration_seconds_bucket{endpoint="employee_profile_grid"}[5m]))
//
//   # Average Records Per Page
//   rate(viventium_employees_fetched_total[5m]) / rate(viventium_pages_fetched_total[5m])
