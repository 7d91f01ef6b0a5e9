// Package metrics provides the centralized Prometheus registry reference
// for the portal client. All metrics are defined in their respective
// packages (client, token, pagination, orders, live) to maintain
// modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the portal client.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - portal_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - portal_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - portal_errors_total{class} (Counter): Errors by class (transport, decode, upstream, auth)
//
// Token Metrics (pkg/token):
//   - portal_token_refreshes_total{result} (Counter): Token refresh attempts by result
//   - portal_token_rotations_total (Counter): Refresh token rotations received
//
// Pagination Metrics (pkg/pagination):
//   - portal_page_fetches_total{result} (Counter): Page fetches by result
//
// Aggregation Metrics (pkg/orders):
//   - portal_order_aggregations_total{result} (Counter): Day-query aggregations by result
//   - portal_order_aggregation_dropped_pages_total (Counter): Pages dropped from aggregations
//   - portal_order_aggregation_dropped_records_total (Counter): Records dropped during normalization
//
// Live Order Metrics (pkg/live):
//   - portal_live_fetches_total{result} (Counter): Live-order fetches by result
//   - portal_live_retries_total (Counter): Failed attempts that were retried
//   - portal_live_retry_exhausted_total (Counter): Fetches that exhausted all attempts
//
// Example Prometheus Queries:
//
//   # Page Drop Rate
//   rate(portal_order_aggregation_dropped_pages_total[5m]) /
//   rate(portal_page_fetches_total[5m])
//
//   # Request Error Rate by Class
//   rate(portal_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(portal_request_duration_seconds_bucket[5m]))
//
//   # Live Fetch Retry Pressure
//   rate(portal_live_retries_total[5m])
