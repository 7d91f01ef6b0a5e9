// Package testutil provides testing utilities for the portal client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MockResponse defines the behavior for a mock portal endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockPortal is a configurable mock of the portal endpoints for testing.
// It serves the token exchange, the day-query endpoint, and the
// live-order list from one httptest server.
type MockPortal struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	TokenRequestCount int
	LastRequestHeader http.Header
}

// Endpoint paths served by the mock.
const (
	TokenPath      = "/auth/token"
	OrdersPath     = "/api/restaurant/orders"
	LiveOrdersPath = "/api/orders"
)

// NewMockPortal creates a new mock portal server.
func NewMockPortal() *MockPortal {
	mock := &MockPortal{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		if r.URL.Path == TokenPath {
			mock.TokenRequestCount++
		}
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		// Default handler
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockPortal) URL() string {
	return m.server.URL
}

// TokenURL returns the full token endpoint URL.
func (m *MockPortal) TokenURL() string {
	return m.server.URL + TokenPath
}

// OrdersURL returns the full day-query endpoint URL.
func (m *MockPortal) OrdersURL() string {
	return m.server.URL + OrdersPath
}

// LiveOrdersURL returns the full live-order endpoint URL.
func (m *MockPortal) LiveOrdersURL() string {
	return m.server.URL + LiveOrdersPath
}

// Close shuts down the mock server.
func (m *MockPortal) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockPortal) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.TokenRequestCount = 0
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockPortal) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockPortal) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		// Add delay if specified
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		// Set headers
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		// Write status and body
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetTokenResponse configures the token exchange endpoint.
func (m *MockPortal) SetTokenResponse(resp MockResponse) {
	m.SetResponse(TokenPath, resp)
}

// SetLiveOrdersResponse configures the live-order endpoint.
func (m *MockPortal) SetLiveOrdersResponse(resp MockResponse) {
	m.SetResponse(LiveOrdersPath, resp)
}

// SetDayQueryHandler configures the day-query endpoint with per-page
// routing: pageBodies[0] serves the pageless discovery call, pageBodies[n]
// serves page n. Pages without a body return 404 with an empty object.
func (m *MockPortal) SetDayQueryHandler(pageBodies map[int]MockResponse) {
	m.SetHandler(OrdersPath, func(w http.ResponseWriter, r *http.Request) {
		page := 0
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &page)
		}

		resp, ok := pageBodies[page]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{}`))
			return
		}

		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockPortal) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetTokenRequestCount returns the number of token exchange requests.
func (m *MockPortal) GetTokenRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TokenRequestCount
}

// defaultHandler provides default portal-like responses.
func (m *MockPortal) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	switch r.URL.Path {
	case TokenPath:
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"access_token": %q}`, MintToken(nil, time.Now().Add(time.Hour)))
	case LiveOrdersPath:
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[]`))
	default:
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"meta": {"total_pages": 1}, "data": {"orders": []}}`))
	}
}

// MintToken creates a signed JWT with the given expiry for freshness
// tests. The signature is never verified by the client, only the exp
// claim matters. t may be nil when minting outside a test helper context.
func MintToken(t *testing.T, expiry time.Time) string {
	if t != nil {
		t.Helper()
	}

	claims := jwt.MapClaims{
		"exp": expiry.Unix(),
		"iat": time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("mock-portal-secret"))
	if err != nil {
		if t != nil {
			t.Fatalf("Failed to mint token: %v", err)
		}
		panic(err)
	}
	return signed
}

// MintTokenWithoutExpiry creates a signed JWT carrying no exp claim.
func MintTokenWithoutExpiry(t *testing.T) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iat": time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("mock-portal-secret"))
	if err != nil {
		t.Fatalf("Failed to mint token: %v", err)
	}
	return signed
}

// NewTokenExchangeResponse creates a standard successful token response.
// rotatedRefreshToken may be empty to simulate a non-rotating exchange.
func NewTokenExchangeResponse(accessToken, rotatedRefreshToken string) MockResponse {
	body := fmt.Sprintf(`{"access_token": %q}`, accessToken)
	if rotatedRefreshToken != "" {
		body = fmt.Sprintf(`{"access_token": %q, "refresh_token": %q}`, accessToken, rotatedRefreshToken)
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewUpstreamErrorResponse creates an in-band error payload as the portal
// reports failures.
func NewUpstreamErrorResponse(errCode, description string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"error": %q, "error_description": %q}`, errCode, description),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewOrdersPageResponse creates a day-query page body with the given raw
// order rows (JSON fragments).
func NewOrdersPageResponse(totalPages int, orderRows ...string) MockResponse {
	rows := ""
	for i, row := range orderRows {
		if i > 0 {
			rows += ","
		}
		rows += row
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"meta": {"total_pages": %d}, "data": {"orders": [%s]}}`, totalPages, rows),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewWrongShapeResponse creates a syntactically valid body of the wrong
// JSON shape (an array where an object is expected).
func NewWrongShapeResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `["unexpected"]`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
