package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestNew_Validation(t *testing.T) {
	valid := Config{
		TokenURL:      "https://auth.example.com/token",
		OrdersURL:     "https://api.example.com/orders",
		LiveOrdersURL: "https://live.example.com/orders",
		ClientID:      "restaurant-portal",
		UserAgent:     "test/1.0",
	}

	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			mutate:      func(cfg *Config) {},
			expectError: false,
		},
		{
			name:        "missing token URL",
			mutate:      func(cfg *Config) { cfg.TokenURL = "" },
			expectError: true,
			errorMsg:    "token URL is required",
		},
		{
			name:        "missing orders URL",
			mutate:      func(cfg *Config) { cfg.OrdersURL = "" },
			expectError: true,
			errorMsg:    "orders URL is required",
		},
		{
			name:        "missing live orders URL",
			mutate:      func(cfg *Config) { cfg.LiveOrdersURL = "" },
			expectError: true,
			errorMsg:    "live orders URL is required",
		},
		{
			name:        "missing client ID",
			mutate:      func(cfg *Config) { cfg.ClientID = "" },
			expectError: true,
			errorMsg:    "client ID is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			c, err := New(cfg)

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
				if c == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TokenURL != DefaultTokenURL {
		t.Errorf("TokenURL = %q, want %q", cfg.TokenURL, DefaultTokenURL)
	}
	if cfg.OrdersURL != DefaultOrdersURL {
		t.Errorf("OrdersURL = %q, want %q", cfg.OrdersURL, DefaultOrdersURL)
	}
	if cfg.LiveOrdersURL != DefaultLiveOrdersURL {
		t.Errorf("LiveOrdersURL = %q, want %q", cfg.LiveOrdersURL, DefaultLiveOrdersURL)
	}
	if cfg.ClientID != DefaultClientID {
		t.Errorf("ClientID = %q, want %q", cfg.ClientID, DefaultClientID)
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %v, should be > 0", cfg.Timeout)
	}
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	c, err := New(Config{
		TokenURL:      serverURL + "/auth/token",
		OrdersURL:     serverURL + "/api/restaurant/orders",
		LiveOrdersURL: serverURL + "/api/orders",
		ClientID:      "restaurant-portal",
		UserAgent:     "test/1.0",
		Timeout:       5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func TestGet_SetsHeaders(t *testing.T) {
	var received http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	body, err := c.Get(context.Background(), server.URL+"/api/restaurant/orders", "my-access-token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if string(body) != `{"data": {}}` {
		t.Errorf("body = %q, want %q", string(body), `{"data": {}}`)
	}
	if got := received.Get("Authorization"); got != "Bearer my-access-token" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer my-access-token")
	}
	if got := received.Get("User-Agent"); got != "test/1.0" {
		t.Errorf("User-Agent = %q, want %q", got, "test/1.0")
	}
	if got := received.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want %q", got, "application/json")
	}
}

func TestPostForm_SendsFormBody(t *testing.T) {
	var receivedContentType string
	var receivedForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		r.ParseForm()
		receivedForm = r.PostForm
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"access_token": "abc"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {"restaurant-portal"},
		"refresh_token": {"old-refresh"},
	}
	_, err := c.PostForm(context.Background(), server.URL+"/auth/token", form)
	if err != nil {
		t.Fatalf("PostForm failed: %v", err)
	}

	if receivedContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q, want form-urlencoded", receivedContentType)
	}
	if got := receivedForm.Get("grant_type"); got != "refresh_token" {
		t.Errorf("grant_type = %q, want %q", got, "refresh_token")
	}
	if got := receivedForm.Get("refresh_token"); got != "old-refresh" {
		t.Errorf("refresh_token = %q, want %q", got, "old-refresh")
	}
}

func TestDo_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close() // Connection refused from here on

	c := newTestClient(t, serverURL)

	_, err := c.Get(context.Background(), serverURL+"/api/restaurant/orders", "token")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T: %v", err, err)
	}
	if apiErr.Class != ErrorClassTransport {
		t.Errorf("Class = %q, want %q", apiErr.Class, ErrorClassTransport)
	}
}

func TestDo_CredentialsRejected(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"forbidden", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(`{"message": "no"}`))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL)

			_, err := c.Get(context.Background(), server.URL+"/api/restaurant/orders", "stale-token")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected APIError, got %T: %v", err, err)
			}
			if apiErr.Class != ErrorClassAuth {
				t.Errorf("Class = %q, want %q", apiErr.Class, ErrorClassAuth)
			}
			if apiErr.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.statusCode)
			}
		})
	}
}

func TestDo_ErrorStatusPassesBodyThrough(t *testing.T) {
	// The portal reports most failures in-band with a 200 or a 4xx/5xx
	// wrapping an error payload; only 401/403 short-circuit.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "server_error"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	body, err := c.Get(context.Background(), server.URL+"/api/restaurant/orders", "token")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(body) != `{"error": "server_error"}` {
		t.Errorf("body = %q, want the error payload", string(body))
	}
}
