package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/takeawaybill/takeaway-orders-client/internal/testutil"
	"github.com/takeawaybill/takeaway-orders-client/pkg/client"
	"github.com/takeawaybill/takeaway-orders-client/pkg/portal"
)

func newProxyService(t *testing.T, mock *testutil.MockPortal) *portal.Service {
	t.Helper()

	mock.SetTokenResponse(testutil.NewTokenExchangeResponse(
		testutil.MintToken(t, time.Now().Add(time.Hour)), ""))

	svc, err := portal.New(client.Config{
		TokenURL:      mock.TokenURL(),
		OrdersURL:     mock.OrdersURL(),
		LiveOrdersURL: mock.LiveOrdersURL(),
		ClientID:      "restaurant-portal",
	}, "seed-refresh-token")
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return svc
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Body = %q, want OK", rec.Body.String())
	}
}

func TestOrdersHandler(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()

	mock.SetDayQueryHandler(map[int]testutil.MockResponse{
		0: testutil.NewOrdersPageResponse(1),
		1: testutil.NewOrdersPageResponse(1,
			`{"date": "15-03-2024 12:00:00", "code": "AAAA", "city": "1000", "amount": "10,00", "paid_online": true}`,
			`{"date": "15-03-2024 13:00:00", "code": "BBBB", "city": "2000", "amount": "5,50", "paid_online": false}`,
		),
	})

	handler := ordersHandler(newProxyService(t, mock))
	req := httptest.NewRequest(http.MethodGet, "/orders?date=2024-03-15", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp struct {
		Date    string `json:"date"`
		Summary struct {
			TotalOrders  int    `json:"totalOrders"`
			PaidOnline   int    `json:"paidOnline"`
			CashPayment  int    `json:"cashPayment"`
			TotalRevenue string `json:"totalRevenue"`
		} `json:"summary"`
		Orders []struct {
			OrderCode string `json:"orderCode"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp.Date != "2024-03-15" {
		t.Errorf("Date = %q", resp.Date)
	}
	if resp.Summary.TotalOrders != 2 || resp.Summary.PaidOnline != 1 || resp.Summary.CashPayment != 1 {
		t.Errorf("Summary = %+v", resp.Summary)
	}
	if resp.Summary.TotalRevenue != "15.5" {
		t.Errorf("TotalRevenue = %q, want 15.5", resp.Summary.TotalRevenue)
	}
	if len(resp.Orders) != 2 || resp.Orders[0].OrderCode != "AAAA" {
		t.Errorf("Orders = %+v", resp.Orders)
	}
}

func TestOrdersHandler_SortParameters(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()

	mock.SetDayQueryHandler(map[int]testutil.MockResponse{
		0: testutil.NewOrdersPageResponse(1),
		1: testutil.NewOrdersPageResponse(1,
			`{"date": "15-03-2024 12:00:00", "code": "AAAA", "city": "1000", "amount": "10,00"}`,
			`{"date": "15-03-2024 13:00:00", "code": "BBBB", "city": "2000", "amount": "5,50"}`,
		),
	})

	handler := ordersHandler(newProxyService(t, mock))
	req := httptest.NewRequest(http.MethodGet, "/orders?date=2024-03-15&sort=price&dir=desc", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	var resp struct {
		Orders []struct {
			OrderCode string `json:"orderCode"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Orders) != 2 || resp.Orders[0].OrderCode != "AAAA" || resp.Orders[1].OrderCode != "BBBB" {
		t.Errorf("Orders = %+v, want price descending", resp.Orders)
	}
}

func TestOrdersHandler_UpstreamFailure(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()

	mock.SetDayQueryHandler(map[int]testutil.MockResponse{
		0: testutil.NewUpstreamErrorResponse("internal", "backend unavailable"),
	})

	handler := ordersHandler(newProxyService(t, mock))
	req := httptest.NewRequest(http.MethodGet, "/orders?date=2024-03-15", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestLiveOrdersHandler(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()

	mock.SetLiveOrdersResponse(testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body: `[
			{"public_reference": "LIVE01", "placed_date": "2024-03-15T18:00:00", "status": "kitchen"},
			{"public_reference": "LIVE02", "placed_date": "2024-03-15T18:30:00", "status": "confirmed"}
		]`,
	})

	handler := liveOrdersHandler(newProxyService(t, mock))
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Count  int `json:"count"`
		Orders []struct {
			OrderCode string `json:"orderCode"`
		} `json:"orders"`
		ByStatus map[string][]json.RawMessage `json:"byStatus"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Count)
	}
	if len(resp.Orders) != 2 || resp.Orders[0].OrderCode != "LIVE02" {
		t.Errorf("Orders = %+v, want most recent first", resp.Orders)
	}
	if len(resp.ByStatus["kitchen"]) != 1 || len(resp.ByStatus["confirmed"]) != 1 {
		t.Errorf("ByStatus = %v", resp.ByStatus)
	}
}

func TestQueryDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders?sort=price", nil)

	if got := queryDefault(req, "sort", "createdAt"); got != "price" {
		t.Errorf("queryDefault(sort) = %q, want price", got)
	}
	if got := queryDefault(req, "dir", "asc"); got != "asc" {
		t.Errorf("queryDefault(dir) = %q, want default asc", got)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("PROXY_TEST_KEY", "set")
	defer os.Unsetenv("PROXY_TEST_KEY")

	if got := getEnv("PROXY_TEST_KEY", "default"); got != "set" {
		t.Errorf("getEnv = %q, want set", got)
	}
	if got := getEnv("PROXY_TEST_MISSING", "default"); got != "default" {
		t.Errorf("getEnv = %q, want default", got)
	}
}
