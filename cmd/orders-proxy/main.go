package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/takeawaybill/takeaway-orders-client/pkg/client"
	"github.com/takeawaybill/takeaway-orders-client/pkg/live"
	"github.com/takeawaybill/takeaway-orders-client/pkg/logging"
	"github.com/takeawaybill/takeaway-orders-client/pkg/orders"
	"github.com/takeawaybill/takeaway-orders-client/pkg/portal"
)

func main() {
	// Configuration from environment
	refreshToken := os.Getenv("TAKEAWAY_REFRESH_TOKEN")
	port := getEnv("PORT", "8080")
	logLevel := getEnv("LOG_LEVEL", "info")
	logPretty := os.Getenv("LOG_PRETTY") == "true"

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Pretty: logPretty,
		Output: os.Stderr,
	})

	if refreshToken == "" {
		logger.Fatal().Msg("TAKEAWAY_REFRESH_TOKEN is required")
	}

	service, err := portal.New(client.DefaultConfig(), refreshToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create portal service")
	}

	// HTTP Server
	http.HandleFunc("/health", healthHandler)
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/orders", ordersHandler(service))
	http.HandleFunc("/live", liveOrdersHandler(service))

	addr := ":" + port
	logger.Info().Str("addr", addr).Msg("Starting orders proxy")

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// ordersHandler serves the historical orders of one date.
// Query parameters: date (YYYY-MM-DD, default today), sort, dir.
func ordersHandler(service *portal.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		sortColumn := queryDefault(r, "sort", orders.SortByCreatedAt)
		sortDirection := queryDefault(r, "dir", orders.SortAsc)

		records, err := service.FetchOrdersByDate(r.Context(), date, sortColumn, sortDirection)
		if err != nil {
			http.Error(w, fmt.Sprintf("fetch orders failed: %v", err), http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]any{
			"date":    date,
			"summary": orders.Summarize(records),
			"orders":  records,
		})
	}
}

// liveOrdersHandler serves the current live-order snapshot.
func liveOrdersHandler(service *portal.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := service.FetchLiveOrders(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("fetch live orders failed: %v", err), http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]any{
			"count":    len(snapshot),
			"orders":   snapshot,
			"byStatus": live.GroupByStatus(snapshot),
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode response failed", http.StatusInternalServerError)
	}
}

func queryDefault(r *http.Request, key, defaultValue string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
