package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/takeawaybill/takeaway-orders-client/pkg/client"
	"github.com/takeawaybill/takeaway-orders-client/pkg/pagination"
)

// Prometheus metrics for order aggregation.
var (
	aggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_order_aggregations_total",
		Help: "Total day-query aggregations by result",
	}, []string{"result"})

	aggregationDroppedPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_order_aggregation_dropped_pages_total",
		Help: "Pages dropped from aggregations due to fetch failures",
	})

	aggregationDroppedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_order_aggregation_dropped_records_total",
		Help: "Records dropped from aggregations due to normalization failures",
	})
)

// inputDateLayout is the calendar date format accepted by FetchOrdersByDate.
const inputDateLayout = "2006-01-02"

// Aggregator fetches, merges, and normalizes a full day of historical
// orders across all pages of the day-query endpoint.
type Aggregator struct {
	portal *client.Client
	config pagination.Config
	logger zerolog.Logger
}

// NewAggregator creates an aggregator using the given fan-out configuration.
func NewAggregator(portal *client.Client, cfg pagination.Config) *Aggregator {
	return &Aggregator{
		portal: portal,
		config: cfg,
		logger: log.With().Str("component", "order-aggregator").Logger(),
	}
}

// FetchOrdersByDate returns the normalized, filtered, sorted orders of one
// calendar date (YYYY-MM-DD).
//
// The provider buckets orders by reporting week with Sunday as the
// boundary, so a Sunday query is shifted forward one day before computing
// the year/day-of-year period key; the day-of-month filter below still
// uses the original date, which keeps adjacent-day records out.
//
// Individual page failures degrade completeness, not the call: failed
// pages are logged and dropped. The call fails hard only when page
// discovery fails or every page failed.
func (a *Aggregator) FetchOrdersByDate(ctx context.Context, token, date, sortColumn, sortDirection string) ([]Record, error) {
	day, err := time.Parse(inputDateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}

	queryDay := day
	if day.Weekday() == time.Sunday {
		queryDay = day.AddDate(0, 0, 1)
	}
	year, dayOfYear := queryDay.Year(), queryDay.YearDay()

	start := time.Now()

	totalPages, err := a.discoverTotalPages(ctx, token, year, dayOfYear)
	if err != nil {
		aggregationsTotal.WithLabelValues("error").Inc()
		a.logger.Error().Err(err).Str("date", date).Msg("Page discovery failed")
		return nil, fmt.Errorf("discover pages: %w", err)
	}

	fetcher := NewPageFetcher(a.portal, token, year, dayOfYear, a.logger)
	results := pagination.NewBatchFetcher[[]RawOrder](fetcher, a.config).FetchAll(ctx, totalPages)

	var merged []RawOrder
	failedPages := 0
	for _, result := range results {
		if result.Err != nil {
			failedPages++
			aggregationDroppedPages.Inc()
			a.logger.Warn().
				Err(result.Err).
				Int("page", result.Page).
				Str("date", date).
				Msg("Page dropped from aggregation")
			continue
		}
		merged = append(merged, result.Batch...)
	}

	if failedPages == totalPages {
		aggregationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("all %d pages failed for %s", totalPages, date)
	}

	records := make([]Record, 0, len(merged))
	for _, raw := range merged {
		record, err := Normalize(raw)
		if err != nil {
			aggregationDroppedRecords.Inc()
			a.logger.Warn().
				Err(err).
				Str("order_code", raw.Code).
				Msg("Record dropped from aggregation")
			continue
		}

		// The Sunday shift can pull in adjacent-day records; keep only
		// those created on the originally requested day of month.
		if record.CreatedAt.Day() != day.Day() {
			continue
		}
		records = append(records, record)
	}

	if err := SortRecords(records, sortColumn, sortDirection); err != nil {
		aggregationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	aggregationsTotal.WithLabelValues("success").Inc()
	a.logger.Info().
		Str("date", date).
		Int("records", len(records)).
		Int("pages", totalPages-failedPages).
		Int("dropped_pages", failedPages).
		Dur("duration", time.Since(start)).
		Msg("Order aggregation complete")

	return records, nil
}

// discoverTotalPages issues the pageless day query and reads
// meta.total_pages, defaulting to 1 when absent. Any failure here aborts
// the aggregation.
func (a *Aggregator) discoverTotalPages(ctx context.Context, token string, year, dayOfYear int) (int, error) {
	url := DayQueryURL(a.portal.Config().OrdersURL, year, dayOfYear, 0)

	body, err := a.portal.Get(ctx, url, token)
	if err != nil {
		return 0, err
	}

	obj, outcome, msg := client.DecodeObject(body)
	if outcome != client.DecodeOK {
		return 0, client.ErrorFromOutcome(outcome, msg)
	}

	rawMeta, ok := obj.Field("meta")
	if !ok || string(rawMeta) == "null" {
		return 1, nil
	}

	var meta struct {
		TotalPages int `json:"total_pages"`
	}
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return 0, &client.APIError{Class: client.ErrorClassDecode, Message: "meta field is not an object", Err: err}
	}

	if meta.TotalPages < 1 {
		return 1, nil
	}
	return meta.TotalPages, nil
}
