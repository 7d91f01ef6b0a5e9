package live

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/takeawaybill/takeaway-orders-client/pkg/client"
)

// Prometheus metrics for live order fetching.
var (
	liveFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_live_fetches_total",
		Help: "Total live-order fetches by result",
	}, []string{"result"})

	liveRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_live_retries_total",
		Help: "Total live-order fetch attempts that failed and were retried",
	})

	liveRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_live_retry_exhausted_total",
		Help: "Total live-order fetches that exhausted all attempts",
	})
)

// MaxAttempts is the total number of tries per live fetch, including the
// first. The live endpoint sits behind an anti-bot layer that fails
// transiently, so the whole request+decode is retried back to back.
const MaxAttempts = 10

// Fetcher retrieves the live-order snapshot.
type Fetcher struct {
	portal *client.Client
	logger zerolog.Logger
}

// NewFetcher creates a live-order fetcher.
func NewFetcher(portal *client.Client) *Fetcher {
	return &Fetcher{
		portal: portal,
		logger: log.With().Str("component", "live-fetcher").Logger(),
	}
}

// FetchLiveOrders returns the current live orders sorted by placedDate
// descending; orders without a placedDate sort last. Each fetch produces a
// fresh, independently owned result tree.
//
// Any failure during request or decode retries immediately, up to
// MaxAttempts total tries with no backoff; the final attempt's error is
// propagated. Context cancellation ends the loop early. There is no
// wall-clock budget beyond the per-request transport timeout.
func (f *Fetcher) FetchLiveOrders(ctx context.Context, token string) ([]Order, error) {
	var lastErr error

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		orders, err := f.fetchOnce(ctx, token)
		if err == nil {
			if attempt > 1 {
				f.logger.Info().
					Int("attempt", attempt).
					Msg("Live fetch succeeded after retry")
			}
			liveFetchesTotal.WithLabelValues("success").Inc()
			f.logger.Info().Int("orders", len(orders)).Msg("Live orders retrieved")
			return orders, nil
		}

		lastErr = err
		f.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("Live fetch attempt failed")

		// A canceled context fails every remaining attempt the same way,
		// so stop retrying instead of burning them.
		if ctx.Err() != nil {
			liveFetchesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("live fetch canceled after %d attempts: %w", attempt, ctx.Err())
		}

		if attempt < MaxAttempts {
			liveRetriesTotal.Inc()
		}
	}

	liveRetryExhaustedTotal.Inc()
	liveFetchesTotal.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("%w after %d attempts: %v", client.ErrRetryExhausted, MaxAttempts, lastErr)
}

// fetchOnce performs one request+decode+map cycle.
func (f *Fetcher) fetchOnce(ctx context.Context, token string) ([]Order, error) {
	body, err := f.portal.Get(ctx, f.portal.Config().LiveOrdersURL, token)
	if err != nil {
		return nil, err
	}

	var wire []wireOrder
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &client.APIError{Class: client.ErrorClassDecode, Message: "response is not a JSON array", Err: err}
	}

	orders := make([]Order, 0, len(wire))
	for _, w := range wire {
		orders = append(orders, mapOrder(w))
	}

	// Most recent first; the empty string sorts below every timestamp.
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].PlacedDate > orders[j].PlacedDate
	})

	return orders, nil
}
