package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Prometheus metrics for page fan-out.
var (
	pageFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_page_fetches_total",
		Help: "Total page fetches by result",
	}, []string{"result"})
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency caps the number of page fetches in flight.
	// Zero or negative runs one goroutine per page without a cap.
	MaxConcurrency int
}

// DefaultConfig returns the default fan-out configuration.
// Day queries rarely exceed a handful of pages, so no cap is applied.
func DefaultConfig() Config {
	return Config{MaxConcurrency: 0}
}

// Fetcher fetches a single page of a paginated result set.
type Fetcher[T any] interface {
	FetchPage(ctx context.Context, page int) (T, error)
}

// Result is the outcome of fetching one page.
type Result[T any] struct {
	Page  int
	Batch T
	Err   error
}

// BatchFetcher fans one fetch per page out across goroutines and joins
// them with a full barrier.
type BatchFetcher[T any] struct {
	fetcher Fetcher[T]
	config  Config
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher[T any](fetcher Fetcher[T], config Config) *BatchFetcher[T] {
	return &BatchFetcher[T]{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches pages 1..totalPages concurrently and returns one result
// per page, ordered by page number. It returns only after every dispatched
// fetch has completed. Failed pages carry their error and are not retried
// here; the caller decides whether to drop or abort.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context, totalPages int) []Result[T] {
	if totalPages < 1 {
		totalPages = 1
	}

	start := time.Now()
	results := make([]Result[T], totalPages)

	var sem *semaphore.Weighted
	if bf.config.MaxConcurrency > 0 {
		sem = semaphore.NewWeighted(int64(bf.config.MaxConcurrency))
	}

	var wg sync.WaitGroup
	for page := 1; page <= totalPages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()

			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					pageFetchesTotal.WithLabelValues("error").Inc()
					results[page-1] = Result[T]{Page: page, Err: err}
					return
				}
				defer sem.Release(1)
			}

			// Each worker writes only its own slot, so the slice needs
			// no lock; the WaitGroup barrier publishes the writes.
			batch, err := bf.fetcher.FetchPage(ctx, page)
			if err != nil {
				pageFetchesTotal.WithLabelValues("error").Inc()
				results[page-1] = Result[T]{Page: page, Err: err}
				return
			}

			pageFetchesTotal.WithLabelValues("ok").Inc()
			results[page-1] = Result[T]{Page: page, Batch: batch}
		}(page)
	}
	wg.Wait()

	log.Debug().
		Int("total_pages", totalPages).
		Dur("duration", time.Since(start)).
		Msg("Page fan-out complete")

	return results
}
