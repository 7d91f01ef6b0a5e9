// Package pagination provides parallel batch fetching for paginated
// portal endpoints.
//
// The portal reports the page count in the meta.total_pages field of the
// day-query response, and individual pages are independent, so all pages
// of a day can be fetched in parallel.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher[[]orders.RawOrder](pageFetcher, pagination.DefaultConfig())
//	results := fetcher.FetchAll(ctx, totalPages)
//
// The batch fetcher:
//   - Dispatches one fetch task per page (optionally capped)
//   - Joins all tasks with a full barrier, never returning partial results
//   - Returns per-page results in page order, failures included
//
// A failed page never aborts the fan-out; the caller inspects each result
// and chooses between dropping the page and failing the whole fetch.
package pagination
