package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/takeawaybill/takeaway-orders-client/pkg/client"
)

// PageFetcher fetches one page of the day-query endpoint for a fixed
// reporting period. It satisfies pagination.Fetcher.
type PageFetcher struct {
	portal    *client.Client
	token     string
	year      int
	dayOfYear int
	logger    zerolog.Logger
}

// NewPageFetcher creates a page fetcher for one reporting period.
func NewPageFetcher(portal *client.Client, token string, year, dayOfYear int, logger zerolog.Logger) *PageFetcher {
	return &PageFetcher{
		portal:    portal,
		token:     token,
		year:      year,
		dayOfYear: dayOfYear,
		logger:    logger,
	}
}

// FetchPage fetches a single page and returns its raw order batch without
// normalization. A non-object body or an in-band error field is a soft
// failure: the error is returned for the caller to drop the page.
func (f *PageFetcher) FetchPage(ctx context.Context, page int) ([]RawOrder, error) {
	url := DayQueryURL(f.portal.Config().OrdersURL, f.year, f.dayOfYear, page)

	body, err := f.portal.Get(ctx, url, f.token)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}

	obj, outcome, msg := client.DecodeObject(body)
	if outcome != client.DecodeOK {
		return nil, fmt.Errorf("page %d: %w", page, client.ErrorFromOutcome(outcome, msg))
	}

	batch, err := extractOrders(obj)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}

	f.logger.Debug().
		Int("page", page).
		Int("orders", len(batch)).
		Msg("Page fetched")

	return batch, nil
}

// DayQueryURL builds the day-query URL. Page 0 omits the page parameter,
// which is the discovery form of the call.
func DayQueryURL(ordersURL string, year, dayOfYear, page int) string {
	url := fmt.Sprintf("%s?period_type=day&year=%d&number=%d", ordersURL, year, dayOfYear)
	if page > 0 {
		url = fmt.Sprintf("%s&page=%d", url, page)
	}
	return url
}

// extractOrders pulls data.orders out of a decoded day-query response.
// A missing data or orders field is an empty batch, not an error.
func extractOrders(obj client.Object) ([]RawOrder, error) {
	rawData, ok := obj.Field("data")
	if !ok || string(rawData) == "null" {
		return nil, nil
	}

	var data struct {
		Orders []RawOrder `json:"orders"`
	}
	if err := json.Unmarshal(rawData, &data); err != nil {
		return nil, &client.APIError{Class: client.ErrorClassDecode, Message: "data field is not an object", Err: err}
	}

	return data.Orders, nil
}
