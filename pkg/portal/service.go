// Package portal wires the token, orders, and live packages into the
// three operations consumed by a calling shell: EnsureValidToken,
// FetchOrdersByDate, and FetchLiveOrders.
package portal

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/takeawaybill/takeaway-orders-client/pkg/client"
	"github.com/takeawaybill/takeaway-orders-client/pkg/live"
	"github.com/takeawaybill/takeaway-orders-client/pkg/orders"
	"github.com/takeawaybill/takeaway-orders-client/pkg/pagination"
	"github.com/takeawaybill/takeaway-orders-client/pkg/token"
)

// Service is the portal client facade. Every operation is synchronous
// from the caller's perspective; fan-out happens internally.
type Service struct {
	portal     *client.Client
	store      *token.Store
	refresher  *token.Refresher
	aggregator *orders.Aggregator
	liveOrders *live.Fetcher
	logger     zerolog.Logger
}

// New creates a service seeded with the configured refresh token.
func New(cfg client.Config, refreshToken string) (*Service, error) {
	portal, err := client.New(cfg)
	if err != nil {
		return nil, err
	}

	store := token.NewStore(refreshToken)

	return &Service{
		portal:     portal,
		store:      store,
		refresher:  token.NewRefresher(store, portal),
		aggregator: orders.NewAggregator(portal, pagination.DefaultConfig()),
		liveOrders: live.NewFetcher(portal),
		logger:     log.With().Str("component", "portal-service").Logger(),
	}, nil
}

// Client returns the underlying HTTP client (for testing).
func (s *Service) Client() *client.Client {
	return s.portal
}

// Store returns the token store.
func (s *Service) Store() *token.Store {
	return s.store
}

// EnsureValidToken returns an access token that is valid for at least the
// expiry buffer, refreshing it first when needed. Readers never wait on a
// refresh they did not trigger; concurrent refreshes collapse into one
// exchange inside the refresher.
func (s *Service) EnsureValidToken(ctx context.Context) (string, error) {
	pair := s.store.Read()
	if !token.Expired(pair.AccessToken) {
		return pair.AccessToken, nil
	}

	s.logger.Debug().Msg("Access token missing or near expiry, refreshing")

	accessToken, err := s.refresher.Refresh(ctx)
	if err != nil {
		return "", &client.APIError{Class: client.ErrorClassAuth, Message: "token refresh failed", Err: err}
	}
	return accessToken, nil
}

// FetchOrdersByDate returns the normalized, filtered, sorted historical
// orders of one calendar date (YYYY-MM-DD).
func (s *Service) FetchOrdersByDate(ctx context.Context, date, sortColumn, sortDirection string) ([]orders.Record, error) {
	accessToken, err := s.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.aggregator.FetchOrdersByDate(ctx, accessToken, date, sortColumn, sortDirection)
}

// FetchLiveOrders returns the current live-order snapshot, most recent
// first.
func (s *Service) FetchLiveOrders(ctx context.Context) ([]live.Order, error) {
	accessToken, err := s.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.liveOrders.FetchLiveOrders(ctx, accessToken)
}
