package token

import (
	"context"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/takeawaybill/takeaway-orders-client/pkg/client"
)

// Prometheus metrics for token operations.
var (
	tokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_token_refreshes_total",
		Help: "Total token refresh attempts by result",
	}, []string{"result"})

	tokenRotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_token_rotations_total",
		Help: "Total refresh token rotations received from the provider",
	})
)

// Refresher exchanges the stored refresh token for a new access token and
// updates the store on success. Concurrent refreshes collapse into a single
// upstream exchange via singleflight; a refresh token is single-use once
// the provider rotates, so parallel exchanges would invalidate each other.
type Refresher struct {
	store  *Store
	portal *client.Client
	group  singleflight.Group
	logger zerolog.Logger
}

// NewRefresher creates a refresher bound to the given store and client.
func NewRefresher(store *Store, portal *client.Client) *Refresher {
	return &Refresher{
		store:  store,
		portal: portal,
		logger: log.With().Str("component", "token-refresher").Logger(),
	}
}

// Refresh performs the refresh-token grant and returns the new access
// token. Failures are returned, not retried; the caller decides whether a
// failed refresh is session-fatal.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	v, err, _ := r.group.Do("refresh", func() (any, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Refresher) refresh(ctx context.Context) (string, error) {
	cfg := r.portal.Config()
	pair := r.store.Read()

	r.logger.Debug().Msg("Refreshing portal access token")

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {cfg.ClientID},
		"refresh_token": {pair.RefreshToken},
	}

	body, err := r.portal.PostForm(ctx, cfg.TokenURL, form)
	if err != nil {
		tokenRefreshesTotal.WithLabelValues("error").Inc()
		r.logger.Error().Err(err).Msg("Token exchange request failed")
		return "", err
	}

	obj, outcome, msg := client.DecodeObject(body)
	if outcome != client.DecodeOK {
		tokenRefreshesTotal.WithLabelValues("error").Inc()
		apiErr := client.ErrorFromOutcome(outcome, msg)
		r.logger.Error().
			Err(apiErr).
			Str("outcome", outcome.String()).
			Msg("Token exchange returned unusable response")
		return "", apiErr
	}

	accessToken, ok := obj.StringField("access_token")
	if !ok || accessToken == "" {
		tokenRefreshesTotal.WithLabelValues("error").Inc()
		apiErr := client.ErrorFromOutcome(client.DecodeMissingField, "access_token")
		r.logger.Error().Err(apiErr).Msg("Token exchange response missing access token")
		return "", apiErr
	}

	// Rotation: only store a refresh token the provider actually returned.
	refreshToken, _ := obj.StringField("refresh_token")
	r.store.Replace(accessToken, refreshToken)

	tokenRefreshesTotal.WithLabelValues("success").Inc()
	if refreshToken != "" {
		tokenRotationsTotal.Inc()
		r.logger.Info().Msg("Access token refreshed, refresh token rotated")
	} else {
		r.logger.Info().Msg("Access token refreshed")
	}

	return accessToken, nil
}
