// Package token manages the rotating OAuth credential pair for the
// restaurant portal: a thread-safe store, a refresher performing the
// refresh-token grant, and a freshness check on the access token.
package token

import (
	"sync"
	"time"
)

// Pair holds the current refresh/access token pair.
type Pair struct {
	// AccessToken is the short-lived bearer credential, empty until the
	// first successful refresh.
	AccessToken string

	// RefreshToken is the longer-lived credential exchanged for new access
	// tokens. Replaced only when the provider rotates it.
	RefreshToken string

	// AccessExpiry is the expiry embedded in the access token, zero when
	// the token is absent or carries no parseable exp claim.
	AccessExpiry time.Time
}

// Store holds the current token pair. It is safe for one writer (the
// refresher) and many concurrent readers; reads never wait on a refresh
// in flight and always see a complete pre- or post-refresh snapshot.
type Store struct {
	mu   sync.RWMutex
	pair Pair
}

// NewStore creates a store seeded with the configured refresh token.
// The access token starts empty and reads as expired until refreshed.
func NewStore(refreshToken string) *Store {
	return &Store{
		pair: Pair{RefreshToken: refreshToken},
	}
}

// Read returns a snapshot of the current token pair.
func (s *Store) Read() Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

// Replace atomically swaps in a new access token. An empty refreshToken
// keeps the stored refresh token; the provider only rotates sometimes, and
// re-storing the old value could clobber a concurrent rotation.
func (s *Store) Replace(accessToken, refreshToken string) {
	expiry := ExpiryOf(accessToken)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair.AccessToken = accessToken
	s.pair.AccessExpiry = expiry
	if refreshToken != "" {
		s.pair.RefreshToken = refreshToken
	}
}
