package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryBuffer is the safety margin applied to the embedded expiry.
// Tokens within the buffer are treated as expired to cover clock skew and
// requests still in flight when the token lapses.
const ExpiryBuffer = 5 * time.Minute

// Expired reports whether the access token is missing, malformed, or
// expires within ExpiryBuffer of now. Any decode failure reads as expired.
func Expired(accessToken string) bool {
	exp := ExpiryOf(accessToken)
	if exp.IsZero() {
		return true
	}
	return time.Until(exp) <= ExpiryBuffer
}

// ExpiryOf extracts the exp claim of a JWT-style access token without
// verifying its signature. Returns the zero time when the token is empty,
// malformed, or carries no exp claim.
func ExpiryOf(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
