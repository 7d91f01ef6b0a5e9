// Package orders implements the historical day-query side of the portal:
// fetching paginated order pages, normalizing the raw rows, and producing
// a filtered, deterministically sorted record set for a calendar date.
package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawOrder is one order row as returned by the day-query endpoint.
// Fields keep the upstream wire shape; Normalize converts them.
type RawOrder struct {
	// Date is the creation timestamp in dd-MM-yyyy HH:mm:ss format.
	Date string `json:"date"`

	// Code is the public order code.
	Code string `json:"code"`

	// City carries the delivery postcode despite its name.
	City string `json:"city"`

	// Amount is the order total as a comma-decimal string, e.g. "12,50".
	Amount string `json:"amount"`

	// PaidOnline is nullable upstream; absent means cash payment.
	PaidOnline *bool `json:"paid_online"`
}

// Record is the canonical normalized historical order.
type Record struct {
	CreatedAt  time.Time       `json:"createdAt"`
	OrderCode  string          `json:"orderCode"`
	Postcode   string          `json:"postcode"`
	Price      decimal.Decimal `json:"price"`
	PaidOnline bool            `json:"paidOnline"`
}
