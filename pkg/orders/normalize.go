package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// wireTimeLayout is the creation timestamp format of the day-query
// endpoint (dd-MM-yyyy HH:mm:ss).
const wireTimeLayout = "02-01-2006 15:04:05"

// Normalize converts a raw wire order into a canonical Record:
// comma-decimal amount to a non-negative price, nullable paid_online to a
// plain bool (absent means cash), wire timestamp to time.Time, and the
// upstream code/city fields to orderCode/postcode.
func Normalize(raw RawOrder) (Record, error) {
	price, err := ParseAmount(raw.Amount)
	if err != nil {
		return Record{}, fmt.Errorf("parse amount: %w", err)
	}

	createdAt, err := time.Parse(wireTimeLayout, raw.Date)
	if err != nil {
		return Record{}, fmt.Errorf("parse date: %w", err)
	}

	return Record{
		CreatedAt:  createdAt,
		OrderCode:  raw.Code,
		Postcode:   raw.City,
		Price:      price,
		PaidOnline: raw.PaidOnline != nil && *raw.PaidOnline,
	}, nil
}

// ParseAmount parses a locale-formatted amount ("12,50") into a
// non-negative decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, err
	}

	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %q", s)
	}
	return d, nil
}
