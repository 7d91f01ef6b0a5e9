package orders

import (
	"fmt"
	"sort"
)

// Columns accepted by SortRecords.
const (
	SortByCreatedAt = "createdAt"
	SortByOrderCode = "orderCode"
	SortByPostcode  = "postcode"
	SortByPrice     = "price"
)

// Sort directions. Any direction other than SortAsc sorts descending.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortRecords stably sorts records in place by the given column. Ties keep
// their relative merge order in both directions. An unknown column is an
// error; the caller picked it, not the provider.
func SortRecords(records []Record, column, direction string) error {
	var less func(a, b Record) bool

	switch column {
	case SortByCreatedAt:
		less = func(a, b Record) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortByOrderCode:
		less = func(a, b Record) bool { return a.OrderCode < b.OrderCode }
	case SortByPostcode:
		less = func(a, b Record) bool { return a.Postcode < b.Postcode }
	case SortByPrice:
		less = func(a, b Record) bool { return a.Price.LessThan(b.Price) }
	default:
		return fmt.Errorf("unknown sort column %q", column)
	}

	ascending := direction == SortAsc
	sort.SliceStable(records, func(i, j int) bool {
		if ascending {
			return less(records[i], records[j])
		}
		// Swapped arguments instead of a negated comparator so equal
		// elements stay stable when descending.
		return less(records[j], records[i])
	})

	return nil
}
