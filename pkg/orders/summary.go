package orders

import (
	"github.com/shopspring/decimal"
)

// Summary aggregates headline figures over one day's records.
type Summary struct {
	TotalOrders  int             `json:"totalOrders"`
	PaidOnline   int             `json:"paidOnline"`
	CashPayment  int             `json:"cashPayment"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// Summarize computes the summary of a record set.
func Summarize(records []Record) Summary {
	summary := Summary{
		TotalOrders:  len(records),
		TotalRevenue: decimal.Zero,
	}

	for _, record := range records {
		if record.PaidOnline {
			summary.PaidOnline++
		} else {
			summary.CashPayment++
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(record.Price)
	}

	return summary
}
