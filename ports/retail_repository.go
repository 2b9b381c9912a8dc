package ports

import (
	"context"

	"statlab/domain/retail"
)

// RetailRepository queries the US retail sales database
type RetailRepository interface {
	// ListBusinesses returns every distinct kind of business, sorted
	ListBusinesses(ctx context.Context) ([]string, error)

	// MonthlySales returns the monthly series with a trailing moving average
	// over window months. Months without a full window are dropped; window 0
	// returns the raw series.
	MonthlySales(ctx context.Context, business string, window int) ([]retail.MonthlySales, error)

	// IndexEvolution returns yearly totals relative to the first year
	IndexEvolution(ctx context.Context, business string) ([]retail.YearIndex, error)

	// YearlyGrowth returns yearly totals with growth over the previous year
	YearlyGrowth(ctx context.Context, business string) ([]retail.YearGrowth, error)

	// ImportSales appends raw records and returns how many were written
	ImportSales(ctx context.Context, records []retail.SalesRecord) (int, error)
}
