package ports

import (
	"context"

	"statlab/domain/dataset"
)

// DatasetReaderPort loads the tabular datasets behind the dashboard pages
type DatasetReaderPort interface {
	PageTimes(ctx context.Context) ([]dataset.PageTime, error)
	MowerOwners(ctx context.Context) ([]dataset.MowerOwner, error)
	LaptopSales(ctx context.Context) ([]dataset.LaptopSale, error)
}
