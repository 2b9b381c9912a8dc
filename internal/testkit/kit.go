package testkit

import (
	"context"

	"github.com/stretchr/testify/mock"

	"statlab/adapters/battery"
	"statlab/adapters/rng"
	"statlab/domain/dataset"
	"statlab/domain/retail"
	"statlab/internal"
	"statlab/ports"
)

// NewEngine returns a permutation engine backed by the seeded RNG adapter
// with logging silenced.
func NewEngine() *battery.PermutationEngine {
	logger := internal.NewLogger(internal.LogLevelError)
	return battery.NewPermutationEngine(rng.NewSeededAdapter(), logger)
}

// MockDatasetReader is a testify mock of ports.DatasetReaderPort
type MockDatasetReader struct {
	mock.Mock
}

var _ ports.DatasetReaderPort = (*MockDatasetReader)(nil)

func (m *MockDatasetReader) PageTimes(ctx context.Context) ([]dataset.PageTime, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]dataset.PageTime)
	return rows, args.Error(1)
}

func (m *MockDatasetReader) MowerOwners(ctx context.Context) ([]dataset.MowerOwner, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]dataset.MowerOwner)
	return rows, args.Error(1)
}

func (m *MockDatasetReader) LaptopSales(ctx context.Context) ([]dataset.LaptopSale, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]dataset.LaptopSale)
	return rows, args.Error(1)
}

// MockRetailRepository is a testify mock of ports.RetailRepository
type MockRetailRepository struct {
	mock.Mock
}

var _ ports.RetailRepository = (*MockRetailRepository)(nil)

func (m *MockRetailRepository) ListBusinesses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]string)
	return rows, args.Error(1)
}

func (m *MockRetailRepository) MonthlySales(ctx context.Context, business string, window int) ([]retail.MonthlySales, error) {
	args := m.Called(ctx, business, window)
	rows, _ := args.Get(0).([]retail.MonthlySales)
	return rows, args.Error(1)
}

func (m *MockRetailRepository) IndexEvolution(ctx context.Context, business string) ([]retail.YearIndex, error) {
	args := m.Called(ctx, business)
	rows, _ := args.Get(0).([]retail.YearIndex)
	return rows, args.Error(1)
}

func (m *MockRetailRepository) YearlyGrowth(ctx context.Context, business string) ([]retail.YearGrowth, error) {
	args := m.Called(ctx, business)
	rows, _ := args.Get(0).([]retail.YearGrowth)
	return rows, args.Error(1)
}

func (m *MockRetailRepository) ImportSales(ctx context.Context, records []retail.SalesRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

// FourSessions is the page/time dataset shown on the ANOVA page
func FourSessions() []dataset.PageTime {
	times := [][]float64{
		{164, 172, 177, 156, 195},
		{178, 191, 182, 185, 177},
		{175, 193, 171, 163, 176},
		{155, 166, 164, 170, 168},
	}
	pages := []string{"Page 1", "Page 2", "Page 3", "Page 4"}

	var rows []dataset.PageTime
	for i := 0; i < 5; i++ {
		for p, page := range pages {
			rows = append(rows, dataset.PageTime{Page: page, Time: times[p][i]})
		}
	}
	return rows
}
