package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"statlab/adapters/stats/temporal"
	"statlab/domain/core"
	"statlab/domain/retail"
	"statlab/internal"
	"statlab/ports"
)

// DefaultMovingAverageWindow is the slider's initial position
const DefaultMovingAverageWindow = 12

// MonthAbbreviations orders the seasonality rows
var MonthAbbreviations = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Autocorrelation bundles the ACF and PACF of a monthly series
type Autocorrelation struct {
	Business string                `json:"business"`
	ACF      *temporal.Correlogram `json:"acf"`
	PACF     *temporal.Correlogram `json:"pacf"`
}

// RetailService serves the US retail sales page
type RetailService struct {
	repo   ports.RetailRepository
	logger *internal.Logger
}

// NewRetailService creates a retail service
func NewRetailService(repo ports.RetailRepository, logger *internal.Logger) *RetailService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RetailService{repo: repo, logger: logger.WithComponent("RetailService")}
}

// Businesses lists every kind of business in the database
func (s *RetailService) Businesses(ctx context.Context) ([]string, error) {
	return s.repo.ListBusinesses(ctx)
}

// ResolveBusiness returns business, or the first available one when empty
func (s *RetailService) ResolveBusiness(ctx context.Context, business string) (string, error) {
	if business != "" {
		return business, nil
	}
	all, err := s.repo.ListBusinesses(ctx)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", fmt.Errorf("%w: retail database is empty", core.ErrInsufficientData)
	}
	return all[0], nil
}

// Monthly returns the sales series with a trailing moving average
func (s *RetailService) Monthly(ctx context.Context, business string, window int) ([]retail.MonthlySales, error) {
	return s.repo.MonthlySales(ctx, business, window)
}

// Index returns yearly sales relative to the first year
func (s *RetailService) Index(ctx context.Context, business string) ([]retail.YearIndex, error) {
	return s.repo.IndexEvolution(ctx, business)
}

// Growth returns year-over-year growth
func (s *RetailService) Growth(ctx context.Context, business string) ([]retail.YearGrowth, error) {
	return s.repo.YearlyGrowth(ctx, business)
}

// Autocorrelation computes the ACF and PACF of the raw monthly series
func (s *RetailService) Autocorrelation(ctx context.Context, business string, nlags int) (*Autocorrelation, error) {
	if nlags <= 0 {
		nlags = temporal.DefaultLags
	}
	series, err := s.repo.MonthlySales(ctx, business, 0)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(series))
	for i, m := range series {
		values[i] = m.Sales
	}

	acf, err := temporal.ACF(values, nlags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
	}
	pacf, err := temporal.PACF(values, nlags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
	}
	return &Autocorrelation{Business: business, ACF: acf, PACF: pacf}, nil
}

// Seasonality pivots the raw monthly series into a month by year table
func (s *RetailService) Seasonality(ctx context.Context, business string) (*retail.Seasonality, error) {
	series, err := s.repo.MonthlySales(ctx, business, 0)
	if err != nil {
		return nil, err
	}
	return PivotSeasonality(series)
}

// PivotSeasonality sums sales per calendar month and year
func PivotSeasonality(series []retail.MonthlySales) (*retail.Seasonality, error) {
	sums := make(map[int]*[12]*float64)
	for _, m := range series {
		ts, err := time.Parse("2006-01-02", m.Month)
		if err != nil {
			return nil, fmt.Errorf("%w: month %q: %v", core.ErrInvalidInput, m.Month, err)
		}
		row, ok := sums[ts.Year()]
		if !ok {
			row = new([12]*float64)
			sums[ts.Year()] = row
		}
		cell := &row[ts.Month()-1]
		if *cell == nil {
			v := 0.0
			*cell = &v
		}
		**cell += m.Sales
	}

	years := make([]int, 0, len(sums))
	for y := range sums {
		years = append(years, y)
	}
	sort.Ints(years)

	out := &retail.Seasonality{
		Months: append([]string(nil), MonthAbbreviations...),
		Years:  years,
		Values: make([][]*float64, 12),
	}
	for m := range out.Values {
		out.Values[m] = make([]*float64, len(years))
		for j, y := range years {
			out.Values[m][j] = sums[y][m]
		}
	}
	return out, nil
}
