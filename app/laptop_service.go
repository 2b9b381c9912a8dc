package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"

	"statlab/adapters/battery"
	"statlab/domain/dataset"
	"statlab/domain/permutation"
	"statlab/internal"
	"statlab/internal/profiling"
	"statlab/ports"
)

// DefaultConfigurationBins is the number of equal-width configuration bins
const DefaultConfigurationBins = 10

// Aggregate is a labelled sum of retail prices
type Aggregate struct {
	Label string  `json:"label"`
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

// BinMean is the mean retail price of one configuration bin. Mean is nil for
// an empty bin.
type BinMean struct {
	Label string   `json:"label"`
	Lower float64  `json:"lower"`
	Upper float64  `json:"upper"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
}

// StoreSales aggregates retail prices per store postcode
type StoreSales struct {
	Postcode string  `json:"postcode"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Count    int     `json:"count"`
}

// LaptopReport is everything the laptop sales page displays
type LaptopReport struct {
	Description    []profiling.ColumnDescription `json:"description"`
	PriceHistogram permutation.Histogram         `json:"price_histogram"`
	ByMonth        []Aggregate                   `json:"by_month"`
	ByWeek         []Aggregate                   `json:"by_week"`
	ByWeekday      []Aggregate                   `json:"by_weekday"`
	ByConfig       []BinMean                     `json:"by_configuration"`
	ByStore        []StoreSales                  `json:"by_store"`
}

// LaptopService aggregates the 2008 laptop sales
type LaptopService struct {
	datasets ports.DatasetReaderPort
	profiler ports.ProfilerPort
	settings Settings
	logger   *internal.Logger
}

// NewLaptopService creates a laptop service
func NewLaptopService(datasets ports.DatasetReaderPort, settings Settings, logger *internal.Logger) *LaptopService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LaptopService{
		datasets: datasets,
		profiler: profiling.NewDataProfiler(),
		settings: settings,
		logger:   logger.WithComponent("LaptopService"),
	}
}

// Report loads the sales and computes every aggregation
func (s *LaptopService) Report(ctx context.Context, configBins int) (*LaptopReport, error) {
	if configBins <= 0 {
		configBins = DefaultConfigurationBins
	}

	sales, err := s.datasets.LaptopSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load laptop sales: %w", err)
	}

	prices := make([]float64, len(sales))
	configs := make([]float64, len(sales))
	for i, sale := range sales {
		prices[i] = sale.RetailPrice
		configs[i] = sale.Configuration
	}

	byConfig, err := MeanByBin(configs, prices, configBins)
	if err != nil {
		return nil, err
	}
	// The histogram marker shows the mean price.
	meanPrice, err := stats.Mean(prices)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("laptop report over %d sales", len(sales))

	return &LaptopReport{
		Description: s.profiler.ProfileDataset(map[string][]float64{
			"Configuration": configs,
			"Retail Price":  prices,
		}),
		PriceHistogram: battery.BuildHistogram(prices, s.settings.bins(0), meanPrice),
		ByMonth:        SumByMonth(sales),
		ByWeek:         SumByISOWeek(sales),
		ByWeekday:      SumByWeekday(sales),
		ByConfig:       byConfig,
		ByStore:        SumByStore(sales),
	}, nil
}

// SumByMonth sums prices per calendar month, January first. Months without
// sales are omitted.
func SumByMonth(sales []dataset.LaptopSale) []Aggregate {
	var acc [12]Aggregate
	for _, s := range sales {
		a := &acc[s.Date.Month()-1]
		a.Sum += s.RetailPrice
		a.Count++
	}
	out := make([]Aggregate, 0, 12)
	for m, a := range acc {
		if a.Count == 0 {
			continue
		}
		a.Label = time.Month(m + 1).String()
		out = append(out, a)
	}
	return out
}

// SumByISOWeek sums prices per ISO week number, ascending
func SumByISOWeek(sales []dataset.LaptopSale) []Aggregate {
	acc := make(map[int]*Aggregate)
	for _, s := range sales {
		_, week := s.Date.ISOWeek()
		a, ok := acc[week]
		if !ok {
			a = &Aggregate{Label: strconv.Itoa(week)}
			acc[week] = a
		}
		a.Sum += s.RetailPrice
		a.Count++
	}
	weeks := make([]int, 0, len(acc))
	for w := range acc {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	out := make([]Aggregate, len(weeks))
	for i, w := range weeks {
		out[i] = *acc[w]
	}
	return out
}

// SumByWeekday sums prices per day of week, Monday first
func SumByWeekday(sales []dataset.LaptopSale) []Aggregate {
	var acc [7]Aggregate
	for _, s := range sales {
		// time.Weekday starts on Sunday
		i := (int(s.Date.Weekday()) + 6) % 7
		acc[i].Sum += s.RetailPrice
		acc[i].Count++
	}
	out := make([]Aggregate, 0, 7)
	for i, a := range acc {
		if a.Count == 0 {
			continue
		}
		a.Label = time.Weekday((i + 1) % 7).String()
		out = append(out, a)
	}
	return out
}

// SumByStore sums and averages prices per store postcode, sorted by postcode
func SumByStore(sales []dataset.LaptopSale) []StoreSales {
	acc := make(map[string]*StoreSales)
	for _, s := range sales {
		st, ok := acc[s.StorePostcode]
		if !ok {
			st = &StoreSales{Postcode: s.StorePostcode}
			acc[s.StorePostcode] = st
		}
		st.Sum += s.RetailPrice
		st.Count++
	}
	out := make([]StoreSales, 0, len(acc))
	for _, st := range acc {
		st.Mean = st.Sum / float64(st.Count)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Postcode < out[j].Postcode })
	return out
}

// MeanByBin cuts keys into equal-width right-closed bins spanning their range,
// widening the lowest edge by 0.1% of the range so the minimum is included,
// and averages values per bin.
func MeanByBin(keys, values []float64, bins int) ([]BinMean, error) {
	if len(keys) == 0 || len(keys) != len(values) {
		return nil, fmt.Errorf("mean by bin: need matching non-empty inputs, got %d keys and %d values", len(keys), len(values))
	}
	if bins < 1 {
		return nil, fmt.Errorf("mean by bin: bins must be positive, got %d", bins)
	}

	edges := cutEdges(keys, bins)
	labels := intervalLabels(edges)

	out := make([]BinMean, bins)
	sums := make([]float64, bins)
	for i := range out {
		out[i] = BinMean{Label: labels[i], Lower: edges[i], Upper: edges[i+1]}
	}
	for i, k := range keys {
		// First edge e with k <= e closes the bin to its left.
		b := sort.SearchFloat64s(edges, k) - 1
		if b < 0 {
			b = 0
		}
		if b >= bins {
			b = bins - 1
		}
		out[b].Count++
		sums[b] += values[i]
	}
	for i := range out {
		if out[i].Count > 0 {
			m := sums[i] / float64(out[i].Count)
			out[i].Mean = &m
		}
	}
	return out, nil
}

func cutEdges(keys []float64, bins int) []float64 {
	lo, hi := keys[0], keys[0]
	for _, k := range keys {
		lo = math.Min(lo, k)
		hi = math.Max(hi, k)
	}
	if lo == hi {
		adj := 0.001 * math.Abs(lo)
		if adj == 0 {
			adj = 0.001
		}
		lo, hi = lo-adj, hi+adj
	}

	edges := make([]float64, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[bins] = hi
	edges[0] -= (hi - lo) * 0.001
	return edges
}

// intervalLabels formats "(a, b]" labels with the smallest precision (from 3)
// that keeps every rounded edge distinct.
func intervalLabels(edges []float64) []string {
	precision := 3
	for ; precision < 20; precision++ {
		seen := make(map[float64]bool, len(edges))
		for _, e := range edges {
			seen[roundFrac(e, precision)] = true
		}
		if len(seen) == len(edges) {
			break
		}
	}

	labels := make([]string, len(edges)-1)
	for i := range labels {
		labels[i] = fmt.Sprintf("(%s, %s]", formatEdge(roundFrac(edges[i], precision)), formatEdge(roundFrac(edges[i+1], precision)))
	}
	return labels
}

// roundFrac rounds to precision decimals, or to precision significant digits
// for values below one in magnitude.
func roundFrac(x float64, precision int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 {
		return x
	}
	whole, frac := math.Modf(x)
	digits := precision
	if whole == 0 {
		digits = -int(math.Floor(math.Log10(math.Abs(frac)))) - 1 + precision
	}
	scale := math.Pow(10, float64(digits))
	return math.RoundToEven(x*scale) / scale
}

func formatEdge(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if x == math.Trunc(x) {
		s += ".0"
	}
	return s
}
