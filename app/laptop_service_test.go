package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"statlab/domain/core"
	"statlab/domain/dataset"
	"statlab/internal/testkit"
)

func sale(date string, price float64, config float64, store string) dataset.LaptopSale {
	d, _ := time.Parse("2006-01-02", date)
	return dataset.LaptopSale{Date: d, RetailPrice: price, Configuration: config, StorePostcode: store}
}

func TestMeanByBin_Labels(t *testing.T) {
	keys := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	out, err := MeanByBin(keys, values, 10)
	require.NoError(t, err)
	require.Len(t, out, 10)

	assert.Equal(t, "(0.991, 1.9]", out[0].Label)
	assert.Equal(t, "(1.9, 2.8]", out[1].Label)
	assert.Equal(t, "(9.1, 10.0]", out[9].Label)
	for i, b := range out {
		assert.Equal(t, 1, b.Count, "bin %d", i)
		require.NotNil(t, b.Mean)
		assert.InDelta(t, values[i], *b.Mean, 1e-9)
	}
}

func TestMeanByBin_EmptyBinHasNilMean(t *testing.T) {
	out, err := MeanByBin([]float64{0, 0, 10}, []float64{1, 3, 8}, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, out[0].Count)
	assert.InDelta(t, 2.0, *out[0].Mean, 1e-9)
	assert.Equal(t, 1, out[1].Count)

	out, err = MeanByBin([]float64{0, 10}, []float64{1, 2}, 3)
	require.NoError(t, err)
	assert.Nil(t, out[1].Mean)
}

func TestMeanByBin_Errors(t *testing.T) {
	_, err := MeanByBin(nil, nil, 10)
	assert.Error(t, err)
	_, err = MeanByBin([]float64{1}, []float64{1, 2}, 10)
	assert.Error(t, err)
	_, err = MeanByBin([]float64{1}, []float64{1}, 0)
	assert.Error(t, err)
}

func TestFormatEdge(t *testing.T) {
	assert.Equal(t, "864.0", formatEdge(864))
	assert.Equal(t, "0.991", formatEdge(0.991))
	assert.Equal(t, 0.00123, roundFrac(0.0012345, 3))
	assert.Equal(t, 12.346, roundFrac(12.34567, 3))
}

func TestCalendarSums(t *testing.T) {
	sales := []dataset.LaptopSale{
		sale("2008-01-01", 100, 1, "SW1P 3AU"), // Tuesday, ISO week 1
		sale("2008-01-07", 200, 2, "E2 0RY"),   // Monday, ISO week 2
		sale("2008-03-04", 50, 3, "SW1P 3AU"),  // Tuesday, ISO week 10
	}

	byMonth := SumByMonth(sales)
	require.Len(t, byMonth, 2)
	assert.Equal(t, Aggregate{Label: "January", Sum: 300, Count: 2}, byMonth[0])
	assert.Equal(t, "March", byMonth[1].Label)

	byWeek := SumByISOWeek(sales)
	require.Len(t, byWeek, 3)
	assert.Equal(t, []string{"1", "2", "10"}, []string{byWeek[0].Label, byWeek[1].Label, byWeek[2].Label})

	byDay := SumByWeekday(sales)
	require.Len(t, byDay, 2)
	assert.Equal(t, Aggregate{Label: "Monday", Sum: 200, Count: 1}, byDay[0])
	assert.Equal(t, Aggregate{Label: "Tuesday", Sum: 150, Count: 2}, byDay[1])

	byStore := SumByStore(sales)
	require.Len(t, byStore, 2)
	assert.Equal(t, "E2 0RY", byStore[0].Postcode)
	assert.Equal(t, StoreSales{Postcode: "SW1P 3AU", Sum: 150, Mean: 75, Count: 2}, byStore[1])
}

func TestLaptopService_Report(t *testing.T) {
	sales := testkit.NewLaptopSalesGenerator(testkit.DefaultLaptopConfig()).Generate()

	reader := new(testkit.MockDatasetReader)
	reader.On("LaptopSales", mock.Anything).Return(sales, nil)

	svc := NewLaptopService(reader, DefaultSettings(), quiet)
	report, err := svc.Report(context.Background(), 0)
	require.NoError(t, err)

	assert.Len(t, report.ByConfig, DefaultConfigurationBins)
	assert.Len(t, report.PriceHistogram.Bins, 50)
	require.Len(t, report.Description, 2)
	assert.Equal(t, "Configuration", report.Description[0].Column)
	assert.Equal(t, len(sales), report.Description[1].Description.Count)

	total := 0
	for _, m := range report.ByMonth {
		total += m.Count
	}
	assert.Equal(t, len(sales), total)
	reader.AssertExpectations(t)
}

func TestLaptopService_MissingFile(t *testing.T) {
	reader := new(testkit.MockDatasetReader)
	reader.On("LaptopSales", mock.Anything).Return(nil, core.ErrDatasetNotFound)

	svc := NewLaptopService(reader, DefaultSettings(), quiet)
	_, err := svc.Report(context.Background(), 0)
	assert.True(t, core.IsNotFoundError(err))
}
