package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statlab/domain/core"
)

func newTestAdapter(t *testing.T, dir, laptopFile string) *DatasetAdapter {
	t.Helper()
	return NewDatasetAdapter(NewDataReader(DefaultReaderConfig(), nil), dir, laptopFile, nil)
}

func TestDatasetAdapter_PageTimes(t *testing.T) {
	a := newTestAdapter(t, t.TempDir(), "")

	rows, err := a.PageTimes(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 20)
	assert.Equal(t, "Page 1", rows[0].Page)
	assert.Equal(t, 164.0, rows[0].Time)
	assert.Equal(t, "Page 4", rows[19].Page)
	assert.Equal(t, 168.0, rows[19].Time)
}

func TestDatasetAdapter_MowerOwners(t *testing.T) {
	a := newTestAdapter(t, t.TempDir(), "")

	rows, err := a.MowerOwners(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 24)

	owners := 0
	for _, r := range rows {
		if r.Ownership == "Owner" {
			owners++
		}
	}
	assert.Equal(t, 12, owners)
	assert.Equal(t, 60.0, rows[0].Income)
	assert.Equal(t, 18.4, rows[0].LotSize)
}

func TestDatasetAdapter_OverrideFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "four_sessions.csv"),
		[]byte("Page,Time\nA,1\nB,2\n"), 0o644))

	a := newTestAdapter(t, dir, "")
	rows, err := a.PageTimes(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDatasetAdapter_LaptopSales(t *testing.T) {
	dir := t.TempDir()
	csv := "Date,Configuration,Customer Postcode,Store Postcode,Retail Price\n" +
		"1/1/2008 0:01,163,EC4V 5BH,SE1 2BN,455\n" +
		"1/1/2008 0:02,320,SW4 0JL,SW12 9HD,545\n" +
		"1/2/2008 10:15,23,EC3V 1LR,E2 0RY,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "LaptopSales.csv"), []byte(csv), 0o644))

	a := newTestAdapter(t, dir, "LaptopSales.csv")
	sales, err := a.LaptopSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 2)

	assert.Equal(t, time.Date(2008, 1, 1, 0, 1, 0, 0, time.UTC), sales[0].Date)
	assert.Equal(t, 163.0, sales[0].Configuration)
	assert.Equal(t, 455.0, sales[0].RetailPrice)
	assert.Equal(t, "SW12 9HD", sales[1].StorePostcode)
}

func TestDatasetAdapter_LaptopSalesMissing(t *testing.T) {
	a := newTestAdapter(t, t.TempDir(), "LaptopSales.csv")
	_, err := a.LaptopSales(context.Background())
	assert.True(t, core.IsNotFoundError(err))

	a = newTestAdapter(t, t.TempDir(), "")
	_, err = a.LaptopSales(context.Background())
	assert.ErrorIs(t, err, core.ErrDatasetNotFound)
}

func TestDatasetAdapter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAdapter(t, t.TempDir(), "")
	_, err := a.PageTimes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
