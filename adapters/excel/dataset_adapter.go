package excel

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"statlab/datasets"
	"statlab/domain/core"
	"statlab/domain/dataset"
	"statlab/internal"
	"statlab/ports"
)

// Column names of the bundled and external datasets
const (
	colPage          = "Page"
	colTime          = "Time"
	colIncome        = "Income"
	colLotSize       = "Lot_Size"
	colOwnership     = "Ownership"
	colDate          = "Date"
	colConfiguration = "Configuration"
	colRetailPrice   = "Retail Price"
	colStorePostcode = "Store Postcode"
)

// DatasetAdapter implements ports.DatasetReaderPort. The four-sessions and
// riding mowers datasets come from the embedded bundle unless a file of the
// same name exists in the datasets directory; laptop sales are always read
// from disk.
type DatasetAdapter struct {
	reader      *DataReader
	bundle      fs.FS
	datasetsDir string
	laptopFile  string
	logger      *internal.Logger
}

var _ ports.DatasetReaderPort = (*DatasetAdapter)(nil)

// NewDatasetAdapter creates a dataset adapter rooted at datasetsDir.
// laptopFile may be absolute or relative to datasetsDir.
func NewDatasetAdapter(reader *DataReader, datasetsDir, laptopFile string, logger *internal.Logger) *DatasetAdapter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if laptopFile != "" && !filepath.IsAbs(laptopFile) {
		laptopFile = filepath.Join(datasetsDir, laptopFile)
	}
	return &DatasetAdapter{
		reader:      reader,
		bundle:      datasets.FS,
		datasetsDir: datasetsDir,
		laptopFile:  laptopFile,
		logger:      logger.WithComponent("DatasetAdapter"),
	}
}

// PageTimes loads the four-sessions dataset
func (a *DatasetAdapter) PageTimes(ctx context.Context) ([]dataset.PageTime, error) {
	table, err := a.bundled(ctx, dataset.FourSessions, datasets.FourSessionsFile)
	if err != nil {
		return nil, err
	}
	if err := table.Require(colPage, colTime); err != nil {
		return nil, err
	}
	times, err := table.Floats(colTime)
	if err != nil {
		return nil, err
	}

	out := make([]dataset.PageTime, table.Len())
	for i, row := range table.Rows {
		out[i] = dataset.PageTime{Page: row[colPage], Time: times[i]}
	}
	return out, nil
}

// MowerOwners loads the riding mowers dataset
func (a *DatasetAdapter) MowerOwners(ctx context.Context) ([]dataset.MowerOwner, error) {
	table, err := a.bundled(ctx, dataset.RidingMowers, datasets.RidingMowersFile)
	if err != nil {
		return nil, err
	}
	if err := table.Require(colIncome, colLotSize, colOwnership); err != nil {
		return nil, err
	}
	income, err := table.Floats(colIncome)
	if err != nil {
		return nil, err
	}
	lotSize, err := table.Floats(colLotSize)
	if err != nil {
		return nil, err
	}

	out := make([]dataset.MowerOwner, table.Len())
	for i, row := range table.Rows {
		out[i] = dataset.MowerOwner{Income: income[i], LotSize: lotSize[i], Ownership: row[colOwnership]}
	}
	return out, nil
}

// LaptopSales loads the laptop sales file. Rows without a retail price are
// skipped, matching how the dashboard's aggregations ignore missing values.
func (a *DatasetAdapter) LaptopSales(ctx context.Context) ([]dataset.LaptopSale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.laptopFile == "" {
		return nil, fmt.Errorf("%w: no laptop sales file configured", core.ErrDatasetNotFound)
	}

	table, err := a.reader.ReadFile(a.laptopFile)
	if err != nil {
		return nil, err
	}
	if err := table.Require(colDate, colConfiguration, colRetailPrice, colStorePostcode); err != nil {
		return nil, err
	}

	out := make([]dataset.LaptopSale, 0, table.Len())
	skipped := 0
	for i, row := range table.Rows {
		price := strings.TrimSpace(row[colRetailPrice])
		if price == "" || strings.EqualFold(price, "NA") {
			skipped++
			continue
		}
		sale, err := parseLaptopSale(row, price)
		if err != nil {
			return nil, fmt.Errorf("%w: laptop sales row %d: %v", core.ErrInvalidInput, i+1, err)
		}
		out = append(out, sale)
	}
	if skipped > 0 {
		a.logger.Info("skipped %d laptop sales without a retail price", skipped)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: laptop sales file has no priced rows", core.ErrInsufficientData)
	}
	return out, nil
}

func parseLaptopSale(row dataset.Row, price string) (dataset.LaptopSale, error) {
	date, err := dataset.ParseDate(row[colDate])
	if err != nil {
		return dataset.LaptopSale{}, err
	}
	config, err := strconv.ParseFloat(row[colConfiguration], 64)
	if err != nil {
		return dataset.LaptopSale{}, fmt.Errorf("configuration %q: %w", row[colConfiguration], err)
	}
	retailPrice, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return dataset.LaptopSale{}, fmt.Errorf("retail price %q: %w", price, err)
	}
	return dataset.LaptopSale{
		Date:          date,
		Configuration: config,
		RetailPrice:   retailPrice,
		StorePostcode: row[colStorePostcode],
	}, nil
}

// bundled prefers an override in the datasets directory, then the embedded copy
func (a *DatasetAdapter) bundled(ctx context.Context, name core.DatasetName, file string) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if a.datasetsDir != "" {
		override := filepath.Join(a.datasetsDir, file)
		table, err := a.reader.ReadFile(override)
		if err == nil {
			table.Name = name
			a.logger.Debug("using %s from %s", name, override)
			return table, nil
		}
		if !core.IsNotFoundError(err) {
			return nil, err
		}
	}

	f, err := a.bundle.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, name)
	}
	defer f.Close()

	fileType, err := DetectFileType(file)
	if err != nil {
		return nil, err
	}
	return a.reader.Read(name, f, fileType)
}
