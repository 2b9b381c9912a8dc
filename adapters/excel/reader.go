package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"statlab/domain/core"
	"statlab/domain/dataset"
	"statlab/internal"
)

// FileType identifies a supported tabular format
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// DetectFileType maps a file extension to its FileType
func DetectFileType(path string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, nil
	}
	return "", fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidInput, filepath.Ext(path))
}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config ReaderConfig
	logger *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	if config.Comma == 0 {
		config.Comma = ','
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{config: config, logger: logger.WithComponent("DataReader")}
}

// ReadFile reads a CSV or XLSX file from disk
func (r *DataReader) ReadFile(path string) (*dataset.Table, error) {
	fileType, err := DetectFileType(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return r.Read(core.DatasetName(name), f, fileType)
}

// Read parses a table of the given type from src
func (r *DataReader) Read(name core.DatasetName, src io.Reader, fileType FileType) (*dataset.Table, error) {
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch fileType {
	case FileTypeCSV:
		rows, err = r.readCSV(src)
	case FileTypeXLSX:
		rows, err = r.readExcel(src)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidInput, fileType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s must have at least a header row and one data row", core.ErrInsufficientData, name)
	}

	table := processRows(name, rows)
	r.logger.Debug("%s %s parsed in %s (%d columns, %d rows)", strings.ToUpper(string(fileType)), name,
		time.Since(start), len(table.Headers), table.Len())
	return table, nil
}

func (r *DataReader) readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.Comma = r.config.Comma
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func (r *DataReader) readExcel(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// processRows converts raw string rows into a Table, skipping blank lines
func processRows(name core.DatasetName, rows [][]string) *dataset.Table {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	table := &dataset.Table{Name: name, Headers: headers}
	for _, raw := range rows[1:] {
		if isBlank(raw) {
			continue
		}
		row := make(dataset.Row, len(headers))
		for j, cell := range raw {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(cell)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
