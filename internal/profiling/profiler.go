package profiling

import (
	"sort"
)

// ColumnDescription pairs a column name with its summary
type ColumnDescription struct {
	Column string `json:"column"`
	Description
}

// DataProfiler describes every numeric column of a dataset
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{
		analyzer: NewDistributionAnalyzer(),
	}
}

// ProfileColumn describes a single column
func (dp *DataProfiler) ProfileColumn(name string, data []float64) (ColumnDescription, error) {
	d, err := dp.analyzer.Describe(data)
	if err != nil {
		return ColumnDescription{Column: name}, err
	}
	return ColumnDescription{Column: name, Description: d}, nil
}

// ProfileDataset describes all columns, sorted by column name. Empty columns
// are skipped.
func (dp *DataProfiler) ProfileDataset(columns map[string][]float64) []ColumnDescription {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]ColumnDescription, 0, len(names))
	for _, name := range names {
		desc, err := dp.ProfileColumn(name, columns[name])
		if err != nil {
			continue
		}
		results = append(results, desc)
	}
	return results
}
