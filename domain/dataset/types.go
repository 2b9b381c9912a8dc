package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"statlab/domain/core"
)

// Row is one record of a tabular dataset keyed by column header
type Row map[string]string

// Table is a parsed CSV or spreadsheet with a header row
type Table struct {
	Name    core.DatasetName `json:"name"`
	Headers []string         `json:"headers"`
	Rows    []Row            `json:"rows"`
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Require checks that every named column is present
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return fmt.Errorf("%w: dataset %q has no column %q", core.ErrInvalidInput, t.Name, c)
		}
	}
	return nil
}

// Strings returns the raw values of a column
func (t *Table) Strings(column string) ([]string, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[column]
	}
	return out, nil
}

// Floats parses a column as float64. Empty or unparsable cells are an error
// naming the offending row.
func (t *Table) Floats(column string) ([]float64, error) {
	raw, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d: %q is not a number", core.ErrInvalidInput, column, i+1, s)
		}
		out[i] = v
	}
	return out, nil
}

// DateLayouts are the date formats accepted by Times, tried in order
var DateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	time.RFC3339,
}

// Times parses a column as timestamps using DateLayouts
func (t *Table) Times(column string) ([]time.Time, error) {
	raw, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(raw))
	for i, s := range raw {
		ts, err := ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d: %v", core.ErrInvalidInput, column, i+1, err)
		}
		out[i] = ts
	}
	return out, nil
}

// ParseDate parses s with the first matching layout in DateLayouts
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
