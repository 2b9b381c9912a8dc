package excel

import (
	"fmt"
	"strconv"
	"strings"

	"statlab/domain/core"
	"statlab/domain/dataset"
	"statlab/domain/retail"
)

// Columns of the census monthly retail trade export
const (
	colSalesMonth     = "sales_month"
	colNAICSCode      = "naics_code"
	colKindOfBusiness = "kind_of_business"
	colReasonForNull  = "reason_for_null"
	colSales          = "sales"
)

// ReadRetailSales loads a monthly retail trade file for import. Months are
// normalised to YYYY-MM-DD; suppressed figures such as "(S)" become nil sales.
func (r *DataReader) ReadRetailSales(path string) ([]retail.SalesRecord, error) {
	table, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := table.Require(colSalesMonth, colKindOfBusiness, colSales); err != nil {
		return nil, err
	}

	out := make([]retail.SalesRecord, 0, table.Len())
	for i, row := range table.Rows {
		month, err := parseMonth(row[colSalesMonth])
		if err != nil {
			return nil, fmt.Errorf("%w: retail row %d: %v", core.ErrInvalidInput, i+1, err)
		}
		business := strings.TrimSpace(row[colKindOfBusiness])
		if business == "" {
			return nil, fmt.Errorf("%w: retail row %d has no kind of business", core.ErrInvalidInput, i+1)
		}

		record := retail.SalesRecord{
			Month:         month,
			NAICSCode:     strings.TrimSpace(row[colNAICSCode]),
			Business:      business,
			ReasonForNull: strings.TrimSpace(row[colReasonForNull]),
		}
		raw := strings.ReplaceAll(strings.TrimSpace(row[colSales]), ",", "")
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			record.Sales = &v
		} else if record.ReasonForNull == "" && raw != "" {
			record.ReasonForNull = raw
		}
		out = append(out, record)
	}
	r.logger.Debug("read %d retail records from %s", len(out), path)
	return out, nil
}

func parseMonth(raw string) (string, error) {
	ts, err := dataset.ParseDate(raw)
	if err != nil {
		return "", err
	}
	return ts.Format("2006-01-02"), nil
}
