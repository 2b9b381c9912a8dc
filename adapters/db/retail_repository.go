package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"statlab/domain/core"
	"statlab/domain/retail"
	"statlab/ports"
)

// retailRepository implements ports.RetailRepository on sqlite or postgres
type retailRepository struct {
	db      *sqlx.DB
	dialect dialect
}

// NewRetailRepository creates a repository for the retail_sales table
func NewRetailRepository(db *sqlx.DB) (ports.RetailRepository, error) {
	d, err := dialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}
	return &retailRepository{db: db, dialect: d}, nil
}

// ListBusinesses returns every distinct kind of business
func (r *retailRepository) ListBusinesses(ctx context.Context) ([]string, error) {
	var businesses []string
	err := r.db.SelectContext(ctx, &businesses,
		`SELECT DISTINCT kind_of_business FROM retail_sales ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	return businesses, nil
}

// MonthlySales returns the monthly series with a trailing moving average.
// Only months whose whole window holds non-null sales are returned.
func (r *retailRepository) MonthlySales(ctx context.Context, business string, window int) ([]retail.MonthlySales, error) {
	if window < 0 || window > retail.MaxMovingAverageWindow {
		return nil, core.NewValidationError("window", fmt.Sprintf("must be between 0 and %d", retail.MaxMovingAverageWindow))
	}
	preceding := 0
	if window > 0 {
		preceding = window - 1
	}

	// The frame offset is a validated integer, so it is inlined rather than bound.
	frame := fmt.Sprintf("OVER (ORDER BY sales_month ROWS BETWEEN %d PRECEDING AND CURRENT ROW)", preceding)
	query := fmt.Sprintf(`
		SELECT sales_month, sales, moving_average
		FROM (
			SELECT
				%s AS sales_month,
				%s AS sales,
				%s AS moving_average,
				COUNT(sales) %s AS records_count
			FROM retail_sales
			WHERE kind_of_business = ?
		) AS sub
		WHERE records_count = %d
		ORDER BY sales_month`,
		r.dialect.month("sales_month"),
		r.dialect.real("sales"),
		r.dialect.round("AVG(sales) "+frame, 2),
		frame,
		preceding+1,
	)

	var rows []retail.MonthlySales
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), business); err != nil {
		return nil, fmt.Errorf("failed to query monthly sales for %q: %w", business, err)
	}
	if len(rows) == 0 {
		if err := r.ensureBusiness(ctx, business); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// IndexEvolution returns yearly totals relative to the first year with sales
func (r *retailRepository) IndexEvolution(ctx context.Context, business string) ([]retail.YearIndex, error) {
	first := "FIRST_VALUE(total_sales) OVER (ORDER BY sales_year)"
	query := fmt.Sprintf(`
		SELECT
			sales_year,
			total_sales,
			%s AS baseline,
			%s AS evolution
		FROM (
			SELECT %s AS sales_year, SUM(sales) AS total_sales
			FROM retail_sales
			WHERE kind_of_business = ?
			GROUP BY 1
			HAVING SUM(sales) > 0
		) AS yearly
		ORDER BY sales_year`,
		first,
		r.dialect.round(fmt.Sprintf("(%s / %s - 1) * 100", r.dialect.real("total_sales"), first), 3),
		r.dialect.year("sales_month"),
	)

	var rows []retail.YearIndex
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), business); err != nil {
		return nil, fmt.Errorf("failed to query index evolution for %q: %w", business, err)
	}
	if len(rows) == 0 {
		if err := r.ensureBusiness(ctx, business); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// YearlyGrowth returns yearly totals with growth over the previous year
func (r *retailRepository) YearlyGrowth(ctx context.Context, business string) ([]retail.YearGrowth, error) {
	year := r.dialect.year("sales_month")
	query := fmt.Sprintf(`
		SELECT
			%s AS sales_year,
			SUM(sales) AS total_sales,
			(%s / NULLIF(LAG(SUM(sales)) OVER (ORDER BY %s), 0) - 1) * 100 AS growth
		FROM retail_sales
		WHERE kind_of_business = ?
		GROUP BY 1
		HAVING SUM(sales) IS NOT NULL
		ORDER BY 1`,
		year,
		r.dialect.real("SUM(sales)"),
		year,
	)

	var rows []retail.YearGrowth
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), business); err != nil {
		return nil, fmt.Errorf("failed to query yearly growth for %q: %w", business, err)
	}
	if len(rows) == 0 {
		if err := r.ensureBusiness(ctx, business); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// ImportSales inserts raw records in a single transaction
func (r *retailRepository) ImportSales(ctx context.Context, records []retail.SalesRecord) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO retail_sales (sales_month, naics_code, kind_of_business, reason_for_null, sales)
		VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Month, rec.NAICSCode, rec.Business, rec.ReasonForNull, rec.Sales); err != nil {
			return 0, fmt.Errorf("failed to import record %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(records), nil
}

func (r *retailRepository) ensureBusiness(ctx context.Context, business string) error {
	var count int
	err := r.db.GetContext(ctx, &count,
		r.db.Rebind(`SELECT COUNT(*) FROM retail_sales WHERE kind_of_business = ?`), business)
	if err != nil {
		return fmt.Errorf("failed to look up business %q: %w", business, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %q", core.ErrBusinessUnknown, business)
	}
	return nil
}
