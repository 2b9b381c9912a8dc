package migration

import (
	"context"
	"fmt"

	"statlab/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the retail sales schema on sqlite or postgres
type MigrationRunner struct {
	version string
}

var _ Migrator = (*MigrationRunner)(nil)

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every step is
// idempotent, so running against an existing us_retail database is a no-op.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRetailSalesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create retail_sales table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRetailSalesTable(ctx context.Context, db *sqlx.DB) error {
	var ddl string
	switch db.DriverName() {
	case "postgres":
		ddl = `
		CREATE TABLE IF NOT EXISTS retail_sales (
			sales_month DATE NOT NULL,
			naics_code VARCHAR(16),
			kind_of_business VARCHAR(255) NOT NULL,
			reason_for_null VARCHAR(64),
			sales BIGINT
		)`
	case "sqlite3":
		ddl = `
		CREATE TABLE IF NOT EXISTS retail_sales (
			sales_month TEXT NOT NULL,
			naics_code TEXT,
			kind_of_business TEXT NOT NULL,
			reason_for_null TEXT,
			sales INTEGER
		)`
	default:
		return fmt.Errorf("unsupported driver %q", db.DriverName())
	}

	_, err := db.ExecContext(ctx, ddl)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_retail_sales_business_month
		ON retail_sales (kind_of_business, sales_month)
	`)
	return err
}
