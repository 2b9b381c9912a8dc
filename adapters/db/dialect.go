package db

import (
	"fmt"
)

// dialect renders the few expressions that differ between sqlite and postgres
type dialect interface {
	year(col string) string
	month(col string) string
	real(expr string) string
	round(expr string, places int) string
}

type sqliteDialect struct{}

func (sqliteDialect) year(col string) string  { return fmt.Sprintf("strftime('%%Y', %s)", col) }
func (sqliteDialect) month(col string) string { return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", col) }
func (sqliteDialect) real(expr string) string { return fmt.Sprintf("CAST(%s AS REAL)", expr) }
func (sqliteDialect) round(expr string, places int) string {
	return fmt.Sprintf("ROUND(%s, %d)", expr, places)
}

type postgresDialect struct{}

func (postgresDialect) year(col string) string  { return fmt.Sprintf("to_char(%s, 'YYYY')", col) }
func (postgresDialect) month(col string) string { return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col) }
func (postgresDialect) real(expr string) string {
	return fmt.Sprintf("CAST(%s AS DOUBLE PRECISION)", expr)
}
func (postgresDialect) round(expr string, places int) string {
	return fmt.Sprintf("CAST(ROUND(CAST(%s AS NUMERIC), %d) AS DOUBLE PRECISION)", expr, places)
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite3":
		return sqliteDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
