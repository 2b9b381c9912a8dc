package retail

// MaxMovingAverageWindow is the largest trailing window offered by the dashboard
const MaxMovingAverageWindow = 24

// MonthlySales is one month of a business's sales. MovingAverage is the
// trailing mean over the requested window, rounded to two decimals, and equals
// Sales when no window is applied.
type MonthlySales struct {
	Month         string  `json:"month" db:"sales_month"`
	Sales         float64 `json:"sales" db:"sales"`
	MovingAverage float64 `json:"moving_average" db:"moving_average"`
}

// YearIndex tracks yearly sales against the first available year
type YearIndex struct {
	Year      string  `json:"year" db:"sales_year"`
	Total     float64 `json:"total" db:"total_sales"`
	Baseline  float64 `json:"baseline" db:"baseline"`
	Evolution float64 `json:"evolution_pct" db:"evolution"`
}

// YearGrowth is the year-over-year growth of total sales. Growth is nil for
// the first year.
type YearGrowth struct {
	Year   string   `json:"year" db:"sales_year"`
	Total  float64  `json:"total" db:"total_sales"`
	Growth *float64 `json:"growth_pct" db:"growth"`
}

// Seasonality is a month by year pivot of monthly sales. Values[m][y] is nil
// when the business has no record for that month.
type Seasonality struct {
	Months []string     `json:"months"`
	Years  []int        `json:"years"`
	Values [][]*float64 `json:"values"`
}

// SalesRecord is one raw row of the retail_sales table. Sales is nil when the
// figure was suppressed, with the reason recorded in ReasonForNull.
type SalesRecord struct {
	Month         string `json:"sales_month" db:"sales_month"`
	NAICSCode     string `json:"naics_code" db:"naics_code"`
	Business      string `json:"kind_of_business" db:"kind_of_business"`
	ReasonForNull string `json:"reason_for_null" db:"reason_for_null"`
	Sales         *int64 `json:"sales" db:"sales"`
}
