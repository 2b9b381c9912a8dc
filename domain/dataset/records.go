package dataset

import (
	"time"

	"statlab/domain/core"
)

// Bundled dataset names
const (
	FourSessions core.DatasetName = "four_sessions"
	RidingMowers core.DatasetName = "riding_mowers"
	LaptopSales  core.DatasetName = "laptop_sales"
)

// PageTime is one row of the four-sessions dataset: the time a visitor spent
// on one of several page designs.
type PageTime struct {
	Page string  `json:"page"`
	Time float64 `json:"time"`
}

// MowerOwner is one household of the riding mowers dataset
type MowerOwner struct {
	Income    float64 `json:"income"`
	LotSize   float64 `json:"lot_size"`
	Ownership string  `json:"ownership"`
}

// LaptopSale is one transaction of the laptop sales dataset
type LaptopSale struct {
	Date          time.Time `json:"date"`
	Configuration float64   `json:"configuration"`
	RetailPrice   float64   `json:"retail_price"`
	StorePostcode string    `json:"store_postcode"`
}
