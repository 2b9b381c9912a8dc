package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"statlab/domain/dataset"
	"statlab/domain/retail"
)

// LaptopGeneratorConfig configures the synthetic laptop sales generator
type LaptopGeneratorConfig struct {
	Count     int       `json:"count"`
	Stores    []string  `json:"stores"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Seed      int64     `json:"seed"`
}

// DefaultLaptopConfig returns a small year of sales across three stores
func DefaultLaptopConfig() LaptopGeneratorConfig {
	return LaptopGeneratorConfig{
		Count:     500,
		Stores:    []string{"N17 6QA", "SE1 2BN", "SW1P 3AU"},
		StartDate: time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2008, 12, 31, 23, 59, 0, 0, time.UTC),
		Seed:      42,
	}
}

// LaptopSalesGenerator produces laptop sales whose price rises with the
// configuration index.
type LaptopSalesGenerator struct {
	config LaptopGeneratorConfig
	rng    *rand.Rand
}

// NewLaptopSalesGenerator creates a new laptop sales generator
func NewLaptopSalesGenerator(config LaptopGeneratorConfig) *LaptopSalesGenerator {
	return &LaptopSalesGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns Count sales ordered by date
func (g *LaptopSalesGenerator) Generate() []dataset.LaptopSale {
	span := g.config.EndDate.Sub(g.config.StartDate)
	step := span / time.Duration(max(g.config.Count, 1))

	sales := make([]dataset.LaptopSale, g.config.Count)
	for i := range sales {
		config := float64(g.rng.Intn(864) + 1)
		price := 400 + config*0.25 + g.rng.NormFloat64()*30
		sales[i] = dataset.LaptopSale{
			Date:          g.config.StartDate.Add(time.Duration(i) * step).Truncate(time.Minute),
			Configuration: config,
			RetailPrice:   math.Round(price),
			StorePostcode: g.config.Stores[g.rng.Intn(len(g.config.Stores))],
		}
	}
	return sales
}

// CSV renders sales in the column layout of LaptopSales.csv
func CSV(sales []dataset.LaptopSale) string {
	out := "Date,Configuration,Customer Postcode,Store Postcode,Retail Price\n"
	for _, s := range sales {
		out += fmt.Sprintf("%s,%g,EC4V 5BH,%s,%g\n", s.Date.Format("1/2/2006 15:04"), s.Configuration, s.StorePostcode, s.RetailPrice)
	}
	return out
}

// RetailSeriesGenerator produces monthly retail sales with a linear trend and
// a December peak.
type RetailSeriesGenerator struct {
	rng *rand.Rand
}

// NewRetailSeriesGenerator creates a new retail series generator
func NewRetailSeriesGenerator(seed int64) *RetailSeriesGenerator {
	return &RetailSeriesGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns one record per month from firstYear through lastYear
func (g *RetailSeriesGenerator) Generate(business string, firstYear, lastYear int) []retail.SalesRecord {
	var records []retail.SalesRecord
	i := 0
	for y := firstYear; y <= lastYear; y++ {
		for m := 1; m <= 12; m++ {
			level := 1000 + 5*float64(i)
			if m == 12 {
				level *= 1.6
			}
			sales := int64(math.Round(level + g.rng.NormFloat64()*10))
			records = append(records, retail.SalesRecord{
				Month:     fmt.Sprintf("%d-%02d-01", y, m),
				NAICSCode: "44X72",
				Business:  business,
				Sales:     &sales,
			})
			i++
		}
	}
	return records
}
