package app

import (
	"context"
	"fmt"

	"statlab/domain/dataset"
	"statlab/internal"
	"statlab/ports"
)

// Reference lines drawn on the riding mowers scatter plot
const (
	DefaultIncomeLine  = 72.0
	DefaultLotSizeLine = 19.0
)

// Quadrant counts households on one side of each reference line. A value on
// a line counts as above it.
type Quadrant struct {
	Name         string `json:"name"`
	IncomeAbove  bool   `json:"income_above"`
	LotSizeAbove bool   `json:"lot_size_above"`
	Owners       int    `json:"owners"`
	Nonowners    int    `json:"nonowners"`
}

// MowerReport is the riding mowers page
type MowerReport struct {
	IncomeLine  float64              `json:"income_line"`
	LotSizeLine float64              `json:"lot_size_line"`
	Points      []dataset.MowerOwner `json:"points"`
	Quadrants   []Quadrant           `json:"quadrants"`
}

// MowerService classifies riding mower owners by income and lot size
type MowerService struct {
	datasets ports.DatasetReaderPort
	logger   *internal.Logger
}

// NewMowerService creates a mower service
func NewMowerService(datasets ports.DatasetReaderPort, logger *internal.Logger) *MowerService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MowerService{datasets: datasets, logger: logger.WithComponent("MowerService")}
}

// Report loads the dataset and counts owners per quadrant around the lines.
// Zero lines fall back to the defaults.
func (s *MowerService) Report(ctx context.Context, incomeLine, lotSizeLine float64) (*MowerReport, error) {
	if incomeLine == 0 {
		incomeLine = DefaultIncomeLine
	}
	if lotSizeLine == 0 {
		lotSizeLine = DefaultLotSizeLine
	}

	points, err := s.datasets.MowerOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load riding mowers: %w", err)
	}

	return &MowerReport{
		IncomeLine:  incomeLine,
		LotSizeLine: lotSizeLine,
		Points:      points,
		Quadrants:   CountQuadrants(points, incomeLine, lotSizeLine),
	}, nil
}

// CountQuadrants tallies owners and non-owners in each of the four quadrants,
// upper right first and then counter-clockwise.
func CountQuadrants(points []dataset.MowerOwner, incomeLine, lotSizeLine float64) []Quadrant {
	quadrants := []Quadrant{
		{Name: "high income, large lot", IncomeAbove: true, LotSizeAbove: true},
		{Name: "low income, large lot", IncomeAbove: false, LotSizeAbove: true},
		{Name: "low income, small lot", IncomeAbove: false, LotSizeAbove: false},
		{Name: "high income, small lot", IncomeAbove: true, LotSizeAbove: false},
	}
	for _, p := range points {
		incomeAbove := p.Income >= incomeLine
		lotAbove := p.LotSize >= lotSizeLine
		for i := range quadrants {
			q := &quadrants[i]
			if q.IncomeAbove != incomeAbove || q.LotSizeAbove != lotAbove {
				continue
			}
			if p.Ownership == "Owner" {
				q.Owners++
			} else {
				q.Nonowners++
			}
		}
	}
	return quadrants
}
