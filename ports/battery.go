package ports

import (
	"context"

	"statlab/domain/permutation"
)

// BatteryPort runs Monte Carlo permutation tests
type BatteryPort interface {
	Run(ctx context.Context, req permutation.Request) (*permutation.Result, error)
}
