package rng

import (
	"context"
	"math/rand"
	"time"
)

// SeededAdapter implements ports.RNGPort on top of math/rand sources.
// Every stream it hands out is independent and owned by the caller.
type SeededAdapter struct{}

// NewSeededAdapter creates the default RNG adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (r *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// RandomSeed returns a clock-derived seed for callers that asked for seed 0
func RandomSeed() int64 {
	seed := time.Now().UnixNano()
	if seed == 0 {
		seed = 1
	}
	return seed
}
