package ports

import (
	"context"
	"math/rand"
)

// RNGPort hands out the random streams that drive permutation trials
type RNGPort interface {
	// SeededStream returns a fresh generator owned by the caller. The same
	// name and seed always replay the same draws.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
