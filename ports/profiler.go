package ports

import (
	"statlab/internal/profiling"
)

// ProfilerPort summarises numeric columns the way pandas' describe() does
type ProfilerPort interface {
	ProfileDataset(columns map[string][]float64) []profiling.ColumnDescription
}
