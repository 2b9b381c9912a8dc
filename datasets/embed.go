// Package datasets bundles the small demonstration datasets. Larger inputs
// (laptop sales, the US retail database) are read from DATASETS_DIR at runtime.
package datasets

import "embed"

// Bundled file names
const (
	FourSessionsFile = "four_sessions.csv"
	RidingMowersFile = "riding_mowers.csv"
)

//go:embed four_sessions.csv riding_mowers.csv
var FS embed.FS
