package config

import (
	"os"
	"strconv"
	"time"

	"statlab/domain/permutation"
	"statlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Data        DataConfig
	Permutation PermutationConfig
	LogLevel    string
}

// DatabaseConfig holds the retail database connection settings
type DatabaseConfig struct {
	Driver string // sqlite3 or postgres
	URL    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DataConfig holds dataset locations
type DataConfig struct {
	DatasetsDir string
	LaptopFile  string
}

// PermutationConfig holds defaults for permutation test pages
type PermutationConfig struct {
	Seed               int64
	Trials             int
	AnovaTrials        int
	MaxConcurrentTests int64
	SignificanceLevel  float64
	HistogramBins      int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dataConfig := loadDataConfig()

	config := &Config{
		Database:    *loadDatabaseConfig(dataConfig.DatasetsDir),
		Server:      *loadServerConfig(),
		Data:        *dataConfig,
		Permutation: *loadPermutationConfig(),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig(datasetsDir string) *DatabaseConfig {
	return &DatabaseConfig{
		Driver: getEnvOrDefault("DB_DRIVER", "sqlite3"),
		URL:    getEnvOrDefault("DATABASE_URL", datasetsDir+"/us_retail.db"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDataConfig() *DataConfig {
	dir := getEnvOrDefault("DATASETS_DIR", "datasets")
	return &DataConfig{
		DatasetsDir: dir,
		LaptopFile:  getEnvOrDefault("LAPTOP_FILE", dir+"/LaptopSales.csv"),
	}
}

func loadPermutationConfig() *PermutationConfig {
	return &PermutationConfig{
		Seed:               getEnvInt64OrDefault("PERMUTATION_SEED", 42),
		Trials:             getEnvIntOrDefault("PERMUTATION_TRIALS", 1000),
		AnovaTrials:        getEnvIntOrDefault("ANOVA_TRIALS", 3000),
		MaxConcurrentTests: getEnvInt64OrDefault("MAX_CONCURRENT_TESTS", 2),
		SignificanceLevel:  getEnvFloatOrDefault("SIGNIFICANCE_LEVEL", 0.05),
		HistogramBins:      getEnvIntOrDefault("HISTOGRAM_BINS", 50),
	}
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return errors.ConfigInvalid("DB_DRIVER must be sqlite3 or postgres")
	}
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	p := config.Permutation
	if p.Trials < 1 || p.Trials > permutation.MaxTrials {
		return errors.ConfigInvalid("PERMUTATION_TRIALS must be between 1 and 100000")
	}
	if p.AnovaTrials < 1 || p.AnovaTrials > permutation.MaxTrials {
		return errors.ConfigInvalid("ANOVA_TRIALS must be between 1 and 100000")
	}
	if p.MaxConcurrentTests < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_TESTS must be positive")
	}
	if p.SignificanceLevel <= 0 || p.SignificanceLevel >= 1 {
		return errors.ConfigInvalid("SIGNIFICANCE_LEVEL must be in (0, 1)")
	}
	if p.HistogramBins < 1 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
