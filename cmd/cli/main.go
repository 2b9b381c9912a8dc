package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"statlab/adapters/battery"
	"statlab/adapters/excel"
	"statlab/adapters/rng"
	"statlab/app"
	"statlab/internal"
	"statlab/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statlab-cli",
		Short: "Run statlab's permutation tests and reports from the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newResampleCmd(),
		newAnovaCmd(),
		newCategoricalCmd(),
		newRetailCmd(),
		newLaptopsCmd(),
		newMowersCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// services builds the database-free services from the environment
type services struct {
	resampling  *app.ResamplingService
	anova       *app.AnovaService
	categorical *app.CategoricalService
	laptops     *app.LaptopService
	mowers      *app.MowerService
}

// loadConfig reads the environment configuration and builds the logger
func loadConfig() (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)), nil
}

func loadServices() (*services, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	p := cfg.Permutation
	settings := app.Settings{
		Seed:          p.Seed,
		Trials:        p.Trials,
		AnovaTrials:   p.AnovaTrials,
		Alpha:         p.SignificanceLevel,
		HistogramBins: p.HistogramBins,
		RandomSeed:    rng.RandomSeed,
	}
	engine := battery.NewPermutationEngine(rng.NewSeededAdapter(), logger)
	reader := excel.NewDataReader(excel.DefaultReaderConfig(), logger)
	datasets := excel.NewDatasetAdapter(reader, cfg.Data.DatasetsDir, cfg.Data.LaptopFile, logger)

	return &services{
		resampling:  app.NewResamplingService(engine, settings, logger),
		anova:       app.NewAnovaService(engine, datasets, settings, logger),
		categorical: app.NewCategoricalService(engine, settings, logger),
		laptops:     app.NewLaptopService(datasets, settings, logger),
		mowers:      app.NewMowerService(datasets, logger),
	}, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// seedFlag returns nil when --seed was not given so the configured seed applies
func seedFlag(cmd *cobra.Command, seed int64) *int64 {
	if !cmd.Flags().Changed("seed") {
		return nil
	}
	return &seed
}
