package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"statlab/adapters/battery"
	"statlab/adapters/db"
	"statlab/adapters/excel"
	"statlab/adapters/rng"
	"statlab/app"
	"statlab/internal"
	"statlab/internal/api"
	"statlab/internal/config"
	"statlab/internal/errors"
	"statlab/internal/migration"
	"statlab/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Adapters
	Engine     ports.BatteryPort
	Datasets   ports.DatasetReaderPort
	RetailRepo ports.RetailRepository

	// Services
	Settings    app.Settings
	Resampling  *app.ResamplingService
	Anova       *app.AnovaService
	Categorical *app.CategoricalService
	Retail      *app.RetailService
	Laptops     *app.LaptopService
	Mowers      *app.MowerService

	// Transport
	Limiter     *app.RunLimiter
	ProgressHub *api.ProgressHub
	APIHandler  *api.Handler
}

// New opens the retail database, runs the migrations and wires every service
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	conn, err := sqlx.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to open retail database", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.DatabaseError("failed to ping retail database", err)
	}

	c, err := NewWithDatabase(ctx, cfg, conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewWithDatabase wires the container around an open connection
func NewWithDatabase(ctx context.Context, cfg *config.Config, conn *sqlx.DB, logger *internal.Logger) (*Container, error) {
	if conn == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{Config: cfg, Logger: logger, DB: conn}

	if err := migration.NewRunner().Run(ctx, conn); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	if err := c.initAdapters(); err != nil {
		return nil, err
	}
	c.initServices()
	c.initTransport()

	logger.WithComponent("Container").Info("initialized with %s database", conn.DriverName())
	return c, nil
}

func (c *Container) initAdapters() error {
	c.Engine = battery.NewPermutationEngine(rng.NewSeededAdapter(), c.Logger)

	reader := excel.NewDataReader(excel.DefaultReaderConfig(), c.Logger)
	c.Datasets = excel.NewDatasetAdapter(reader, c.Config.Data.DatasetsDir, c.Config.Data.LaptopFile, c.Logger)

	repo, err := db.NewRetailRepository(c.DB)
	if err != nil {
		return errors.Wrap(err, "failed to create retail repository")
	}
	c.RetailRepo = repo
	return nil
}

func (c *Container) initServices() {
	p := c.Config.Permutation
	c.Settings = app.Settings{
		Seed:          p.Seed,
		Trials:        p.Trials,
		AnovaTrials:   p.AnovaTrials,
		Alpha:         p.SignificanceLevel,
		HistogramBins: p.HistogramBins,
		RandomSeed:    rng.RandomSeed,
	}

	c.Resampling = app.NewResamplingService(c.Engine, c.Settings, c.Logger)
	c.Anova = app.NewAnovaService(c.Engine, c.Datasets, c.Settings, c.Logger)
	c.Categorical = app.NewCategoricalService(c.Engine, c.Settings, c.Logger)
	c.Retail = app.NewRetailService(c.RetailRepo, c.Logger)
	c.Laptops = app.NewLaptopService(c.Datasets, c.Settings, c.Logger)
	c.Mowers = app.NewMowerService(c.Datasets, c.Logger)
}

func (c *Container) initTransport() {
	c.Limiter = app.NewRunLimiter(c.Config.Permutation.MaxConcurrentTests)
	c.ProgressHub = api.NewProgressHub(c.Logger)
	c.APIHandler = api.NewHandler(api.Services{
		Resampling:  c.Resampling,
		Anova:       c.Anova,
		Categorical: c.Categorical,
		Retail:      c.Retail,
		Laptops:     c.Laptops,
		Mowers:      c.Mowers,
	}, c.Limiter, c.ProgressHub, c.Logger)
}

// Shutdown stops the progress hub and closes the database
func (c *Container) Shutdown(ctx context.Context) error {
	if c.ProgressHub != nil {
		c.ProgressHub.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
