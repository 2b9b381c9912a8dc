package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"statlab/adapters/excel"
	"statlab/app"
	"statlab/internal/container"
)

func newRetailCmd() *cobra.Command {
	var business string
	var window, lags int

	cmd := &cobra.Command{
		Use:   "retail",
		Short: "Query the US retail sales database",
		Long: `Query the monthly retail trade database configured by DB_DRIVER and DATABASE_URL.

Examples:
  statlab-cli retail import us_retail_sales.csv
  statlab-cli retail businesses
  statlab-cli retail monthly --business "Book stores" --window 12`,
	}
	cmd.PersistentFlags().StringVar(&business, "business", "", "Kind of business (default: the first one)")

	query := func(use, short string, run func(ctx context.Context, svc *app.RetailService, business string) (interface{}, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd.Context(), func(c *container.Container) error {
					resolved, err := c.Retail.ResolveBusiness(cmd.Context(), business)
					if err != nil {
						return err
					}
					out, err := run(cmd.Context(), c.Retail, resolved)
					if err != nil {
						return err
					}
					return printJSON(out)
				})
			},
		}
	}

	monthly := query("monthly", "Monthly sales with a trailing moving average", func(ctx context.Context, svc *app.RetailService, b string) (interface{}, error) {
		return svc.Monthly(ctx, b, window)
	})
	monthly.Flags().IntVar(&window, "window", app.DefaultMovingAverageWindow, "Moving average window in months, 0 for the raw series")

	acf := query("autocorrelation", "ACF and PACF of the monthly series", func(ctx context.Context, svc *app.RetailService, b string) (interface{}, error) {
		return svc.Autocorrelation(ctx, b, lags)
	})
	acf.Flags().IntVar(&lags, "lags", 0, "Number of lags (default 12)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "businesses",
			Short: "List every kind of business",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd.Context(), func(c *container.Container) error {
					businesses, err := c.Retail.Businesses(cmd.Context())
					if err != nil {
						return err
					}
					return printJSON(businesses)
				})
			},
		},
		monthly,
		query("index", "Yearly sales relative to the first year", func(ctx context.Context, svc *app.RetailService, b string) (interface{}, error) {
			return svc.Index(ctx, b)
		}),
		query("growth", "Year-over-year growth", func(ctx context.Context, svc *app.RetailService, b string) (interface{}, error) {
			return svc.Growth(ctx, b)
		}),
		acf,
		query("seasonality", "Month by year pivot of sales", func(ctx context.Context, svc *app.RetailService, b string) (interface{}, error) {
			return svc.Seasonality(ctx, b)
		}),
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the retail_sales schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				// Opening the container runs the migrations.
				return withContainer(cmd.Context(), func(c *container.Container) error {
					fmt.Printf("retail_sales schema ready on %s\n", c.DB.DriverName())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "import [file]",
			Short: "Load a census monthly retail trade CSV or XLSX file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd.Context(), func(c *container.Container) error {
					records, err := excel.NewDataReader(excel.DefaultReaderConfig(), c.Logger).ReadRetailSales(args[0])
					if err != nil {
						return err
					}
					n, err := c.RetailRepo.ImportSales(cmd.Context(), records)
					if err != nil {
						return err
					}
					fmt.Printf("imported %d records from %s\n", n, args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

func withContainer(ctx context.Context, run func(c *container.Container) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())
	return run(c)
}

func newLaptopsCmd() *cobra.Command {
	var bins int

	cmd := &cobra.Command{
		Use:   "laptops",
		Short: "Aggregate the laptop sales file",
		Long: `Summarise LAPTOP_FILE: price description, sums by month, ISO week and weekday,
mean price per configuration bin and totals per store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}
			report, err := svc.laptops.Report(cmd.Context(), bins)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().IntVar(&bins, "bins", app.DefaultConfigurationBins, "Number of configuration bins")
	return cmd
}

func newMowersCmd() *cobra.Command {
	var income, lotSize float64

	cmd := &cobra.Command{
		Use:   "mowers",
		Short: "Count riding mower owners per income and lot size quadrant",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}
			report, err := svc.mowers.Report(cmd.Context(), income, lotSize)
			if err != nil {
				return err
			}
			return printJSON(report.Quadrants)
		},
	}
	cmd.Flags().Float64Var(&income, "income", app.DefaultIncomeLine, "Income reference line ($000s)")
	cmd.Flags().Float64Var(&lotSize, "lot-size", app.DefaultLotSizeLine, "Lot size reference line (000s ft²)")
	return cmd
}
