package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"statlab/app"
)

func newResampleCmd() *cobra.Command {
	var groupA, groupB []float64
	var statistic, tail string
	var trials int
	var seed int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resample",
		Short: "Two-group permutation test, by default on the difference in means",
		Long: `Pool both groups, reshuffle them --trials times and report the share of
shuffles whose statistic is at least as extreme as the observed one, together
with the Levene, Shapiro-Wilk, t-test and Mann-Whitney decision table.

Statistics: mean-difference, proportion-difference (0/1 groups), variance-of-means.
Tails: two-sided, greater, less, greater-strict, less-strict.

Example: statlab-cli resample --group-a 95,79,92 --group-b 75,92,48 --trials 5000 --seed 7 --tail greater`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}
			result, err := svc.resampling.Run(cmd.Context(), app.ResamplingRequest{
				GroupA:    groupA,
				GroupB:    groupB,
				Statistic: statistic,
				Tail:      tail,
				Trials:    trials,
				Seed:      seedFlag(cmd, seed),
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(result)
			}

			fmt.Printf("Observed %s: %.4f\n", statistic, result.ObservedDifference)
			fmt.Printf("p-value: %.4f (%d trials, seed %d)\n\n", result.Test.PValue, result.Test.Trials, result.Test.Seed)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tP-VALUE\tSTATUS\tINFORMATION")
			for _, row := range result.Decision.Rows {
				p := "n/a"
				if row.PValue != nil {
					p = fmt.Sprintf("%.4f", *row.PValue)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Method, p, row.Status, row.Information)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Float64SliceVar(&groupA, "group-a", nil, "Group A observations (default: the exam scores)")
	cmd.Flags().Float64SliceVar(&groupB, "group-b", nil, "Group B observations")
	cmd.Flags().StringVar(&statistic, "statistic", "mean-difference", "Test statistic")
	cmd.Flags().StringVar(&tail, "tail", "two-sided", "Which tail counts as extreme")
	cmd.Flags().IntVar(&trials, "trials", 0, "Number of permutations (default PERMUTATION_TRIALS)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed, 0 for a fresh one (default PERMUTATION_SEED)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

func newAnovaCmd() *cobra.Command {
	var trials int
	var seed int64

	cmd := &cobra.Command{
		Use:   "anova",
		Short: "Permutation ANOVA on the four-sessions page times",
		Long: `Test whether session times differ across page designs using the variance of
the page means as the statistic. The four-sessions dataset is read from
DATASETS_DIR when present, otherwise from the bundled copy.

Example: statlab-cli anova --trials 3000 --seed 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}
			result, err := svc.anova.Run(cmd.Context(), app.AnovaRequest{Trials: trials, Seed: seedFlag(cmd, seed)})
			if err != nil {
				return err
			}
			result.Data = nil
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&trials, "trials", 0, "Number of permutations (default ANOVA_TRIALS)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed, 0 for a fresh one (default PERMUTATION_SEED)")
	return cmd
}

func newCategoricalCmd() *cobra.Command {
	var a, b app.Conversions
	var trials int
	var seed int64

	cmd := &cobra.Command{
		Use:   "categorical",
		Short: "Permutation test on two conversion rates",
		Long: `Pool the converted and non-converted visitors of both variants and test
whether variant A converts better than variant B.

Example: statlab-cli categorical --a-converted 200 --a-total 23739 --b-converted 182 --b-total 22588`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}
			result, err := svc.categorical.Run(cmd.Context(), app.CategoricalRequest{
				VariantA: a,
				VariantB: b,
				Trials:   trials,
				Seed:     seedFlag(cmd, seed),
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&a.Converted, "a-converted", app.DefaultVariantA.Converted, "Variant A conversions")
	cmd.Flags().IntVar(&a.Total, "a-total", app.DefaultVariantA.Total, "Variant A visitors")
	cmd.Flags().IntVar(&b.Converted, "b-converted", app.DefaultVariantB.Converted, "Variant B conversions")
	cmd.Flags().IntVar(&b.Total, "b-total", app.DefaultVariantB.Total, "Variant B visitors")
	cmd.Flags().IntVar(&trials, "trials", 0, "Number of permutations (default PERMUTATION_TRIALS)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed, 0 for a fresh one (default PERMUTATION_SEED)")
	return cmd
}
