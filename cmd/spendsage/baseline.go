package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendsage/spendsage/internal/baseline"
	"github.com/spendsage/spendsage/internal/ingest"
)

func baselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Compute and display a spending baseline",
		Long: `Compute per-category weekly spending statistics from historical labeled
transactions. Every transaction must carry a category; classify first if
they don't.

Examples:
  spendsage baseline --input history.csv
  spendsage baseline --input history.csv --user alice`,
		RunE: runBaseline,
	}

	cmd.Flags().StringP("input", "i", "", "CSV file of historical labeled transactions (required)")
	cmd.Flags().StringP("user", "u", "default", "user identifier for the baseline")

	_ = cmd.MarkFlagRequired("input")
	_ = viper.BindPFlag("baseline.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("baseline.user", cmd.Flags().Lookup("user"))

	return cmd
}

func runBaseline(_ *cobra.Command, _ []string) error {
	input := viper.GetString("baseline.input")
	userID := viper.GetString("baseline.user")

	txns, skipped, err := ingest.LoadCSV(input)
	if err != nil {
		return err
	}
	if skipped > 0 {
		slog.Warn("Some rows could not be parsed", "skipped", skipped)
	}

	store := baseline.NewStore()
	b, err := store.Establish(txns, userID)
	if err != nil {
		return err
	}

	fmt.Printf("Baseline for %s (%s to %s, %d transactions)\n\n",
		userID, b.Start.Format("2006-01-02"), b.End.Format("2006-01-02"), b.Transactions)

	categories := make([]string, 0, len(b.CategoryStats))
	for cat := range b.CategoryStats {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	fmt.Printf("%-15s %12s %12s %12s %8s\n", "Category", "Mean/week", "Std/week", "Median/week", "Txns")
	for _, cat := range categories {
		s := b.CategoryStats[cat]
		fmt.Printf("%-15s %12.2f %12.2f %12.2f %8d\n",
			cat, s.MeanWeekly, s.StdWeekly, s.MedianWeekly, s.Count)
	}

	fmt.Printf("\nOverall weekly: mean %.2f, std %.2f, p75 %.2f, p90 %.2f\n",
		b.MeanWeeklyTotal, b.StdWeeklyTotal, b.Percentile75, b.Percentile90)
	fmt.Printf("Weekend/weekday spending ratio: %.2f\n", b.WeekendRatio)
	return nil
}
