package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendsage/spendsage/internal/anomaly"
	"github.com/spendsage/spendsage/internal/baseline"
	"github.com/spendsage/spendsage/internal/ingest"
	"github.com/spendsage/spendsage/internal/model"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect spending anomalies",
		Long: `Establish a spending baseline from historical transactions and flag
anomalies: per-category and overall z-score deviations, plus individual
transactions an isolation forest considers unusual.

When no current period is given, the trailing fifth of the historical
window is analyzed against the rest.

Examples:
  spendsage analyze --historical history.csv
  spendsage analyze --historical history.csv --current march.csv
  spendsage analyze --historical history.csv --json`,
		RunE: runAnalyze,
	}

	cmd.Flags().String("historical", "", "CSV file of historical labeled transactions (required)")
	cmd.Flags().String("current", "", "CSV file of the period to analyze")
	cmd.Flags().StringP("user", "u", "default", "user identifier for the baseline")
	cmd.Flags().Bool("json", false, "Emit the full report as JSON")

	_ = cmd.MarkFlagRequired("historical")
	_ = viper.BindPFlag("analysis.historical", cmd.Flags().Lookup("historical"))
	_ = viper.BindPFlag("analysis.current", cmd.Flags().Lookup("current"))
	_ = viper.BindPFlag("analysis.user", cmd.Flags().Lookup("user"))
	_ = viper.BindPFlag("analysis.json", cmd.Flags().Lookup("json"))

	return cmd
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	historicalPath := viper.GetString("analysis.historical")
	currentPath := viper.GetString("analysis.current")
	userID := viper.GetString("analysis.user")
	asJSON := viper.GetBool("analysis.json")

	historical, skipped, err := ingest.LoadCSV(historicalPath)
	if err != nil {
		return err
	}
	if skipped > 0 {
		slog.Warn("Some historical rows could not be parsed", "skipped", skipped)
	}

	var current []model.Transaction
	if currentPath != "" {
		current, skipped, err = ingest.LoadCSV(currentPath)
		if err != nil {
			return err
		}
		if skipped > 0 {
			slog.Warn("Some current rows could not be parsed", "skipped", skipped)
		}
	}

	detector := anomaly.NewDetector(baseline.NewStore())
	report, err := detector.GenerateReport(historical, current, userID)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func printReport(report *model.CombinedReport) {
	fmt.Printf("Anomaly report for %s\n\n", report.UserID)

	printAnomalies("Statistical anomalies", report.Statistical)
	printAnomalies("Unusual transactions", report.Multivariate)

	if len(report.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for _, rec := range report.Recommendations {
			fmt.Printf("  [%s] %s\n", rec.Priority, rec.Message)
			if rec.Action != "" {
				fmt.Printf("         %s\n", rec.Action)
			}
		}
		fmt.Println()
	}

	fmt.Printf("Total anomalies: %d (%d high priority)\n",
		report.Combined.TotalAnomalies, report.Combined.HighPriority)
	if report.Combined.MostAnomalousCategory != "" {
		fmt.Printf("Most affected category: %s\n", report.Combined.MostAnomalousCategory)
	}
}

func printAnomalies(title string, rep model.AnomalyReport) {
	if rep.Summary.Note != "" {
		fmt.Printf("%s: %s\n\n", title, rep.Summary.Note)
		return
	}
	if len(rep.Anomalies) == 0 {
		fmt.Printf("%s: none\n\n", title)
		return
	}

	fmt.Printf("%s:\n", title)
	for _, a := range rep.Anomalies {
		fmt.Printf("  [%s] %s\n", a.Severity, a.Explanation)
	}
	fmt.Println()
}
