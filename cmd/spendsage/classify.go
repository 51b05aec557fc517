package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/engine"
	"github.com/spendsage/spendsage/internal/ingest"
	"github.com/spendsage/spendsage/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Categorize transactions from a CSV file",
		Long: `Categorize transactions through the layered pipeline: exact merchant
rules first, then fuzzy matching against known merchants, then the trained
classifier, with Others as the final fallback.

Low-confidence predictions are logged to the review queue.

Examples:
  spendsage classify --input transactions.csv
  spendsage classify --input transactions.csv --dry-run`,
		RunE: runClassify,
	}

	cmd.Flags().StringP("input", "i", "", "CSV file of transactions to classify (required)")
	cmd.Flags().Bool("dry-run", false, "Preview without saving changes")

	_ = cmd.MarkFlagRequired("input")
	_ = viper.BindPFlag("classification.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("classification.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	input := viper.GetString("classification.input")
	dryRun := viper.GetBool("classification.dry_run")

	txns, skipped, err := ingest.LoadCSV(input)
	if err != nil {
		return err
	}
	if skipped > 0 {
		slog.Warn("Some rows could not be parsed", "skipped", skipped)
	}
	if len(txns) == 0 {
		return common.NewUserError(fmt.Sprintf("no transactions found in %s", input), nil)
	}

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	eng, err := newEngine(db)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(txns),
		progressbar.OptionSetDescription("Classifying transactions..."),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)

	results := make([]model.BatchResult, 0, len(txns))
	for _, batch := range eng.ClassifyBatch(ctx, txns) {
		results = append(results, batch)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	printResults(results)

	if dryRun {
		slog.Info("Dry run, results not saved")
		return nil
	}

	if err := db.SaveResults(ctx, results); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	common.LogInfo("Classification complete", common.Fields{"transactions": len(results)})
	return nil
}

func printResults(results []model.BatchResult) {
	methods := make(map[model.Method]int)
	correct, labeled := 0, 0
	for _, r := range results {
		methods[r.Result.Method]++
		if r.Correct != nil {
			labeled++
			if *r.Correct {
				correct++
			}
		}
	}

	fmt.Printf("Classified %d transactions\n", len(results))
	for _, m := range []model.Method{model.MethodRule, model.MethodFuzzy, model.MethodML, model.MethodDefault} {
		if methods[m] > 0 {
			fmt.Printf("  %-12s %d\n", m, methods[m])
		}
	}
	if labeled > 0 {
		fmt.Printf("Accuracy against provided labels: %.1f%% (%d/%d)\n",
			float64(correct)/float64(labeled)*100, correct, labeled)
	}

	summary := engine.SpendingSummary(results)
	categories := make([]string, 0, len(summary))
	for cat := range summary {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	fmt.Println("\nSpending by category:")
	for _, cat := range categories {
		s := summary[cat]
		fmt.Printf("  %-15s %10.2f  (%d txns, %.1f%%)\n",
			cat, s.TotalSpent, s.TransactionCount, s.Percentage)
	}
}
