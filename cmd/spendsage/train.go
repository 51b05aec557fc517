package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendsage/spendsage/internal/config"
	"github.com/spendsage/spendsage/internal/ingest"
	"github.com/spendsage/spendsage/internal/mlclass"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the classifier on labeled transactions",
		Long: `Train the naive Bayes classifier on labeled transactions and persist the
model artifact. Resolved review-queue corrections can be folded into the
training set so the model learns from human feedback.

Examples:
  spendsage train --input labeled.csv
  spendsage train --input labeled.csv --include-reviews`,
		RunE: runTrain,
	}

	cmd.Flags().StringP("input", "i", "", "CSV file of labeled transactions (required)")
	cmd.Flags().Float64P("test-fraction", "t", mlclass.DefaultTestFraction, "holdout fraction for accuracy measurement")
	cmd.Flags().Bool("include-reviews", false, "Fold resolved review corrections into the training set")

	_ = cmd.MarkFlagRequired("input")
	_ = viper.BindPFlag("training.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("training.test_fraction", cmd.Flags().Lookup("test-fraction"))
	_ = viper.BindPFlag("training.include_reviews", cmd.Flags().Lookup("include-reviews"))

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	input := viper.GetString("training.input")
	testFraction := viper.GetFloat64("training.test_fraction")
	includeReviews := viper.GetBool("training.include_reviews")

	txns, skipped, err := ingest.LoadCSV(input)
	if err != nil {
		return err
	}
	if skipped > 0 {
		slog.Warn("Some rows could not be parsed", "skipped", skipped)
	}

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	if includeReviews {
		corrections, corrErr := db.ResolvedCorrections(ctx)
		if corrErr != nil {
			return corrErr
		}
		slog.Info("Including resolved review corrections", "count", len(corrections))
		txns = append(txns, corrections...)
	}

	eng, err := newEngine(db)
	if err != nil {
		return err
	}

	metrics, err := eng.Train(ctx, txns, testFraction)
	if err != nil {
		return err
	}

	path := config.ModelPath()
	if err := eng.SaveModel(path); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}

	fmt.Printf("Trained on %d samples, tested on %d\n", metrics.TrainSamples, metrics.TestSamples)
	fmt.Printf("Holdout accuracy: %.1f%%\n", metrics.Accuracy*100)
	fmt.Printf("Model saved to %s\n", path)
	return nil
}
