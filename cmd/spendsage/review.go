package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage the low-confidence review queue",
	}

	cmd.AddCommand(reviewListCmd())
	cmd.AddCommand(reviewResolveCmd())
	return cmd
}

func reviewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending review entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			entries, err := db.PendingReviews(ctx)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("Review queue is empty")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %s\n", e.ID, e.LoggedAt.Format("2006-01-02 15:04"))
				fmt.Printf("    %q -> %s (%.0f%% via %s)\n",
					e.Description, e.PredictedCategory, e.Confidence*100, e.Method)
			}
			fmt.Printf("\n%d entries pending\n", len(entries))
			return nil
		},
	}
}

func reviewResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id> <category>",
		Short: "Record the correct category for a review entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			if err := db.ResolveReview(ctx, args[0], args[1]); err != nil {
				return err
			}

			fmt.Printf("Resolved %s as %s\n", args[0], args[1])
			fmt.Println("Run 'spendsage train --include-reviews' to fold corrections into the model")
			return nil
		},
	}
}
