package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"finantrack/internal/app"
)

var (
	backfillDays   int
	backfillDryRun bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Store the daily quote history in the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backfillDays < 0 {
			return fmt.Errorf("--days must not be negative")
		}

		opts := app.BackfillOptions{
			Days:   backfillDays,
			DryRun: backfillDryRun,
		}

		return getApp().Backfill(cmd.Context(), opts)
	},
}

func init() {
	backfillCmd.Flags().IntVar(&backfillDays, "days", 0, "Number of days to fetch (defaults to config)")
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "Print samples without writing to storage")
}
