package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"finantrack/internal/app"
)

var (
	historyDays    int
	historySort    bool
	historyCSVPath string
	historyPNGPath string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily quote history merged by date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDays < 0 {
			return fmt.Errorf("--days must not be negative")
		}

		opts := app.HistoryOptions{
			Days:    historyDays,
			Sort:    historySort,
			CSVPath: historyCSVPath,
			PNGPath: historyPNGPath,
		}

		return getApp().History(cmd.Context(), opts)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 0, "Number of days to fetch (defaults to config)")
	historyCmd.Flags().BoolVar(&historySort, "sort", false, "Order dates ascending instead of first-seen")
	historyCmd.Flags().StringVar(&historyCSVPath, "csv", "", "Path to write CSV data")
	historyCmd.Flags().StringVar(&historyPNGPath, "png", "", "Path to write PNG chart")
}
