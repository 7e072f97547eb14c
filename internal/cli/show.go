package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finantrack/internal/app"
)

var (
	showLimit int
	showSince time.Duration
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recently archived quote samples",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		return getApp().Show(cmd.Context(), app.ShowOptions{Limit: showLimit, Since: showSince})
	},
}

func init() {
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 30, "Number of samples to display")
	showCmd.Flags().DurationVar(&showSince, "since", 0, "Show every sample in this trailing window instead (e.g. 24h)")
}
