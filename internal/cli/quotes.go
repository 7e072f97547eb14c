package cli

import (
	"github.com/spf13/cobra"
)

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Print the latest quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Quotes(cmd.Context())
	},
}
