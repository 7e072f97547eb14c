package cli

import (
	"github.com/spf13/cobra"

	"finantrack/internal/app"
	"finantrack/internal/simulations"
)

var (
	listCurrency   string
	createAmount   string
	createCurrency string
	updateID       string
	updateAmount   string
	updateCurrency string
	deleteID       string
)

var simulationsCmd = &cobra.Command{
	Use:     "simulations",
	Aliases: []string{"sim"},
	Short:   "Manage conversion simulations",
}

var simulationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved simulations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ListSimulations(cmd.Context(), listCurrency)
	},
}

var simulationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Convert an amount at the current quote and save it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().CreateSimulation(cmd.Context(), app.SimulationInput{
			Amount:   createAmount,
			Currency: createCurrency,
		})
	},
}

var simulationsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Re-convert an existing simulation at the current quote",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().UpdateSimulation(cmd.Context(), app.SimulationInput{
			ID:       simulations.ID(updateID),
			Amount:   updateAmount,
			Currency: updateCurrency,
		})
	},
}

var simulationsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().DeleteSimulation(cmd.Context(), simulations.ID(deleteID))
	},
}

func init() {
	simulationsListCmd.Flags().StringVar(&listCurrency, "currency", "", "Only show simulations in this currency")

	simulationsCreateCmd.Flags().StringVar(&createAmount, "amount", "", "Amount in local currency")
	simulationsCreateCmd.Flags().StringVar(&createCurrency, "currency", "", "Target currency (defaults to the first tracked currency)")
	_ = simulationsCreateCmd.MarkFlagRequired("amount")

	simulationsUpdateCmd.Flags().StringVar(&updateID, "id", "", "Simulation id")
	simulationsUpdateCmd.Flags().StringVar(&updateAmount, "amount", "", "New amount in local currency")
	simulationsUpdateCmd.Flags().StringVar(&updateCurrency, "currency", "", "New target currency")
	_ = simulationsUpdateCmd.MarkFlagRequired("id")

	simulationsDeleteCmd.Flags().StringVar(&deleteID, "id", "", "Simulation id")
	_ = simulationsDeleteCmd.MarkFlagRequired("id")

	simulationsCmd.AddCommand(simulationsListCmd, simulationsCreateCmd, simulationsUpdateCmd, simulationsDeleteCmd)
}
