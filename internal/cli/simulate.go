package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	simulateSensor string
	simulateValue  float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-reading",
	Short: "Push one synthetic reading through the pipeline and alert on it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateSensor == "" {
			return fmt.Errorf("--sensor is required")
		}
		if !cmd.Flags().Changed("value") {
			return fmt.Errorf("--value is required")
		}

		return getApp().SimulateReading(cmd.Context(), simulateSensor, simulateValue)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateSensor, "sensor", "", "Sensor name to simulate")
	simulateCmd.Flags().Float64Var(&simulateValue, "value", 0, "Reading value to push through the pipeline")
}
