package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sensor-anomaly-alerts/internal/app"
)

var (
	analyzeSensor   string
	analyzeValue    float64
	analyzeLookback int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the detection pipeline once over a sensor's stored history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeSensor == "" {
			return fmt.Errorf("--sensor is required")
		}

		opts := app.AnalyzeOptions{
			SensorName: analyzeSensor,
			Lookback:   analyzeLookback,
		}
		if cmd.Flags().Changed("value") {
			opts.Value = &analyzeValue
		}

		return getApp().Analyze(cmd.Context(), opts)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSensor, "sensor", "", "Sensor name to analyze")
	analyzeCmd.Flags().Float64Var(&analyzeValue, "value", 0, "Analyze this value instead of the latest stored reading")
	analyzeCmd.Flags().IntVar(&analyzeLookback, "lookback", 0, "History size to load (defaults to config)")
}
