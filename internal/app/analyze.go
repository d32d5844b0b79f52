package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"sensor-anomaly-alerts/internal/analyzer"
	"sensor-anomaly-alerts/internal/config"
	"sensor-anomaly-alerts/internal/detector"
)

// Analyze runs the detection pipeline once over a sensor's stored history
// and prints the resulting report.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	sensor, err := a.findSensor(opts.SensorName)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot analyze stored history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	lookback := opts.Lookback
	if lookback <= 0 {
		lookback = a.Config.Detection.LookbackLimit
	}

	rows, err := store.ListRecentMeasurements(ctx, sensor.Name, lookback)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no measurements stored for sensor %q", sensor.Name)
	}

	// Rows arrive newest first; the detectors want chronological order.
	history := make([]detector.Reading, len(rows))
	for i, m := range rows {
		history[len(rows)-1-i] = detector.Reading{
			Timestamp: m.RecordedAt,
			Value:     m.Value.InexactFloat64(),
		}
	}

	var current detector.Reading
	if opts.Value != nil {
		current = detector.Reading{Timestamp: time.Now().UTC(), Value: *opts.Value}
	} else {
		current = history[len(history)-1]
		history = history[:len(history)-1]
	}

	an, err := a.newAnalyzer()
	if err != nil {
		return err
	}
	an.Train(history)

	report := an.Analyze(analyzer.Input{
		SensorName: sensor.Name,
		SensorType: sensor.Type,
		RoomType:   sensor.Room,
		History:    history,
		Current:    current,
	})

	printReport(report, current.Value)
	return nil
}

func (a *App) findSensor(name string) (config.SensorConfig, error) {
	for _, s := range a.Config.Sensors {
		if s.Name == name {
			return s, nil
		}
	}
	return config.SensorConfig{}, fmt.Errorf("sensor %q is not configured", name)
}

func (a *App) newAnalyzer() (*analyzer.Analyzer, error) {
	profiles, err := a.Config.RoomProfiles()
	if err != nil {
		return nil, err
	}
	return analyzer.New(analyzer.Options{
		Window:              a.Config.Detection.Window,
		ZScoreThreshold:     a.Config.Detection.ZScoreThreshold,
		PredictionThreshold: a.Config.Detection.PredictionThreshold,
		Contamination:       a.Config.Detection.Contamination,
		MinTrainingSamples:  a.Config.Detection.MinTrainingSamples,
	}, profiles, a.Logger), nil
}

func printReport(report analyzer.Report, currentValue float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Sensor:\t%s\n", report.SensorName)
	fmt.Fprintf(w, "Analyzed:\t%s\n", report.AnalyzedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Current value:\t%.1f\n", currentValue)
	fmt.Fprintf(w, "Classical:\tanomaly=%t score=%.2f (%s)\n",
		report.Classical.IsAnomaly, report.Classical.Score, report.Classical.Description)
	fmt.Fprintf(w, "Seasonal:\tanomaly=%t score=%.2f (%s)\n",
		report.Seasonal.IsAnomaly, report.Seasonal.Score, report.Seasonal.Description)
	fmt.Fprintf(w, "Forest:\tanomaly=%t score=%.2f (%s)\n",
		report.Forest.IsAnomaly, report.Forest.Score, report.Forest.Description)
	fmt.Fprintf(w, "Ensemble:\tanomaly=%t score=%.2f agree=%t\n",
		report.Ensemble.IsAnomaly, report.Ensemble.Score, report.Ensemble.ModelsAgree)
	fmt.Fprintf(w, "Consensus:\tanomaly=%t agreement=%.2f\n",
		report.Consensus.ConsensusIsAnomaly, report.Consensus.AgreementScore)

	rec := report.Recommendation
	fmt.Fprintf(w, "Severity:\t%s (priority %d/5)\n", rec.Severity, rec.Priority)
	fmt.Fprintf(w, "Problem:\t%s\n", rec.Problem)
	fmt.Fprintf(w, "Action:\t%s\n", rec.Action)
	fmt.Fprintf(w, "Reasoning:\t%s\n", rec.Reasoning)
	fmt.Fprintf(w, "Target:\t%.1f (current %.1f)\n", rec.TargetValue, rec.CurrentValue)
	fmt.Fprintf(w, "Confidence:\t%.2f\n", rec.Confidence)
	if rec.EstimatedTimeToNormal != "" {
		fmt.Fprintf(w, "Time to normal:\t%s\n", rec.EstimatedTimeToNormal)
	}
	if rec.CondensationRisk {
		fmt.Fprintln(w, "Condensation risk:\tyes")
	}
	w.Flush()
}
