package app

import (
	"context"
	"errors"
	"time"

	"sensor-anomaly-alerts/internal/alerting"
	"sensor-anomaly-alerts/internal/analyzer"
	"sensor-anomaly-alerts/internal/detector"
	"sensor-anomaly-alerts/internal/recommend"
)

// SimulateReading pushes one synthetic reading through the full pipeline:
// a simulated baseline history is generated, the trainable detectors are
// fitted on it, and the given value is analyzed and alerted on as if it
// had been sampled live.
func (a *App) SimulateReading(ctx context.Context, sensorName string, value float64) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	sensor, err := a.findSensor(sensorName)
	if err != nil {
		return err
	}

	kind := recommend.ParseSensorKind(sensor.Type)
	sim := a.newSimulator()

	// Baseline history without spikes so the detectors learn normal
	// behaviour before seeing the simulated value.
	samples := a.Config.Detection.LookbackLimit
	now := time.Now().UTC()
	history := make([]detector.Reading, samples)
	for i := range history {
		history[i] = detector.Reading{
			Timestamp: now.Add(-time.Duration(samples-i) * a.Config.Scheduler.Interval),
			Value:     sim.NextBaseline(kind),
		}
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
		Current:    detector.Reading{Timestamp: now, Value: value},
	})

	printReport(report, value)

	if !report.Anomalous() {
		a.Logger.Info().Str("sensor", sensor.Name).Float64("value", value).
			Msg("simulated reading is not anomalous; no alert dispatched")
		return nil
	}

	minSeverity := recommend.Severity(a.Config.Alerting.MinSeverity)
	if !report.Recommendation.Severity.AtLeast(minSeverity) {
		a.Logger.Info().Str("severity", string(report.Recommendation.Severity)).
			Msg("simulated anomaly below alerting severity floor")
		return nil
	}

	rec := report.Recommendation
	return notifier.Notify(ctx, alerting.Notification{
		SensorName:     rec.SensorName,
		RoomType:       rec.RoomType,
		Severity:       rec.Severity,
		Priority:       rec.Priority,
		Problem:        rec.Problem,
		Action:         rec.Action,
		TargetValue:    rec.TargetValue,
		CurrentValue:   rec.CurrentValue,
		Confidence:     rec.Confidence,
		TimeToNormal:   rec.EstimatedTimeToNormal,
		Channels:       a.Config.Alerting.Channels,
		ObservedAt:     now,
		AgreementScore: report.Consensus.AgreementScore,
	})
}
