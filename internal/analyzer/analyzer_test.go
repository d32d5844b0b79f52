package analyzer

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sensor-anomaly-alerts/internal/detector"
	"sensor-anomaly-alerts/internal/recommend"
)

func testAnalyzer() *Analyzer {
	return New(Options{
		Window:              24,
		ZScoreThreshold:     2.0,
		PredictionThreshold: 2.0,
		Contamination:       0.1,
		MinTrainingSamples:  10,
	}, recommend.DefaultProfiles(), zerolog.Nop())
}

func stableReadings(n int, around float64) []detector.Reading {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	readings := make([]detector.Reading, n)
	for i := range readings {
		value := around - 0.1
		if i%2 == 1 {
			value = around + 0.1
		}
		readings[i] = detector.Reading{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Value:     value,
		}
	}
	return readings
}

func TestAnalyzeEmptyHistoryIsQuiet(t *testing.T) {
	an := testAnalyzer()

	report := an.Analyze(Input{
		SensorName: "sensor_1",
		SensorType: "Temperature",
		RoomType:   "server_room",
		Current:    detector.Reading{Timestamp: time.Now(), Value: 21.0},
	})

	if report.Anomalous() {
		t.Fatalf("no history should never be anomalous: %+v", report)
	}
	if report.Recommendation.Action != "no action required" {
		t.Fatalf("quiet reading should need no action, got %q", report.Recommendation.Action)
	}
	if report.Classical.Description != "not enough data for analysis" {
		t.Fatalf("classical verdict should flag missing data: %q", report.Classical.Description)
	}
}

func TestAnalyzeFlagsSpike(t *testing.T) {
	an := testAnalyzer()
	history := stableReadings(48, 21.0)
	an.Train(history)

	if !an.Trained() {
		t.Fatal("48 samples should train both trainable detectors")
	}

	report := an.Analyze(Input{
		SensorName: "sensor_1",
		SensorType: "Temperature",
		RoomType:   "server_room",
		History:    history,
		Current:    detector.Reading{Timestamp: history[47].Timestamp.Add(time.Hour), Value: 35.0},
	})

	if !report.Anomalous() {
		t.Fatalf("35.0 against a stable 21.0 series should be anomalous: %+v", report)
	}
	if !report.Classical.IsAnomaly {
		t.Fatal("the rolling z-score should fire on the spike")
	}
	if report.Recommendation.Severity != recommend.SeverityCritical {
		t.Fatalf("an 11-degree excursion should be critical, got %s", report.Recommendation.Severity)
	}
	if report.Recommendation.Priority != 5 {
		t.Fatalf("critical should map to priority 5, got %d", report.Recommendation.Priority)
	}
	if report.Consensus.AgreementScore < 0 || report.Consensus.AgreementScore > 1 {
		t.Fatalf("agreement out of [0,1]: %v", report.Consensus.AgreementScore)
	}
}

func TestTrainRequiresEnoughHistory(t *testing.T) {
	an := testAnalyzer()

	an.Train(stableReadings(5, 21.0))
	if an.Trained() {
		t.Fatal("five samples must not train the detectors")
	}

	an.Train(stableReadings(12, 21.0))
	if !an.Trained() {
		t.Fatal("twelve samples should train the detectors")
	}
}

func TestAnalyzeQuietReadingProducesCompleteReport(t *testing.T) {
	an := testAnalyzer()
	history := stableReadings(48, 21.0)
	an.Train(history)

	report := an.Analyze(Input{
		SensorName: "sensor_1",
		SensorType: "Temperature",
		RoomType:   "server_room",
		History:    history,
		Current:    detector.Reading{Timestamp: history[47].Timestamp.Add(time.Hour), Value: 21.0},
	})

	if report.Anomalous() {
		t.Fatalf("continuing the series should be quiet: %+v", report)
	}
	if report.SensorName != "sensor_1" {
		t.Fatalf("report should name the sensor, got %q", report.SensorName)
	}
	if report.AnalyzedAt.IsZero() {
		t.Fatal("report should be timestamped")
	}
	if report.Recommendation.SensorName != "sensor_1" {
		t.Fatal("even quiet readings carry a full recommendation")
	}
}
