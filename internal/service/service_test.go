package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sensor-anomaly-alerts/internal/alerting"
	"sensor-anomaly-alerts/internal/config"
	"sensor-anomaly-alerts/internal/simulator"
)

func testConfig() *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{Interval: 30 * time.Second},
		Detection: config.DetectionConfig{
			Window:              24,
			ZScoreThreshold:     2.0,
			PredictionThreshold: 2.0,
			Contamination:       0.1,
			MinTrainingSamples:  10,
			LookbackLimit:       168,
		},
		Sensors: []config.SensorConfig{
			{Name: "sensor_1_temp", Type: "Temperature", Room: "server_room"},
			{Name: "sensor_2_hum", Type: "Humidity", Room: "server_room"},
		},
	}
}

func testSimulator(spikeProbability float64) *simulator.Simulator {
	return simulator.New(simulator.Options{
		Seed:             7,
		SpikeProbability: spikeProbability,
		TemperatureMin:   18,
		TemperatureMax:   22,
		HumidityMin:      50,
		HumidityMax:      60,
	}, zerolog.Nop())
}

type recordingNotifier struct {
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	r.notes = append(r.notes, note)
	return nil
}

func TestProcessCycleWithoutStoresKeepsMemoryHistory(t *testing.T) {
	svc, err := New(testConfig(), nil, testSimulator(0), nil, nil, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("service should construct: %v", err)
	}

	ctx := context.Background()
	cycle := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		if err := svc.ProcessCycle(ctx, cycle.Add(time.Duration(i)*30*time.Second)); err != nil {
			t.Fatalf("cycle %d failed: %v", i, err)
		}
	}

	for _, sensor := range svc.sensors {
		ring := svc.memory[sensor.Name]
		if len(ring) != 20 {
			t.Fatalf("sensor %s should hold 20 readings, got %d", sensor.Name, len(ring))
		}
	}
}

func TestMemoryRingIsBounded(t *testing.T) {
	cfg := testConfig()
	cfg.Detection.LookbackLimit = 5

	svc, err := New(cfg, nil, testSimulator(0), nil, nil, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("service should construct: %v", err)
	}

	ctx := context.Background()
	cycle := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		if err := svc.ProcessCycle(ctx, cycle.Add(time.Duration(i)*30*time.Second)); err != nil {
			t.Fatalf("cycle %d failed: %v", i, err)
		}
	}

	if got := len(svc.memory["sensor_1_temp"]); got != 5 {
		t.Fatalf("memory ring should be capped at the lookback limit, got %d", got)
	}
}

func TestAlertsRespectSeverityFloor(t *testing.T) {
	cfg := testConfig()
	cfg.Alerting = config.AlertingConfig{
		Enabled:     true,
		MinSeverity: "critical",
		Channels:    []string{"telegram"},
	}

	notifier := &recordingNotifier{}
	svc, err := New(cfg, nil, testSimulator(1.0), nil, nil, nil, notifier, zerolog.Nop())
	if err != nil {
		t.Fatalf("service should construct: %v", err)
	}

	// Every cycle spikes beyond the range; with a critical-only floor the
	// dispatched alerts must all carry priority 5.
	ctx := context.Background()
	cycle := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		if err := svc.ProcessCycle(ctx, cycle.Add(time.Duration(i)*30*time.Second)); err != nil {
			t.Fatalf("cycle %d failed: %v", i, err)
		}
	}

	for _, note := range notifier.notes {
		if note.Priority != 5 {
			t.Fatalf("severity floor violated: %+v", note)
		}
	}
}

func TestRunWithoutSchedulerFails(t *testing.T) {
	svc, err := New(testConfig(), nil, testSimulator(0), nil, nil, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("service should construct: %v", err)
	}
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("running without a scheduler should fail")
	}
}
