package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sensor-anomaly-alerts/internal/alerting"
	"sensor-anomaly-alerts/internal/analyzer"
	"sensor-anomaly-alerts/internal/config"
	"sensor-anomaly-alerts/internal/detector"
	"sensor-anomaly-alerts/internal/recommend"
	"sensor-anomaly-alerts/internal/scheduler"
	"sensor-anomaly-alerts/internal/simulator"
	"sensor-anomaly-alerts/internal/storage"
)

// Sensor is one monitored input.
type Sensor struct {
	Name string
	Type string
	Room string
}

// Service orchestrates measurement generation, detection, persistence,
// and alerting. Each sensor owns its own analyzer so the trainable
// detectors fit per-series state.
type Service struct {
	scheduler       *scheduler.Scheduler
	sim             *simulator.Simulator
	measurements    storage.MeasurementStore
	analyses        storage.AnalysisStore
	recommendations storage.RecommendationStore
	notifier        alerting.Notifier
	logger          zerolog.Logger

	sensors     []Sensor
	analyzers   map[string]*analyzer.Analyzer
	newAnalyzer func() *analyzer.Analyzer
	memory      map[string][]detector.Reading

	lookback    int
	minTraining int
	minSeverity recommend.Severity
	channels    []string
	alertsOn    bool
	locker      storage.AdvisoryLocker
	lockKey     int64
}

// New constructs the monitoring service.
func New(cfg *config.Config, sched *scheduler.Scheduler, sim *simulator.Simulator, measurements storage.MeasurementStore, analyses storage.AnalysisStore, recommendations storage.RecommendationStore, notifier alerting.Notifier, logger zerolog.Logger) (*Service, error) {
	profiles, err := cfg.RoomProfiles()
	if err != nil {
		return nil, err
	}

	opts := analyzer.Options{
		Window:              cfg.Detection.Window,
		ZScoreThreshold:     cfg.Detection.ZScoreThreshold,
		PredictionThreshold: cfg.Detection.PredictionThreshold,
		Contamination:       cfg.Detection.Contamination,
		MinTrainingSamples:  cfg.Detection.MinTrainingSamples,
	}

	sensors := make([]Sensor, 0, len(cfg.Sensors))
	for _, sc := range cfg.Sensors {
		sensors = append(sensors, Sensor{Name: sc.Name, Type: sc.Type, Room: sc.Room})
	}

	var locker storage.AdvisoryLocker
	if l, ok := measurements.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:       sched,
		sim:             sim,
		measurements:    measurements,
		analyses:        analyses,
		recommendations: recommendations,
		notifier:        notifier,
		logger:          logger.With().Str("component", "service").Logger(),
		sensors:         sensors,
		analyzers:       make(map[string]*analyzer.Analyzer),
		newAnalyzer: func() *analyzer.Analyzer {
			return analyzer.New(opts, profiles, logger)
		},
		memory:      make(map[string][]detector.Reading),
		lookback:    cfg.Detection.LookbackLimit,
		minTraining: cfg.Detection.MinTrainingSamples,
		minSeverity: recommend.Severity(cfg.Alerting.MinSeverity),
		channels:    cfg.Alerting.Channels,
		alertsOn:    cfg.Alerting.Enabled,
		locker:      locker,
		lockKey:     cfg.Scheduler.AdvisoryLockKey,
	}, nil
}

// Run begins the aligned sampling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessCycle)
}

// ProcessCycle samples and analyzes every configured sensor once.
func (s *Service) ProcessCycle(ctx context.Context, cycle time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("cycle", cycle).Msg("skip cycle because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	for _, sensor := range s.sensors {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.processSensor(ctx, cycle, sensor); err != nil {
			s.logger.Error().Err(err).Str("sensor", sensor.Name).Time("cycle", cycle).
				Msg("failed to process sensor")
		}
	}
	return nil
}

func (s *Service) processSensor(ctx context.Context, cycle time.Time, sensor Sensor) error {
	kind := recommend.ParseSensorKind(sensor.Type)
	current := detector.Reading{
		Timestamp: cycle,
		Value:     s.sim.NextValue(kind),
	}

	history, err := s.loadHistory(ctx, sensor.Name)
	if err != nil {
		return err
	}

	s.appendReading(ctx, sensor, kind, current)

	an := s.analyzerFor(sensor.Name)
	if !an.Trained() && len(history) >= s.minTraining {
		an.Train(history)
	}

	report := an.Analyze(analyzer.Input{
		SensorName: sensor.Name,
		SensorType: sensor.Type,
		RoomType:   sensor.Room,
		History:    history,
		Current:    current,
	})

	s.persistAnalysis(ctx, report)

	if !report.Anomalous() {
		return nil
	}

	s.logger.Info().Str("sensor", sensor.Name).
		Float64("value", current.Value).
		Str("severity", string(report.Recommendation.Severity)).
		Int("priority", report.Recommendation.Priority).
		Msg("anomaly confirmed")

	s.persistRecommendation(ctx, report.Recommendation)

	if s.alertsOn && s.notifier != nil && report.Recommendation.Severity.AtLeast(s.minSeverity) {
		note := alerting.Notification{
			SensorName:     report.Recommendation.SensorName,
			RoomType:       report.Recommendation.RoomType,
			Severity:       report.Recommendation.Severity,
			Priority:       report.Recommendation.Priority,
			Problem:        report.Recommendation.Problem,
			Action:         report.Recommendation.Action,
			TargetValue:    report.Recommendation.TargetValue,
			CurrentValue:   report.Recommendation.CurrentValue,
			Confidence:     report.Recommendation.Confidence,
			TimeToNormal:   report.Recommendation.EstimatedTimeToNormal,
			Channels:       s.channels,
			ObservedAt:     cycle,
			AgreementScore: report.Consensus.AgreementScore,
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Str("sensor", sensor.Name).Msg("failed to dispatch alert")
		}
	}

	return nil
}

// loadHistory returns the sensor's lookback window oldest first, from the
// database when configured, otherwise from the in-memory ring.
func (s *Service) loadHistory(ctx context.Context, sensorName string) ([]detector.Reading, error) {
	if s.measurements == nil {
		return s.memory[sensorName], nil
	}

	rows, err := s.measurements.ListRecentMeasurements(ctx, sensorName, s.lookback)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	history := make([]detector.Reading, len(rows))
	for i, m := range rows {
		history[len(rows)-1-i] = detector.Reading{
			Timestamp: m.RecordedAt,
			Value:     m.Value.InexactFloat64(),
		}
	}
	return history, nil
}

func (s *Service) appendReading(ctx context.Context, sensor Sensor, kind recommend.SensorKind, r detector.Reading) {
	if s.measurements == nil {
		ring := append(s.memory[sensor.Name], r)
		if len(ring) > s.lookback {
			ring = ring[len(ring)-s.lookback:]
		}
		s.memory[sensor.Name] = ring
		return
	}

	m := storage.Measurement{
		SensorName: sensor.Name,
		SensorKind: string(kind),
		RoomType:   sensor.Room,
		Value:      decimal.NewFromFloat(r.Value),
		RecordedAt: r.Timestamp,
	}
	if _, err := s.measurements.InsertMeasurement(ctx, m); err != nil {
		s.logger.Error().Err(err).Str("sensor", sensor.Name).Msg("failed to persist measurement")
	}
}

func (s *Service) persistAnalysis(ctx context.Context, report analyzer.Report) {
	if s.analyses == nil {
		return
	}
	rec := storage.AnalysisRecord{
		SensorName:         report.SensorName,
		ClassicalIsAnomaly: report.Classical.IsAnomaly,
		ClassicalScore:     decimal.NewFromFloat(report.Classical.Score),
		EnsembleIsAnomaly:  report.Ensemble.IsAnomaly,
		EnsembleScore:      decimal.NewFromFloat(report.Ensemble.Score),
		ModelsAgree:        report.Consensus.ModelsAgree,
		ConsensusIsAnomaly: report.Consensus.ConsensusIsAnomaly,
		AgreementScore:     decimal.NewFromFloat(report.Consensus.AgreementScore),
	}
	if _, err := s.analyses.InsertAnalysis(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("sensor", report.SensorName).Msg("failed to persist analysis")
	}
}

func (s *Service) persistRecommendation(ctx context.Context, rec recommend.Recommendation) {
	if s.recommendations == nil {
		return
	}
	row := storage.RecommendationRecord{
		SensorName:   rec.SensorName,
		RoomType:     rec.RoomType,
		Problem:      rec.Problem,
		Action:       rec.Action,
		Reasoning:    rec.Reasoning,
		TargetValue:  decimal.NewFromFloat(rec.TargetValue),
		CurrentValue: decimal.NewFromFloat(rec.CurrentValue),
		Confidence:   decimal.NewFromFloat(rec.Confidence),
		Severity:     string(rec.Severity),
		Priority:     rec.Priority,
		TimeToNormal: rec.EstimatedTimeToNormal,
	}
	if _, err := s.recommendations.InsertRecommendation(ctx, row); err != nil {
		s.logger.Error().Err(err).Str("sensor", rec.SensorName).Msg("failed to persist recommendation")
	}
}

func (s *Service) analyzerFor(sensorName string) *analyzer.Analyzer {
	if an, ok := s.analyzers[sensorName]; ok {
		return an
	}
	an := s.newAnalyzer()
	s.analyzers[sensorName] = an
	return an
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
