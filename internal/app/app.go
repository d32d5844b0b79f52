package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"sensor-anomaly-alerts/internal/alerting"
	"sensor-anomaly-alerts/internal/config"
	"sensor-anomaly-alerts/internal/scheduler"
	"sensor-anomaly-alerts/internal/service"
	"sensor-anomaly-alerts/internal/simulator"
	"sensor-anomaly-alerts/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newSimulator() *simulator.Simulator {
	return simulator.New(simulator.Options{
		Seed:             a.Config.Simulator.Seed,
		SpikeProbability: a.Config.Simulator.SpikeProbability,
		TemperatureMin:   a.Config.Simulator.TemperatureMin,
		TemperatureMax:   a.Config.Simulator.TemperatureMax,
		HumidityMin:      a.Config.Simulator.HumidityMin,
		HumidityMax:      a.Config.Simulator.HumidityMax,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running monitoring service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled, history kept in memory")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	notifier := a.newNotifier()

	var measurements storage.MeasurementStore
	var analyses storage.AnalysisStore
	var recommendations storage.RecommendationStore
	if store != nil {
		measurements = store
		analyses = store
		recommendations = store
	}

	svc, err := service.New(a.Config, sched, a.newSimulator(), measurements, analyses, recommendations, notifier, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Int("sensors", len(a.Config.Sensors)).Msg("starting monitoring service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}

// AnalyzeOptions configure the one-shot analyze command.
type AnalyzeOptions struct {
	SensorName string
	Value      *float64
	Lookback   int
}

// ExportOptions hold parameters for exporting historical measurements.
type ExportOptions struct {
	SensorName string
	From       *time.Time
	To         *time.Time
	PNGPath    string
	CSVPath    string
	MaxPoints  int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}
