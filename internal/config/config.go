package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"sensor-anomaly-alerts/internal/logging"
	"sensor-anomaly-alerts/internal/recommend"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig             `mapstructure:"app"`
	Logging   logging.Config        `mapstructure:"logging"`
	Database  DatabaseConfig        `mapstructure:"database"`
	Scheduler SchedulerConfig       `mapstructure:"scheduler"`
	Simulator SimulatorConfig       `mapstructure:"simulator"`
	Detection DetectionConfig       `mapstructure:"detection"`
	Alerting  AlertingConfig        `mapstructure:"alerting"`
	Export    ExportConfig          `mapstructure:"export"`
	Sensors   []SensorConfig        `mapstructure:"sensors"`
	Rooms     map[string]RoomConfig `mapstructure:"rooms"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// SchedulerConfig governs sampling cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// SimulatorConfig tunes the synthetic measurement generator.
type SimulatorConfig struct {
	Seed             int64   `mapstructure:"seed"`
	SpikeProbability float64 `mapstructure:"spike_probability"`
	TemperatureMin   float64 `mapstructure:"temperature_min"`
	TemperatureMax   float64 `mapstructure:"temperature_max"`
	HumidityMin      float64 `mapstructure:"humidity_min"`
	HumidityMax      float64 `mapstructure:"humidity_max"`
}

// DetectionConfig tunes the detector suites.
type DetectionConfig struct {
	Window              int     `mapstructure:"window"`
	ZScoreThreshold     float64 `mapstructure:"zscore_threshold"`
	PredictionThreshold float64 `mapstructure:"prediction_threshold"`
	Contamination       float64 `mapstructure:"contamination"`
	MinTrainingSamples  int     `mapstructure:"min_training_samples"`
	LookbackLimit       int     `mapstructure:"lookback_limit"`
}

// SensorConfig declares one monitored sensor.
type SensorConfig struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
	Room string `mapstructure:"room"`
}

// RoomConfig overrides one room archetype's profile.
type RoomConfig struct {
	TemperatureMin    float64 `mapstructure:"temperature_min"`
	TemperatureMax    float64 `mapstructure:"temperature_max"`
	TemperatureTarget float64 `mapstructure:"temperature_target"`
	HumidityMin       float64 `mapstructure:"humidity_min"`
	HumidityMax       float64 `mapstructure:"humidity_max"`
	HumidityTarget    float64 `mapstructure:"humidity_target"`
}

// AlertingConfig defines alert routing and the severity floor.
type AlertingConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	MinSeverity string         `mapstructure:"min_severity"`
	Channels    []string       `mapstructure:"channels"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram alert channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLIMWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "climwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "30s")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x636c696d))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("simulator.spike_probability", 0.05)
	v.SetDefault("simulator.temperature_min", 18.0)
	v.SetDefault("simulator.temperature_max", 22.0)
	v.SetDefault("simulator.humidity_min", 50.0)
	v.SetDefault("simulator.humidity_max", 60.0)

	v.SetDefault("detection.window", 24)
	v.SetDefault("detection.zscore_threshold", 2.0)
	v.SetDefault("detection.prediction_threshold", 2.0)
	v.SetDefault("detection.contamination", 0.1)
	v.SetDefault("detection.min_training_samples", 10)
	v.SetDefault("detection.lookback_limit", 168)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.min_severity", "high")
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("sensors", []map[string]any{
		{"name": "sensor_1_temp", "type": "Temperature", "room": "server_room"},
		{"name": "sensor_2_hum", "type": "Humidity", "room": "server_room"},
	})
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Detection.Window <= 0 {
		return fmt.Errorf("detection.window must be greater than zero")
	}
	if c.Detection.Contamination <= 0 || c.Detection.Contamination >= 1 {
		return fmt.Errorf("detection.contamination must lie in (0, 1)")
	}
	if c.Detection.LookbackLimit <= 0 {
		return fmt.Errorf("detection.lookback_limit must be greater than zero")
	}
	if c.Simulator.SpikeProbability < 0 || c.Simulator.SpikeProbability > 1 {
		return fmt.Errorf("simulator.spike_probability must lie in [0, 1]")
	}
	if c.Alerting.Enabled {
		switch recommend.Severity(c.Alerting.MinSeverity) {
		case recommend.SeverityLow, recommend.SeverityMedium, recommend.SeverityHigh, recommend.SeverityCritical:
		default:
			return fmt.Errorf("alerting.min_severity must be one of low, medium, high, critical")
		}
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}
	if _, err := c.RoomProfiles(); err != nil {
		return err
	}
	return nil
}

// RoomProfiles merges configured room overrides over the built-in
// archetype table and validates the result.
func (c *Config) RoomProfiles() (recommend.ProfileTable, error) {
	table := recommend.DefaultProfiles()
	for room, rc := range c.Rooms {
		table[room] = recommend.Profile{
			Temperature:       recommend.Range{Min: rc.TemperatureMin, Max: rc.TemperatureMax},
			Humidity:          recommend.Range{Min: rc.HumidityMin, Max: rc.HumidityMax},
			TemperatureTarget: rc.TemperatureTarget,
			HumidityTarget:    rc.HumidityTarget,
		}
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("rooms: %w", err)
	}
	return table, nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
