package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/simtempd/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultSamplingMs      = 1000
	DefaultThresholdMilliC = 45000
	DefaultMode            = "normal"
	DefaultCapacity        = 128
	DefaultLogLevel        = "info"
	defaultTelemetryDB     = "/var/lib/simtempd/telemetry.db"
	defaultMQTTTopic       = "sensors/simtemp"
)

type Config struct {
	SamplingMs      int    `mapstructure:"sampling_ms"`
	ThresholdMilliC int    `mapstructure:"threshold_mc"`
	Mode            string `mapstructure:"mode"`
	Capacity        int    `mapstructure:"capacity"`
	Debug           bool   `mapstructure:"debug"`
	Verbose         bool   `mapstructure:"verbose"`
	LogLevel        string `mapstructure:"log_level"`
	Telemetry       bool   `mapstructure:"telemetry"`
	TelemetryDB     string `mapstructure:"telemetry_db"`
	MQTTBroker      string `mapstructure:"mqtt_broker"`
	MQTTTopic       string `mapstructure:"mqtt_topic"`
	SelfTest        bool   `mapstructure:"selftest"`
}

// Load reads configuration from flags, environment and the TOML config
// file, in ascending order of precedence: defaults, file, environment,
// flags. The config file is /etc/simtempd.toml unless SIMTEMPD_CONFIG
// points elsewhere.
func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("simtempd", pflag.ContinueOnError)
	flags.Int("sampling-ms", DefaultSamplingMs, "Sampling period in milliseconds")
	flags.Int("threshold-mc", DefaultThresholdMilliC, "Alert threshold in milli-degrees Celsius")
	flags.String("mode", DefaultMode, "Waveform mode: normal, ramp or noisy")
	flags.Int("capacity", DefaultCapacity, "Sample FIFO capacity in records")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")
	flags.Bool("telemetry", false, "Enable telemetry recording")
	flags.String("telemetry-db", defaultTelemetryDB, "Path to the telemetry database")
	flags.String("mqtt-broker", "", "MQTT broker address (empty to disable publishing)")
	flags.String("mqtt-topic", defaultMQTTTopic, "MQTT topic prefix for published samples")
	flags.Bool("selftest", false, "Trigger an alert via the control surface and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("sampling_ms", DefaultSamplingMs)
	v.SetDefault("threshold_mc", DefaultThresholdMilliC)
	v.SetDefault("mode", DefaultMode)
	v.SetDefault("capacity", DefaultCapacity)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry_db", defaultTelemetryDB)
	v.SetDefault("mqtt_topic", defaultMQTTTopic)

	if path := os.Getenv("SIMTEMPD_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("simtempd")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SIMTEMPD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").
				WithData(err.Error())
		}
	}

	// Flags override file and environment values, but only when set
	flags.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the device would reject
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.SamplingMs <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.SamplingMs)
	}
	if c.Capacity < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, c.Capacity)
	}
	switch c.Mode {
	case "normal", "ramp", "noisy":
	default:
		return errFactory.WithData(errors.ErrInvalidMode, c.Mode)
	}
	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "telemetry enabled without a database path")
	}

	return nil
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}
