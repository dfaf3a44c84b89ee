package telemetry

import "codeberg.org/mutker/simtempd/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/simtempd/telemetry.db"

	defaultBatchSize    = 32
	defaultBatchTimeout = 30 // seconds
)

type Config struct {
	DBPath       string
	BatchSize    int
	BatchTimeout int
	Enabled      bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Enabled:      false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if telemetry is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.Enabled && (c.BatchSize < 1 || c.BatchTimeout < 1) {
		return errFactory.WithData(ErrInvalidConfig, c)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
