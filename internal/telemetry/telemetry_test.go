package telemetry_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/simtempd/internal/logger"
	"codeberg.org/mutker/simtempd/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false, false, true)
	os.Exit(m.Run())
}

func TestConfigValidate(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	require.NoError(t, cfg.Validate(), "disabled config is always valid")

	cfg.Enabled = true
	require.NoError(t, cfg.Validate())

	cfg.DBPath = ""
	require.Error(t, cfg.Validate())

	cfg = telemetry.DefaultConfig()
	cfg.Enabled = true
	cfg.BatchSize = 0
	require.Error(t, cfg.Validate())
}

func TestDisabledServiceIsNoop(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.DBPath = "" // must not matter when disabled

	collector, err := telemetry.NewService(cfg, logger.Default())
	require.NoError(t, err)

	require.NoError(t, collector.Record(context.Background(), &telemetry.Snapshot{}))
	require.NoError(t, collector.Close())
}

func TestRecordAndFlush(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	cfg := telemetry.Config{
		DBPath:       dbPath,
		BatchSize:    2,
		BatchTimeout: 60,
		Enabled:      true,
	}

	collector, err := telemetry.NewService(cfg, logger.Default())
	require.NoError(t, err)

	base := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, collector.Record(context.Background(), &telemetry.Snapshot{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			TempMilliC: 30000 + int32(i),
			Mode:       "normal",
			Updates:    uint64(i + 1),
		}))
	}

	// Close forces the final flush of the odd record
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count))
	assert.Equal(t, 3, count)

	var version int
	require.NoError(t, db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&version))
	assert.Equal(t, telemetry.SchemaVersion, version)
}

func TestRecordNilSnapshot(t *testing.T) {
	cfg := telemetry.Config{
		DBPath:       filepath.Join(t.TempDir(), "telemetry.db"),
		BatchSize:    8,
		BatchTimeout: 60,
		Enabled:      true,
	}

	collector, err := telemetry.NewService(cfg, logger.Default())
	require.NoError(t, err)
	defer collector.Close()

	require.Error(t, collector.Record(context.Background(), nil))
}

func TestRecordCancelledContext(t *testing.T) {
	cfg := telemetry.Config{
		DBPath:       filepath.Join(t.TempDir(), "telemetry.db"),
		BatchSize:    8,
		BatchTimeout: 60,
		Enabled:      true,
	}

	collector, err := telemetry.NewService(cfg, logger.Default())
	require.NoError(t, err)
	defer collector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, collector.Record(ctx, &telemetry.Snapshot{Mode: "normal"}))
}
