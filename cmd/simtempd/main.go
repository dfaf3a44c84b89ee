package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/simtempd/internal/config"
	"codeberg.org/mutker/simtempd/internal/errors"
	"codeberg.org/mutker/simtempd/internal/logger"
	"codeberg.org/mutker/simtempd/internal/pid"
	"codeberg.org/mutker/simtempd/internal/publish"
	"codeberg.org/mutker/simtempd/internal/simtemp"
	"codeberg.org/mutker/simtempd/internal/telemetry"
)

const (
	selfTestSamplingMs  = 100
	selfTestThresholdMC = 26000
	selfTestTimeout     = 5 * time.Second
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	applyLogLevel(cfg)
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	mode, err := simtemp.ParseMode(cfg.Mode)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid waveform mode")
	}

	device, err := simtemp.New(simtemp.Options{
		SamplingInterval: time.Duration(cfg.SamplingMs) * time.Millisecond,
		ThresholdMilliC:  int32(cfg.ThresholdMilliC),
		Mode:             mode,
		Capacity:         cfg.Capacity,
		Debug:            cfg.Debug,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to activate device")
	}
	defer device.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if cfg.SelfTest {
		if err := selfTest(ctx, device); err != nil {
			logger.Error().Err(err).Msg("self-test failed")
			os.Exit(1)
		}
		logger.Info().Msg("self-test passed: alert observed")
		return
	}

	collector, err := newCollector()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer collector.Close()

	publisher, err := newPublisher()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize MQTT publisher")
	}
	defer publisher.Close()

	if err := loop(ctx, device, collector, publisher); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

// loop consumes samples until shutdown, logging each and fanning it out
// to the optional telemetry and MQTT sinks.
func loop(ctx context.Context, device *simtemp.Device, collector telemetry.Collector, publisher publish.Publisher) error {
	for {
		sample, err := device.Pop(ctx)
		if err != nil {
			if simtemp.IsStopped(err) || ctx.Err() != nil {
				return nil
			}
			return errors.New().Wrap(errors.ErrMainLoop, err)
		}

		logSample(device, sample)

		if err := publisher.PublishSample(sample); err != nil {
			logger.Warn().Err(err).Msg("failed to publish sample")
		}
		if sample.ThresholdCrossed() {
			if err := publisher.PublishAlert(sample); err != nil {
				logger.Warn().Err(err).Msg("failed to publish alert")
			}
		}

		stats := device.Stats()
		if err := collector.Record(ctx, &telemetry.Snapshot{
			Timestamp:  time.Now(),
			TempMilliC: sample.TempMilliC,
			Alert:      sample.ThresholdCrossed(),
			Mode:       device.Mode().String(),
			Updates:    stats.Updates,
			Alerts:     stats.Alerts,
			Drops:      stats.Drops,
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to record telemetry snapshot")
		}
	}
}

// selfTest programs the control surface for a quick ramp past a low
// threshold and waits for the alert to come through the consumer path.
func selfTest(ctx context.Context, device *simtemp.Device) error {
	errFactory := errors.New()

	if err := device.WriteAttr(simtemp.AttrSamplingMs, fmt.Sprintf("%d\n", selfTestSamplingMs)); err != nil {
		return err
	}
	if err := device.WriteAttr(simtemp.AttrMode, "ramp\n"); err != nil {
		return err
	}
	if err := device.WriteAttr(simtemp.AttrThresholdC, fmt.Sprintf("%d\n", selfTestThresholdMC)); err != nil {
		return err
	}

	testCtx, cancel := context.WithTimeout(ctx, selfTestTimeout)
	defer cancel()

	for {
		sample, err := device.Pop(testCtx)
		if err != nil {
			return errFactory.WithMessage(errors.ErrTimeout, "alert not observed").WithData(err.Error())
		}
		logSample(device, sample)
		if sample.ThresholdCrossed() {
			return nil
		}
	}
}

func logSample(device *simtemp.Device, sample simtemp.Sample) {
	if cfg.Debug {
		stats := device.Stats()
		ready := device.Readiness()
		logger.Debug().
			Int64("timestamp_ns", sample.Timestamp).
			Int32("temp_mc", sample.TempMilliC).
			Bool("alert", sample.ThresholdCrossed()).
			Str("mode", device.Mode().String()).
			Uint64("updates", stats.Updates).
			Uint64("alerts", stats.Alerts).
			Uint64("drops", stats.Drops).
			Bool("readable", ready.Readable).
			Bool("alert_pending", ready.Alert).
			Msg("")
	} else if cfg.Verbose {
		logger.Info().
			Float64("temp_c", float64(sample.TempMilliC)/1000).
			Bool("alert", sample.ThresholdCrossed()).
			Msg("")
	}
}

func newCollector() (telemetry.Collector, error) {
	telemetryCfg := telemetry.DefaultConfig()
	telemetryCfg.Enabled = cfg.Telemetry
	if cfg.TelemetryDB != "" {
		telemetryCfg.DBPath = cfg.TelemetryDB
	}

	return telemetry.NewService(telemetryCfg, logger.Default())
}

func newPublisher() (publish.Publisher, error) {
	if cfg.MQTTBroker == "" {
		logger.Debug().Msg("MQTT publishing disabled")
		return publish.NoopPublisher{}, nil
	}

	return publish.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTTopic)
}

func applyLogLevel(cfg *config.Config) {
	if cfg.Debug || cfg.Verbose {
		return // already applied by logger.Init
	}

	switch config.LogLevel(cfg.LogLevel) {
	case config.LogLevelDebug:
		logger.SetLogLevel(logger.DebugLevel)
	case config.LogLevelInfo:
		logger.SetLogLevel(logger.InfoLevel)
	case config.LogLevelWarning:
		logger.SetLogLevel(logger.WarnLevel)
	case config.LogLevelError:
		logger.SetLogLevel(logger.ErrorLevel)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
