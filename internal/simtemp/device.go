package simtemp

import (
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/simtempd/internal/errors"
	"codeberg.org/mutker/simtempd/internal/logger"
)

// DefaultCapacity is the FIFO capacity in records when none is given
const DefaultCapacity = 128

const (
	defaultSamplingInterval = time.Second
	defaultThresholdMilliC  = 45000
)

// Options configures a new device. Zero values select the defaults
// (1s sampling, 45°C threshold, normal mode, 128-record FIFO).
type Options struct {
	SamplingInterval time.Duration
	ThresholdMilliC  int32
	Mode             Mode
	Capacity         int
	Debug            bool
}

// Device is a simulated temperature sensor. A single scheduler
// goroutine produces one sample per tick into a bounded FIFO with a
// drop-oldest overflow policy; any number of consumers and
// configuration writers may run concurrently with it.
//
// Two independent critical sections keep the producer's path short:
// mu guards the FIFO, the alert latch and counter updates (data
// plane); attrMu guards the tunable configuration (control plane).
// The two locks are never held at the same time.
type Device struct {
	// Control plane
	attrMu    sync.Mutex
	interval  time.Duration
	threshold int32
	mode      Mode
	debug     bool

	// Data plane
	mu           sync.Mutex
	fifo         *ring
	alertPending bool
	wake         chan struct{} // closed and replaced on every successful admission

	// Counters are written inside the data-plane critical section but
	// read lock-free by Stats
	updates atomic.Uint64
	alerts  atomic.Uint64
	drops   atomic.Uint64

	// Lifecycle
	stopping   atomic.Bool
	done       chan struct{}
	loopDone   chan struct{}
	reschedule chan time.Duration
	started    bool

	// Scheduler-owned state
	ramp int
	now  func() int64
}

// New creates a device and starts its sampling scheduler. The first
// tick fires one sampling interval after New returns.
func New(opts Options) (*Device, error) {
	d, err := newDevice(opts)
	if err != nil {
		return nil, err
	}

	d.started = true
	go d.run()

	logger.Info().
		Dur("interval", d.interval).
		Int32("threshold_mc", d.threshold).
		Str("mode", d.mode.String()).
		Int("capacity", d.fifo.capacity).
		Msg("simtemp device activated")

	return d, nil
}

func newDevice(opts Options) (*Device, error) {
	errFactory := errors.New()

	if opts.SamplingInterval == 0 {
		opts.SamplingInterval = defaultSamplingInterval
	}
	if opts.SamplingInterval < 0 {
		return nil, errFactory.WithData(ErrInvalidInterval, opts.SamplingInterval)
	}
	if opts.ThresholdMilliC == 0 {
		opts.ThresholdMilliC = defaultThresholdMilliC
	}
	if !opts.Mode.IsValid() {
		return nil, errFactory.WithData(ErrInvalidMode, int(opts.Mode))
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Capacity < 1 {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, opts.Capacity)
	}

	epoch := time.Now()

	return &Device{
		interval:   opts.SamplingInterval,
		threshold:  opts.ThresholdMilliC,
		mode:       opts.Mode,
		debug:      opts.Debug,
		fifo:       newRing(opts.Capacity),
		wake:       make(chan struct{}),
		done:       make(chan struct{}),
		loopDone:   make(chan struct{}),
		reschedule: make(chan time.Duration),
		now:        func() int64 { return time.Since(epoch).Nanoseconds() },
	}, nil
}

// run owns the sampling timer. Interval changes arrive over the
// reschedule channel so the pending fire is cancelled and reissued
// before the writer's SetSamplingInterval returns; at most one fire is
// ever pending.
func (d *Device) run() {
	defer close(d.loopDone)

	timer := time.NewTimer(d.SamplingInterval())
	defer timer.Stop()

	for {
		select {
		case <-d.done:
			return
		case interval := <-d.reschedule:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(interval)
		case <-timer.C:
			d.tick()
			if d.stopping.Load() {
				return
			}
			// The interval may have changed during the tick; the new
			// period applies from here on
			timer.Reset(d.SamplingInterval())
		}
	}
}

// tick produces exactly one sample: read the configuration fresh,
// generate, stamp, admit.
func (d *Device) tick() {
	if d.stopping.Load() {
		return
	}

	d.attrMu.Lock()
	mode := d.mode
	threshold := d.threshold
	debug := d.debug
	d.attrMu.Unlock()

	temp, next := Generate(mode, d.ramp)
	d.ramp = next

	sample := Sample{
		Timestamp:  d.now(),
		TempMilliC: temp,
		Flags:      FlagNewSample,
	}
	if temp >= threshold {
		sample.Flags |= FlagThresholdCrossed
	}

	admitted := d.admit(sample)

	if debug {
		logger.Debug().
			Int64("timestamp_ns", sample.Timestamp).
			Int32("temp_mc", sample.TempMilliC).
			Str("mode", mode.String()).
			Bool("threshold_crossed", sample.ThresholdCrossed()).
			Bool("admitted", admitted).
			Msg("tick")
	}
}

// admit places the sample into the FIFO, evicting the oldest entry if
// the buffer is full. Latch and counter updates happen in the same
// critical section so they stay atomic with respect to each other.
func (d *Device) admit(sample Sample) bool {
	d.mu.Lock()

	if d.fifo.full() {
		if _, evicted := d.fifo.pop(); evicted {
			d.drops.Add(1)
		} else {
			// Cannot make room; count the incoming sample as dropped
			// and skip waking readers
			d.drops.Add(1)
			d.mu.Unlock()

			return false
		}
	}

	if !d.fifo.push(sample) {
		d.drops.Add(1)
		d.mu.Unlock()

		return false
	}

	// Edge-triggered: only a false->true transition counts an alert
	if sample.ThresholdCrossed() && !d.alertPending {
		d.alertPending = true
		d.alerts.Add(1)
	}
	d.updates.Add(1)

	wake := d.wake
	d.wake = make(chan struct{})
	d.mu.Unlock()

	// Wake every blocked or polling consumer
	close(wake)

	return true
}

// Close begins irreversible shutdown: the scheduler stops, no further
// samples are admitted, and every blocked consumer is woken with a
// Stopped error. Close is idempotent and returns once the scheduler
// goroutine has exited.
func (d *Device) Close() error {
	if !d.stopping.CompareAndSwap(false, true) {
		return nil
	}

	close(d.done)
	if d.started {
		<-d.loopDone
	}

	logger.Info().
		Uint64("updates", d.updates.Load()).
		Uint64("alerts", d.alerts.Load()).
		Uint64("drops", d.drops.Load()).
		Msg("simtemp device deactivated")

	return nil
}
