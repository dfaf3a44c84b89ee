package simtemp

import (
	"time"

	"codeberg.org/mutker/simtempd/internal/errors"
)

// Stats is a snapshot of the device counters. Each counter is
// individually monotonic; exact cross-counter consistency under
// concurrent admissions is not guaranteed.
type Stats struct {
	Updates uint64
	Alerts  uint64
	Drops   uint64
}

// SamplingInterval returns the current sampling period.
func (d *Device) SamplingInterval() time.Duration {
	d.attrMu.Lock()
	defer d.attrMu.Unlock()

	return d.interval
}

// SetSamplingInterval atomically replaces the sampling period and
// reschedules the pending fire, so a shorter period takes effect
// immediately rather than after the old one elapses. Non-positive
// values are rejected.
func (d *Device) SetSamplingInterval(interval time.Duration) error {
	if interval <= 0 {
		return errors.New().WithData(ErrInvalidInterval, interval)
	}

	d.attrMu.Lock()
	d.interval = interval
	d.attrMu.Unlock()

	// Cancel and reissue the pending timer from this context. The send
	// completes only once the scheduler has taken the new period, so at
	// most one fire is pending when this returns.
	select {
	case d.reschedule <- interval:
	case <-d.done:
	}

	return nil
}

// Threshold returns the current alert threshold in milli-degrees.
func (d *Device) Threshold() int32 {
	d.attrMu.Lock()
	defer d.attrMu.Unlock()

	return d.threshold
}

// SetThreshold replaces the alert threshold. Any signed value is
// accepted; the new threshold applies from the next tick.
func (d *Device) SetThreshold(milliC int32) {
	d.attrMu.Lock()
	d.threshold = milliC
	d.attrMu.Unlock()
}

// Mode returns the current waveform mode.
func (d *Device) Mode() Mode {
	d.attrMu.Lock()
	defer d.attrMu.Unlock()

	return d.mode
}

// SetMode switches the waveform. The generator counter is shared
// across modes and is not reset. Unknown modes are rejected with the
// previous mode left untouched.
func (d *Device) SetMode(mode Mode) error {
	if !mode.IsValid() {
		return errors.New().WithData(ErrInvalidMode, int(mode))
	}

	d.attrMu.Lock()
	d.mode = mode
	d.attrMu.Unlock()

	return nil
}

// Debug returns whether verbose diagnostic emission is enabled.
func (d *Device) Debug() bool {
	d.attrMu.Lock()
	defer d.attrMu.Unlock()

	return d.debug
}

// SetDebug toggles verbose diagnostic emission. It never affects
// sampling values or timing.
func (d *Device) SetDebug(debug bool) {
	d.attrMu.Lock()
	d.debug = debug
	d.attrMu.Unlock()
}

// Stats returns a snapshot of the updates/alerts/drops counters.
func (d *Device) Stats() Stats {
	return Stats{
		Updates: d.updates.Load(),
		Alerts:  d.alerts.Load(),
		Drops:   d.drops.Load(),
	}
}
