package simtemp

import (
	"context"

	"codeberg.org/mutker/simtempd/internal/errors"
)

// Readiness is a non-blocking snapshot of the two conditions an
// external multiplexed wait can watch independently: data available
// and alert pending.
type Readiness struct {
	Readable bool
	Alert    bool
}

// TryPop removes and returns the oldest buffered sample without
// blocking. It fails with a WouldBlock error when the buffer is empty
// and a Stopped error once shutdown has begun.
func (d *Device) TryPop() (Sample, error) {
	errFactory := errors.New()

	if d.stopping.Load() {
		return Sample{}, errFactory.New(ErrStopped)
	}

	d.mu.Lock()
	sample, ok := d.fifo.pop()
	if ok && sample.ThresholdCrossed() {
		// Level-based clear: popping any threshold-crossing sample
		// clears the latch even if more crossing samples remain queued
		d.alertPending = false
	}
	d.mu.Unlock()

	if !ok {
		return Sample{}, errFactory.New(ErrWouldBlock)
	}

	return sample, nil
}

// Pop removes and returns the oldest buffered sample, suspending the
// caller until one is admitted. Cancellation or deadline expiry on ctx
// fails with a WouldBlock error wrapping the context error; device
// shutdown wakes every blocked caller with a Stopped error.
func (d *Device) Pop(ctx context.Context) (Sample, error) {
	errFactory := errors.New()

	for {
		if d.stopping.Load() {
			return Sample{}, errFactory.New(ErrStopped)
		}

		d.mu.Lock()
		sample, ok := d.fifo.pop()
		if ok && sample.ThresholdCrossed() {
			d.alertPending = false
		}
		wake := d.wake
		d.mu.Unlock()

		if ok {
			return sample, nil
		}

		// Re-check after every wakeup; a concurrent consumer may have
		// taken the sample this wake announced
		select {
		case <-wake:
		case <-d.done:
		case <-ctx.Done():
			return Sample{}, errFactory.Wrap(ErrWouldBlock, ctx.Err())
		}
	}
}

// Readiness reports whether a pop would currently proceed without
// waiting and whether an unconsumed threshold-crossing sample is
// buffered. The two conditions are independent.
func (d *Device) Readiness() Readiness {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Readiness{
		Readable: !d.fifo.empty(),
		Alert:    d.alertPending,
	}
}
