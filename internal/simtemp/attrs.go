package simtemp

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/simtempd/internal/errors"
)

// Control-plane attribute names. Each is a scalar rendered as decimal
// text, newline-terminated on both read and write.
const (
	AttrSamplingMs = "sampling_ms"
	AttrThresholdC = "threshold_mC"
	AttrMode       = "mode"
	AttrDebug      = "debug"
	AttrStats      = "stats"
)

// ReadAttr renders the named attribute as newline-terminated text.
func (d *Device) ReadAttr(name string) (string, error) {
	switch name {
	case AttrSamplingMs:
		return strconv.FormatInt(d.SamplingInterval().Milliseconds(), 10) + "\n", nil
	case AttrThresholdC:
		return strconv.FormatInt(int64(d.Threshold()), 10) + "\n", nil
	case AttrMode:
		return d.Mode().String() + "\n", nil
	case AttrDebug:
		if d.Debug() {
			return "1\n", nil
		}
		return "0\n", nil
	case AttrStats:
		stats := d.Stats()
		return fmt.Sprintf("updates=%d alerts=%d drops=%d\n",
			stats.Updates, stats.Alerts, stats.Drops), nil
	default:
		return "", errors.New().WithData(errors.ErrInvalidArgument, name)
	}
}

// WriteAttr parses value and applies it to the named attribute. A
// single trailing newline is accepted. Numeric attributes take base 0
// (decimal, 0x hex or 0 octal prefixes); debug treats any nonzero
// integer as true; mode requires a case-sensitive exact match. Bad
// values and writes to read-only attributes are rejected with the state
// unchanged.
func (d *Device) WriteAttr(name, value string) error {
	errFactory := errors.New()
	value = strings.TrimSuffix(value, "\n")

	switch name {
	case AttrSamplingMs:
		ms, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
		return d.SetSamplingInterval(time.Duration(ms) * time.Millisecond)
	case AttrThresholdC:
		milliC, err := strconv.ParseInt(value, 0, 32)
		if err != nil {
			return errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
		d.SetThreshold(int32(milliC))
		return nil
	case AttrMode:
		mode, err := ParseMode(value)
		if err != nil {
			return err
		}
		return d.SetMode(mode)
	case AttrDebug:
		v, err := strconv.ParseInt(value, 0, 32)
		if err != nil {
			return errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
		d.SetDebug(v != 0)
		return nil
	case AttrStats:
		return errFactory.WithMessage(errors.ErrInvalidOperation, "stats is read-only")
	default:
		return errFactory.WithData(errors.ErrInvalidArgument, name)
	}
}
