package simtemp

import "codeberg.org/mutker/simtempd/internal/errors"

const (
	// Configuration and control-surface errors
	ErrInvalidArgument = errors.ErrInvalidArgument
	ErrInvalidInterval = errors.ErrInvalidInterval
	ErrInvalidMode     = errors.ErrInvalidMode

	// Consumer errors
	ErrWouldBlock = errors.ErrorCode("simtemp_would_block")
	ErrStopped    = errors.ErrorCode("simtemp_device_stopped")
)

// IsWouldBlock reports whether err means a non-blocking operation had
// nothing to do.
func IsWouldBlock(err error) bool {
	return errors.HasCode(err, ErrWouldBlock)
}

// IsStopped reports whether err means the device has begun irreversible
// shutdown.
func IsStopped(err error) bool {
	return errors.HasCode(err, ErrStopped)
}

// IsInvalidArgument reports whether err is a rejected configuration or
// control value.
func IsInvalidArgument(err error) bool {
	return errors.HasCode(err, ErrInvalidArgument) ||
		errors.HasCode(err, ErrInvalidInterval) ||
		errors.HasCode(err, ErrInvalidMode)
}
