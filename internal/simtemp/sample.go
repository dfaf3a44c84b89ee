package simtemp

import (
	"encoding/binary"

	"codeberg.org/mutker/simtempd/internal/errors"
)

// Sample flag bits
const (
	FlagNewSample        uint32 = 1 << 0
	FlagThresholdCrossed uint32 = 1 << 1
)

// SampleSize is the wire size of one encoded sample record in bytes
const SampleSize = 16

// Sample is one timestamped reading. It is immutable once produced:
// consumers always receive a copy, never a reference into the FIFO.
type Sample struct {
	Timestamp  int64 // monotonic nanoseconds since device activation
	TempMilliC int32
	Flags      uint32
}

// ThresholdCrossed reports whether the sample was at or above the
// threshold when it was produced.
func (s Sample) ThresholdCrossed() bool {
	return s.Flags&FlagThresholdCrossed != 0
}

// AppendBinary appends the fixed 16-byte little-endian record
// {timestamp_ns u64, temp_mC i32, flags u32} to b.
func (s Sample) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint64(b, uint64(s.Timestamp))
	b = binary.LittleEndian.AppendUint32(b, uint32(s.TempMilliC))
	b = binary.LittleEndian.AppendUint32(b, s.Flags)

	return b
}

// MarshalBinary implements encoding.BinaryMarshaler
func (s Sample) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, SampleSize)), nil
}

// DecodeSample parses one record from the front of b. A buffer shorter
// than one record is rejected as invalid.
func DecodeSample(b []byte) (Sample, error) {
	if len(b) < SampleSize {
		return Sample{}, errors.New().WithData(errors.ErrInvalidArgument, len(b))
	}

	return Sample{
		Timestamp:  int64(binary.LittleEndian.Uint64(b[0:8])),
		TempMilliC: int32(binary.LittleEndian.Uint32(b[8:12])),
		Flags:      binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (s *Sample) UnmarshalBinary(b []byte) error {
	decoded, err := DecodeSample(b)
	if err != nil {
		return err
	}
	*s = decoded

	return nil
}
