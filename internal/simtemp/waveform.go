package simtemp

import "codeberg.org/mutker/simtempd/internal/errors"

// Mode selects the synthetic waveform the device produces.
type Mode int

const (
	ModeNormal Mode = iota
	ModeRamp
	ModeNoisy
)

var modeNames = [...]string{"normal", "ramp", "noisy"}

// String implements the Stringer interface
func (m Mode) String() string {
	if m < ModeNormal || m > ModeNoisy {
		return modeNames[ModeNormal]
	}

	return modeNames[m]
}

// IsValid returns whether the mode is one of the three known waveforms
func (m Mode) IsValid() bool {
	return m >= ModeNormal && m <= ModeNoisy
}

// ParseMode maps a mode name to its Mode. The match is exact and
// case-sensitive.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if name == n {
			return Mode(i), nil
		}
	}

	return ModeNormal, errors.New().WithData(errors.ErrInvalidMode, name)
}

// Generate produces the temperature for the given waveform counter and
// returns the advanced counter. The counter advances by one on every
// call regardless of mode, so switching modes never resets the
// sequence.
//
// The formulas are a contract with downstream consumers: threshold
// crossings and eviction timing depend on the exact sequence.
func Generate(mode Mode, counter int) (tempMilliC int32, next int) {
	switch mode {
	case ModeRamp:
		tempMilliC = int32(25000 + (counter*200)%40000)
	case ModeNoisy:
		tempMilliC = int32(30000 + (counter*37)%4001 - 2000)
	default: // ModeNormal
		tempMilliC = int32(30000 + counter%20000)
	}

	return tempMilliC, counter + 1
}
