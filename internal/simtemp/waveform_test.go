package simtemp_test

import (
	"testing"

	"codeberg.org/mutker/simtempd/internal/simtemp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGoldenSequences(t *testing.T) {
	tests := []struct {
		name    string
		mode    simtemp.Mode
		counter int
		want    []int32
	}{
		{
			name: "normal sawtooth",
			mode: simtemp.ModeNormal,
			want: []int32{30000, 30001, 30002, 30003},
		},
		{
			name: "normal wraps at 20000",
			mode: simtemp.ModeNormal, counter: 19999,
			want: []int32{49999, 30000, 30001},
		},
		{
			name: "ramp sawtooth",
			mode: simtemp.ModeRamp,
			want: []int32{25000, 25200, 25400, 25600},
		},
		{
			name: "ramp wraps at counter 200",
			mode: simtemp.ModeRamp, counter: 199,
			want: []int32{64800, 25000, 25200},
		},
		{
			name: "noisy jitter",
			mode: simtemp.ModeNoisy,
			want: []int32{28000, 28037, 28074, 28111},
		},
		{
			name: "noisy wraps at 4001",
			mode: simtemp.ModeNoisy, counter: 108,
			want: []int32{31996, 28032},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := tt.counter
			for i, want := range tt.want {
				var got int32
				got, counter = simtemp.Generate(tt.mode, counter)
				assert.Equal(t, want, got, "sample %d", i)
			}
		})
	}
}

func TestGenerateAdvancesCounterInEveryMode(t *testing.T) {
	for _, mode := range []simtemp.Mode{simtemp.ModeNormal, simtemp.ModeRamp, simtemp.ModeNoisy} {
		_, next := simtemp.Generate(mode, 41)
		assert.Equal(t, 42, next, "mode %s", mode)
	}
}

func TestNoisyStaysBounded(t *testing.T) {
	for counter := 0; counter < 10000; counter++ {
		temp, _ := simtemp.Generate(simtemp.ModeNoisy, counter)
		require.GreaterOrEqual(t, temp, int32(28000))
		require.LessOrEqual(t, temp, int32(32000))
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    simtemp.Mode
		wantErr bool
	}{
		{in: "normal", want: simtemp.ModeNormal},
		{in: "ramp", want: simtemp.ModeRamp},
		{in: "noisy", want: simtemp.ModeNoisy},
		{in: "Ramp", wantErr: true}, // case-sensitive exact match
		{in: "ramp\n", wantErr: true},
		{in: "", wantErr: true},
		{in: "sine", wantErr: true},
	}

	for _, tt := range tests {
		mode, err := simtemp.ParseMode(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.in)
			assert.True(t, simtemp.IsInvalidArgument(err))
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, mode)
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "normal", simtemp.ModeNormal.String())
	assert.Equal(t, "ramp", simtemp.ModeRamp.String())
	assert.Equal(t, "noisy", simtemp.ModeNoisy.String())
	assert.Equal(t, "normal", simtemp.Mode(99).String())
}
