package gate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 8 kHz with 5 ms settings gives 40-tick hold, release and attack
const testRate = 8000

func fill(n int, v byte) []byte {
	return bytes.Repeat([]byte{v}, n)
}

func TestApplyDisabled(t *testing.T) {
	samples := fill(500, 130)
	p := DefaultParams()
	p.Threshold = 0
	require.NoError(t, ApplyU8(samples, testRate, p))
	assert.Equal(t, fill(500, 130), samples)
}

func TestApplySilencesLongQuietRun(t *testing.T) {
	samples := fill(200, 131)
	require.NoError(t, ApplyU8(samples, testRate, DefaultParams()))

	// Nothing changes until the hold time has elapsed
	for i := 0; i <= 40; i++ {
		assert.Equal(t, byte(131), samples[i], "sample %d", i)
	}
	// Release ramp never amplifies
	for i := 41; i < 200; i++ {
		assert.LessOrEqual(t, samples[i], byte(131), "sample %d", i)
		assert.GreaterOrEqual(t, samples[i], byte(128), "sample %d", i)
	}
	// Fully silenced by the end of the run
	assert.Equal(t, fill(100, 128), samples[100:])
}

func TestApplyShortQuietRunUntouched(t *testing.T) {
	samples := append(fill(30, 126), fill(10, 200)...)
	samples = append(samples, fill(30, 126)...)
	want := append([]byte(nil), samples...)

	require.NoError(t, ApplyU8(samples, testRate, DefaultParams()))
	assert.Equal(t, want, samples)
}

func TestApplyLoudSamplesPassThrough(t *testing.T) {
	samples := make([]byte, 400)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 20
		} else {
			samples[i] = 230
		}
	}
	want := append([]byte(nil), samples...)

	require.NoError(t, ApplyU8(samples, testRate, DefaultParams()))
	assert.Equal(t, want, samples)
}

func TestApplyAttackRestoresLevel(t *testing.T) {
	samples := append(fill(200, 129), fill(100, 228)...)
	require.NoError(t, ApplyU8(samples, testRate, DefaultParams()))

	assert.Equal(t, byte(128), samples[199])

	// Attack ramp rises monotonically back to the unmodified level
	prev := byte(128)
	for i := 200; i < 300; i++ {
		assert.GreaterOrEqual(t, samples[i], prev, "sample %d", i)
		prev = samples[i]
	}
	assert.Less(t, samples[200], byte(140))
	assert.Equal(t, fill(50, 228), samples[250:])
}

func TestApplyZeroTicks(t *testing.T) {
	p := DefaultParams()
	p.ReleaseMs = 0
	assert.ErrorIs(t, ApplyU8(fill(10, 128), testRate, p), ErrZeroTicks)

	p = DefaultParams()
	// 5 ms at 100 Hz is less than one sample
	assert.ErrorIs(t, ApplyU8(fill(10, 128), 100, p), ErrZeroTicks)
}
