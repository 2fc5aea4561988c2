package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xlemi/hearnote/internal/spectrum"
)

func TestToneCapturerLifecycle(t *testing.T) {
	c := NewToneCapturer(440, 8000, 256, nil)
	assert.False(t, c.IsCapturing())

	_, err := c.GetBuffer()
	assert.ErrorIs(t, err, ErrNotCapturing)
	assert.ErrorIs(t, c.Stop(), ErrNotCapturing)

	require.NoError(t, c.Start())
	assert.ErrorIs(t, c.Start(), ErrAlreadyCapturing)
	assert.True(t, c.IsCapturing())

	buf, err := c.GetBuffer()
	require.NoError(t, err)
	assert.Len(t, buf.Samples, 256)
	assert.Equal(t, spectrum.FormatU8, buf.Format)
	assert.Equal(t, 8000, buf.SampleRate)

	require.NoError(t, c.Stop())
}

func TestToneCapturerContinuesWaveform(t *testing.T) {
	whole := NewToneCapturer(300, 8000, 512, []float64{1, 0.5})
	split := NewToneCapturer(300, 8000, 256, []float64{1, 0.5})
	require.NoError(t, whole.Start())
	require.NoError(t, split.Start())

	w, err := whole.GetBuffer()
	require.NoError(t, err)
	a, err := split.GetBuffer()
	require.NoError(t, err)
	b, err := split.GetBuffer()
	require.NoError(t, err)

	assert.Equal(t, w.Samples, append(a.Samples, b.Samples...))

	// Starts at the silence center and stays within range
	assert.Equal(t, byte(128), w.Samples[0])
	for _, s := range w.Samples {
		assert.GreaterOrEqual(t, s, byte(28))
		assert.LessOrEqual(t, s, byte(228))
	}
}

func TestFloatToU8(t *testing.T) {
	assert.Equal(t, byte(128), floatToU8(0))
	assert.Equal(t, byte(255), floatToU8(1))
	assert.Equal(t, byte(1), floatToU8(-1))
	assert.Equal(t, byte(255), floatToU8(3))
	assert.Equal(t, byte(0), floatToU8(-3))
}

func TestToneCapturerSetFrequency(t *testing.T) {
	want := NewToneCapturer(300, 8000, 256, nil)
	retuned := NewToneCapturer(440, 8000, 256, nil)
	retuned.SetFrequency(300)
	require.NoError(t, want.Start())
	require.NoError(t, retuned.Start())

	w, err := want.GetBuffer()
	require.NoError(t, err)
	r, err := retuned.GetBuffer()
	require.NoError(t, err)
	assert.Equal(t, w.Samples, r.Samples)
}
