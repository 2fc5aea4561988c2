package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyToNote(t *testing.T) {
	tests := []struct {
		freq   float64
		name   string
		octave int
	}{
		{440, "A", 4},
		{261.63, "C", 4},
		{466.16, "A#", 4},
		{82.41, "E", 2},
		{1046.5, "C", 6},
		{27.5, "A", 0},
	}
	for _, tt := range tests {
		note := FrequencyToNote(tt.freq)
		assert.Equal(t, tt.name, note.Name, "%.2f Hz", tt.freq)
		assert.Equal(t, tt.octave, note.Octave, "%.2f Hz", tt.freq)
		assert.InDelta(t, 0, note.Cents, 1, "%.2f Hz", tt.freq)
	}

	note := FrequencyToNote(445)
	assert.Equal(t, "A4", note.String())
	assert.InDelta(t, 19.56, note.Cents, 0.01)
}

func TestNoteFrequency(t *testing.T) {
	f, err := NoteFrequency("A", 4)
	require.NoError(t, err)
	assert.Equal(t, 440.0, f)

	f, err = NoteFrequency("C", 4)
	require.NoError(t, err)
	assert.InDelta(t, 261.6256, f, 1e-4)

	f, err = NoteFrequency("A", 2)
	require.NoError(t, err)
	assert.InDelta(t, 110, f, 1e-9)

	_, err = NoteFrequency("H", 4)
	assert.Error(t, err)
}

func TestCentsBetween(t *testing.T) {
	assert.InDelta(t, 1200, CentsBetween(880, 440), 1e-9)
	assert.InDelta(t, -100, CentsBetween(415.3047, 440), 1e-3)
}
