package audio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	rms, db := Level(nil)
	assert.Zero(t, rms)
	assert.Equal(t, -100.0, db)

	rms, db = Level(bytes.Repeat([]byte{128}, 64))
	assert.Zero(t, rms)
	assert.Equal(t, -100.0, db)

	// Full-scale square wave
	square := make([]byte, 64)
	for i := range square {
		if i%2 == 0 {
			square[i] = 0
		} else {
			square[i] = 255
		}
	}
	rms, db = Level(square)
	assert.InDelta(t, 1, rms, 0.01)
	assert.InDelta(t, 0, db, 0.1)
}
