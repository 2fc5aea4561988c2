package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorSlides(t *testing.T) {
	a := NewAccumulator(6)
	assert.False(t, a.Ready())

	a.Push([]byte{1, 2, 3, 4})
	assert.False(t, a.Ready())
	assert.Equal(t, []byte{0, 0, 1, 2, 3, 4}, a.Block())

	a.Push([]byte{5, 6, 7})
	assert.True(t, a.Ready())
	assert.Equal(t, []byte{2, 3, 4, 5, 6, 7}, a.Block())

	a.Push([]byte{8})
	assert.Equal(t, []byte{3, 4, 5, 6, 7, 8}, a.Block())
}

func TestAccumulatorLongChunkKeepsTail(t *testing.T) {
	a := NewAccumulator(4)
	a.Push([]byte{1, 2, 3, 4, 5, 6, 7})
	assert.True(t, a.Ready())
	assert.Equal(t, []byte{4, 5, 6, 7}, a.Block())

	a.Reset()
	assert.False(t, a.Ready())
	assert.Equal(t, []byte{0, 0, 0, 0}, a.Block())
}

func TestAccumulatorReset(t *testing.T) {
	a := NewAccumulator(4)
	a.Push([]byte{1, 2, 3, 4})
	assert.True(t, a.Ready())

	a.Reset()
	assert.False(t, a.Ready())
	assert.Equal(t, []byte{0, 0, 0, 0}, a.Block())

	a.Push([]byte{9, 8})
	assert.False(t, a.Ready())
	assert.Equal(t, []byte{0, 0, 9, 8}, a.Block())
}
