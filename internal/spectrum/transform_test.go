package spectrum

import (
	"encoding/binary"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
)

func TestInitRejectsInvalidSizes(t *testing.T) {
	c := NewCache()
	for _, n := range []int{-8, 0, 1, 2, 3, 6, 12, 24, 100, 1000} {
		assert.ErrorIs(t, c.Init(n), ErrInvalidSize, "n=%d", n)
	}
	assert.Equal(t, 0, c.Size())

	for _, n := range []int{4, 8, 1024, 32768} {
		require.NoError(t, c.Init(n), "n=%d", n)
		assert.Equal(t, n, c.Size())
	}
}

func TestInitWindowAndBitReversal(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Init(16))

	w := c.Window()
	require.Len(t, w, 16)
	for i := 0; i < 8; i++ {
		want := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/16)
		assert.InDelta(t, want, w[i], 1e-15)
		assert.Equal(t, w[i], w[15-i])
	}

	rev := c.BitReversal()
	assert.Equal(t, []int{0, 8, 4, 12, 2, 10, 6, 14, 1, 9, 5, 13, 3, 11, 7, 15}, rev)
}

func TestTransformZeroBlock(t *testing.T) {
	c := NewCache()
	for _, n := range []int{4, 64, 4096} {
		block := make([]byte, n)
		for i := range block {
			block[i] = 128
		}
		power, err := c.Transform(nil, block, n, FormatU8)
		require.NoError(t, err)
		require.Len(t, power, n/2)
		for k, v := range power {
			assert.Zero(t, v, "n=%d bin=%d", n, k)
		}

		power, err = c.Transform(nil, make([]byte, 4*n), n, FormatS32)
		require.NoError(t, err)
		for k, v := range power {
			assert.Zero(t, v, "s32 n=%d bin=%d", n, k)
		}
	}
}

func TestTransformRebuildsOnSizeChange(t *testing.T) {
	c := NewCache()
	_, err := c.Transform(nil, make([]byte, 256), 256, FormatU8)
	require.NoError(t, err)
	assert.Equal(t, 256, c.Size())

	_, err = c.Transform(nil, make([]byte, 1024), 1024, FormatU8)
	require.NoError(t, err)
	assert.Equal(t, 1024, c.Size())
	assert.Len(t, c.Window(), 1024)
}

func TestTransformErrors(t *testing.T) {
	c := NewCache()
	_, err := c.Transform(nil, make([]byte, 100), 100, FormatU8)
	assert.ErrorIs(t, err, ErrTransform)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = c.Transform(nil, make([]byte, 63), 64, FormatU8)
	assert.ErrorIs(t, err, ErrShortBlock)

	_, err = c.Transform(nil, make([]byte, 64), 64, FormatS32)
	assert.ErrorIs(t, err, ErrShortBlock)
}

func TestTransformMatchesReferenceFFT(t *testing.T) {
	const n = 512
	rng := rand.New(rand.NewSource(7))
	block := make([]byte, n)
	for i := range block {
		block[i] = byte(rng.Intn(256))
	}

	c := NewCache()
	power, err := c.Transform(nil, block, n, FormatU8)
	require.NoError(t, err)

	seq := make([]float64, n)
	for i, b := range block {
		seq[i] = float64(int(b)-128) * c.Window()[i]
	}
	coeffs := fourier.NewFFT(n).Coefficients(nil, seq)

	for k := 0; k < n/2; k++ {
		want := cmplx.Abs(coeffs[k])
		want *= want
		assert.InDelta(t, want, power[k], 1e-6*math.Max(1, want), "bin %d", k)
	}
}

func TestTransformS32PureTone(t *testing.T) {
	const n, bin = 256, 19
	block := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		v := int32(math.Round(1e6 * math.Cos(2*math.Pi*bin*float64(i)/n)))
		binary.LittleEndian.PutUint32(block[4*i:], uint32(v))
	}

	power, err := NewCache().Transform(nil, block, n, FormatS32)
	require.NoError(t, err)

	// Rectangular window, exact bin: all energy lands in one bin
	peak := 0
	for k := range power {
		if power[k] > power[peak] {
			peak = k
		}
	}
	assert.Equal(t, bin, peak)
	assert.InDelta(t, 1e6*n/2, math.Sqrt(power[bin]), 100)
}

func TestTransformDeterministic(t *testing.T) {
	const n = 1024
	block := make([]byte, n)
	for i := range block {
		block[i] = byte(128 + 60*math.Sin(2*math.Pi*37*float64(i)/n))
	}

	c := NewCache()
	first, err := c.Transform(nil, block, n, FormatU8)
	require.NoError(t, err)
	first = append([]float64(nil), first...)

	second, err := NewCache().Transform(make([]float64, 0, n/2), block, n, FormatU8)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
