package spectrum

import (
	"encoding/binary"
	"fmt"
)

// SampleFormat selects how a raw sample block is interpreted
type SampleFormat int

const (
	// FormatU8 is unsigned 8-bit PCM centered on 128
	FormatU8 SampleFormat = iota
	// FormatS32 is little-endian signed 32-bit PCM
	FormatS32
)

// BytesPerSample returns the width of one sample in the block
func (f SampleFormat) BytesPerSample() int {
	if f == FormatS32 {
		return 4
	}
	return 1
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS32:
		return "s32"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// Transform computes the power spectrum of the first n samples of block.
// The result has n/2 bins and is written into dst when it has the capacity.
// U8 samples are centered and windowed, S32 samples are used as they are.
func (c *Cache) Transform(dst []float64, block []byte, n int, format SampleFormat) ([]float64, error) {
	if c.size != n {
		if err := c.Init(n); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransform, err)
		}
	}

	if len(block) < n*format.BytesPerSample() {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBlock, len(block), n*format.BytesPerSample())
	}

	re, im := c.re, c.im
	switch format {
	case FormatS32:
		for i := 0; i < n; i++ {
			v := int32(binary.LittleEndian.Uint32(block[4*i:]))
			re[c.bitReversal[i]] = float64(v)
			im[c.bitReversal[i]] = 0
		}
	default:
		for i := 0; i < n; i++ {
			re[c.bitReversal[i]] = float64(int(block[i])-128) * c.window[i]
			im[c.bitReversal[i]] = 0
		}
	}

	c.butterflies()

	half := n / 2
	if cap(dst) < half {
		dst = make([]float64, half)
	}
	dst = dst[:half]
	for k := 0; k < half; k++ {
		dst[k] = re[k]*re[k] + im[k]*im[k]
	}

	return dst, nil
}

// butterflies runs the log2(n) decimation-in-time stages over the
// bit-reversed working buffers
func (c *Cache) butterflies() {
	n := c.size
	re, im := c.re, c.im

	span := 1
	stride := n / 2
	for stage := c.logSize; stage != 0; stage-- {
		for j := 0; j < span; j++ {
			wr := c.cosTable[j*stride]
			wi := c.sinTable[j*stride]

			for k := j; k < n; k += span << 1 {
				k1 := k + span
				tr := wr*re[k1] - wi*im[k1]
				ti := wr*im[k1] + wi*re[k1]
				re[k1] = re[k] - tr
				im[k1] = im[k] - ti
				re[k] += tr
				im[k] += ti
			}
		}
		span <<= 1
		stride >>= 1
	}
}
