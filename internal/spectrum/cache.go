package spectrum

import (
	"errors"
	"math"
)

// Errors
var (
	ErrInvalidSize = errors.New("transform size must be a power of two >= 4")
	ErrTransform   = errors.New("transform failed")
	ErrShortBlock  = errors.New("sample block shorter than transform size")
)

// Cache holds the tables a transform of one size needs. A Cache is valid only
// for the size it was built for; Init with another size replaces every table.
// Transform output is bit-exact across runs of this implementation only.
type Cache struct {
	size        int
	logSize     int
	window      []float64
	bitReversal []int
	cosTable    []float64
	sinTable    []float64

	// working buffers for the butterfly passes
	re []float64
	im []float64
}

// NewCache returns an empty cache. The first Transform builds it.
func NewCache() *Cache {
	return &Cache{}
}

// ValidSize reports whether n can be used as a transform size
func ValidSize(n int) bool {
	return n >= 4 && n&(n-1) == 0
}

// Size returns the transform size the cache is built for, 0 if empty
func (c *Cache) Size() int {
	return c.size
}

// Window returns the cached analysis window
func (c *Cache) Window() []float64 {
	return c.window
}

// BitReversal returns the cached bit-reversal permutation
func (c *Cache) BitReversal() []int {
	return c.bitReversal
}

// Init rebuilds all tables for transform size n
func (c *Cache) Init(n int) error {
	if !ValidSize(n) {
		return ErrInvalidSize
	}

	logSize := 0
	for i := n; i > 1; i >>= 1 {
		logSize++
	}

	window := make([]float64, n)
	for i := 0; i < n/2; i++ {
		w := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n))
		window[i] = w
		window[n-1-i] = w
	}

	bitReversal := make([]int, n)
	for i := range bitReversal {
		bitReversal[i] = reverseBits(i, logSize)
	}

	cosTable := make([]float64, n/2)
	sinTable := make([]float64, n/2)
	for i := range cosTable {
		angle := 2 * math.Pi * float64(i) / float64(n)
		cosTable[i] = math.Cos(angle)
		sinTable[i] = math.Sin(angle)
	}

	// Swap in only once every table is ready
	c.size = n
	c.logSize = logSize
	c.window = window
	c.bitReversal = bitReversal
	c.cosTable = cosTable
	c.sinTable = sinTable
	c.re = make([]float64, n)
	c.im = make([]float64, n)

	return nil
}

// Reset drops every table
func (c *Cache) Reset() {
	*c = Cache{}
}

func reverseBits(v, bits int) int {
	reversed := 0
	for i := 0; i < bits; i++ {
		reversed = reversed<<1 | v&1
		v >>= 1
	}
	return reversed
}
