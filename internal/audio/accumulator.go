package audio

// Accumulator keeps the most recent samples of a capture stream in a block
// of fixed length, the way an analysis window slides over live input.
type Accumulator struct {
	block  []byte
	filled int
}

// NewAccumulator creates an accumulator for blocks of size bytes
func NewAccumulator(size int) *Accumulator {
	return &Accumulator{block: make([]byte, size)}
}

// Push appends chunk to the block, dropping the oldest samples.
func (a *Accumulator) Push(chunk []byte) {
	n := len(a.block)
	if len(chunk) >= n {
		copy(a.block, chunk[len(chunk)-n:])
		a.filled = n
		return
	}

	copy(a.block, a.block[len(chunk):])
	copy(a.block[n-len(chunk):], chunk)
	a.filled = min(n, a.filled+len(chunk))
}

// Ready reports whether a full block of real samples has been pushed
func (a *Accumulator) Ready() bool {
	return a.filled == len(a.block)
}

// Block returns the current block. The slice is reused by later pushes.
func (a *Accumulator) Block() []byte {
	return a.block
}

// Reset forgets every pushed sample
func (a *Accumulator) Reset() {
	clear(a.block)
	a.filled = 0
}
