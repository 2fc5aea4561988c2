package audio

import (
	"errors"
	"math"
	"sync"

	"github.com/0xlemi/hearnote/internal/spectrum"
)

// Errors
var (
	ErrAlreadyCapturing = errors.New("audio capture already started")
	ErrNotCapturing     = errors.New("audio capture not started")
)

// AudioBuffer represents a block of raw audio samples
type AudioBuffer struct {
	Samples    []byte
	Format     spectrum.SampleFormat
	SampleRate int
}

// Capturer defines the interface for audio capture
type Capturer interface {
	// Start begins audio capture
	Start() error

	// Stop ends audio capture
	Stop() error

	// GetBuffer returns the most recently captured chunk
	GetBuffer() (*AudioBuffer, error)

	// IsCapturing returns true if currently capturing audio
	IsCapturing() bool
}

// ToneCapturer produces a synthetic unsigned 8-bit tone instead of reading a
// device. Each GetBuffer call continues the waveform where the last one ended.
type ToneCapturer struct {
	mu          sync.Mutex
	isCapturing bool
	sampleRate  int
	chunkSize   int
	amplitude   float64
	partials    []float64 // relative amplitude of harmonics 1, 2, 3, ...
	frequency   float64
	position    int
}

// NewToneCapturer creates a tone source at frequency Hz. partials weights the
// harmonic series; nil means a pure sine.
func NewToneCapturer(frequency float64, sampleRate, chunkSize int, partials []float64) *ToneCapturer {
	if len(partials) == 0 {
		partials = []float64{1}
	}
	return &ToneCapturer{
		sampleRate: sampleRate,
		chunkSize:  chunkSize,
		amplitude:  100,
		partials:   partials,
		frequency:  frequency,
	}
}

// SetFrequency retunes the tone
func (c *ToneCapturer) SetFrequency(frequency float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frequency = frequency
}

// Start begins audio capture
func (c *ToneCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCapturing {
		return ErrAlreadyCapturing
	}
	c.isCapturing = true
	return nil
}

// Stop ends audio capture
func (c *ToneCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCapturing {
		return ErrNotCapturing
	}
	c.isCapturing = false
	return nil
}

// GetBuffer returns the next chunk of the tone
func (c *ToneCapturer) GetBuffer() (*AudioBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCapturing {
		return nil, ErrNotCapturing
	}

	var total float64
	for _, p := range c.partials {
		total += math.Abs(p)
	}

	samples := make([]byte, c.chunkSize)
	for i := range samples {
		t := float64(c.position+i) / float64(c.sampleRate)
		v := 0.0
		for h, p := range c.partials {
			v += p * math.Sin(2*math.Pi*c.frequency*float64(h+1)*t)
		}
		samples[i] = floatToU8(c.amplitude / 127 * v / total)
	}
	c.position += c.chunkSize

	return &AudioBuffer{
		Samples:    samples,
		Format:     spectrum.FormatU8,
		SampleRate: c.sampleRate,
	}, nil
}

// IsCapturing returns true if currently capturing audio
func (c *ToneCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}

// floatToU8 maps a sample in [-1, 1] to unsigned 8-bit PCM, clipping outside
func floatToU8(v float64) byte {
	s := math.Round(128 + 127*v)
	return byte(math.Max(0, math.Min(255, s)))
}
