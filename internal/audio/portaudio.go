package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/0xlemi/hearnote/internal/spectrum"
)

// PortAudioCapturer implements audio capture using PortAudio. Input is mixed
// down to mono, amplified and delivered as unsigned 8-bit PCM.
type PortAudioCapturer struct {
	isCapturing   bool
	stream        *portaudio.Stream
	buffer        *AudioBuffer
	framesPerRead int
	sampleRate    int
	channels      int
	bufferMutex   sync.Mutex
	amplification float32 // Audio signal amplification factor
	logger        *zap.Logger
}

// NewPortAudioCapturer creates a new audio capturer using PortAudio
func NewPortAudioCapturer(framesPerRead, sampleRate, channels int, logger *zap.Logger) (*PortAudioCapturer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	return &PortAudioCapturer{
		buffer: &AudioBuffer{
			Samples:    make([]byte, 0, framesPerRead),
			Format:     spectrum.FormatU8,
			SampleRate: sampleRate,
		},
		framesPerRead: framesPerRead,
		sampleRate:    sampleRate,
		channels:      channels,
		amplification: 1,
		logger:        logger,
	}, nil
}

// Start begins audio capture
func (c *PortAudioCapturer) Start() error {
	if c.isCapturing {
		return ErrAlreadyCapturing
	}

	var err error
	c.stream, err = portaudio.OpenDefaultStream(
		c.channels, // input channels
		0,          // no output
		float64(c.sampleRate),
		c.framesPerRead,
		c.processAudio,
	)
	if err != nil {
		return err
	}

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		return err
	}

	c.logger.Info("audio capture started",
		zap.Int("sample_rate", c.sampleRate),
		zap.Int("channels", c.channels),
		zap.Int("frames_per_read", c.framesPerRead))

	c.isCapturing = true
	return nil
}

// Stop ends audio capture
func (c *PortAudioCapturer) Stop() error {
	if !c.isCapturing {
		return ErrNotCapturing
	}

	if err := c.stream.Stop(); err != nil {
		return err
	}
	if err := c.stream.Close(); err != nil {
		return err
	}
	if err := portaudio.Terminate(); err != nil {
		return err
	}

	c.logger.Info("audio capture stopped")
	c.isCapturing = false
	return nil
}

// processAudio is the PortAudio callback
func (c *PortAudioCapturer) processAudio(in, _ []float32) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	frames := len(in) / c.channels
	samples := make([]byte, frames)
	for i := range samples {
		sum := float32(0)
		for ch := 0; ch < c.channels; ch++ {
			sum += in[i*c.channels+ch]
		}
		samples[i] = floatToU8(float64(sum / float32(c.channels) * c.amplification))
	}

	// Chunks queue up until GetBuffer drains them, keeping at most one second
	pending := append(c.buffer.Samples, samples...)
	if excess := len(pending) - c.sampleRate; excess > 0 {
		pending = pending[excess:]
	}
	c.buffer.Samples = pending
}

// GetBuffer drains and returns every sample captured since the last call
func (c *PortAudioCapturer) GetBuffer() (*AudioBuffer, error) {
	if !c.isCapturing {
		return nil, ErrNotCapturing
	}

	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	bufferCopy := &AudioBuffer{
		Samples:    make([]byte, len(c.buffer.Samples)),
		Format:     c.buffer.Format,
		SampleRate: c.buffer.SampleRate,
	}
	copy(bufferCopy.Samples, c.buffer.Samples)

	c.buffer.Samples = c.buffer.Samples[:0]

	return bufferCopy, nil
}

// IsCapturing returns true if currently capturing audio
func (c *PortAudioCapturer) IsCapturing() bool {
	return c.isCapturing
}

// SetAmplification sets the audio amplification factor
func (c *PortAudioCapturer) SetAmplification(factor float32) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	// Ensure amplification is positive
	if factor < 0.1 {
		factor = 0.1
	}

	c.amplification = factor
}
