package pitch

import (
	"errors"
	"sync"

	"github.com/0xlemi/hearnote/internal/audio"
)

// Errors
var (
	ErrEmptyBuffer = errors.New("empty audio buffer")
	ErrNoPitch     = errors.New("no usable pitch")
	ErrUnknownMode = errors.New("unknown estimation mode")
)

// Detector defines the interface for pitch detection
type Detector interface {
	// DetectPitch analyzes an audio buffer and returns the detected note
	DetectPitch(buffer *audio.AudioBuffer) (*Note, error)
}

// FFTDetector implements pitch detection on top of an Estimator session
type FFTDetector struct {
	estimator *Estimator
	mu        sync.Mutex
	config    Config
}

// NewFFTDetector creates a detector that estimates with cfg. The buffer's own
// sample rate and format take precedence over the ones in cfg.
func NewFFTDetector(estimator *Estimator, cfg Config) *FFTDetector {
	return &FFTDetector{
		estimator: estimator,
		config:    cfg,
	}
}

// SetMode switches the estimation strategy for later calls
func (d *FFTDetector) SetMode(mode Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config.Mode = mode
}

// Mode returns the estimation strategy in use
func (d *FFTDetector) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config.Mode
}

// DetectPitch analyzes an audio buffer and returns the detected note
func (d *FFTDetector) DetectPitch(buffer *audio.AudioBuffer) (*Note, error) {
	if buffer == nil || len(buffer.Samples) == 0 {
		return nil, ErrEmptyBuffer
	}

	d.mu.Lock()
	cfg := d.config
	d.mu.Unlock()
	cfg.SampleRate = buffer.SampleRate
	cfg.Format = buffer.Format

	freq, err := d.estimator.EstimatePitch(buffer.Samples, cfg)
	if err != nil {
		return nil, err
	}
	if freq == NoPitch {
		return nil, ErrNoPitch
	}

	return FrequencyToNote(freq), nil
}
