package pitch

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/0xlemi/hearnote/internal/gate"
	"github.com/0xlemi/hearnote/internal/spectrum"
)

// NoPitch is reported instead of any frequency below the configured floor
const NoPitch = 1.0

// Config controls one pitch estimate
type Config struct {
	SampleRate     int
	TransformSize  int
	Mode           Mode
	Format         spectrum.SampleFormat
	Gate           gate.Params // Only applied to FormatU8 blocks
	FrequencyFloor float64     // Hz
}

// DefaultConfig returns the settings the tuner starts with
func DefaultConfig() Config {
	return Config{
		SampleRate:     44100,
		TransformSize:  32768,
		Mode:           HarmonicCount,
		Format:         spectrum.FormatU8,
		Gate:           gate.DefaultParams(),
		FrequencyFloor: 41,
	}
}

// Estimator is one pitch detection session. It owns the transform cache and
// the per-call buffers, so concurrent callers are serialized.
type Estimator struct {
	mu     sync.Mutex
	cache  *spectrum.Cache
	work   []byte
	power  []float64
	logger *zap.Logger
}

// NewEstimator creates an estimator; a nil logger discards output
func NewEstimator(logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		cache:  spectrum.NewCache(),
		logger: logger,
	}
}

// InitSession builds the transform cache for size n unless it already is
func (e *Estimator) InitSession(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ensureCache(n)
}

func (e *Estimator) ensureCache(n int) error {
	if e.cache.Size() == n {
		return nil
	}
	if err := e.cache.Init(n); err != nil {
		return err
	}
	e.logger.Debug("transform cache rebuilt", zap.Int("size", n))
	return nil
}

// EndSession releases the cache and working buffers. The estimator stays
// usable and rebuilds them on the next call.
func (e *Estimator) EndSession() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache.Reset()
	e.work = nil
	e.power = nil
}

// EstimatePitch returns the pitch of block in Hz, or NoPitch when the result
// falls below cfg.FrequencyFloor. block is not modified.
func (e *Estimator) EstimatePitch(block []byte, cfg Config) (float64, error) {
	if !cfg.Mode.Valid() {
		return 0, fmt.Errorf("%w: %v", ErrUnknownMode, cfg.Mode)
	}
	if cfg.SampleRate <= 0 {
		return 0, fmt.Errorf("invalid sample rate %d", cfg.SampleRate)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := cfg.TransformSize
	if err := e.ensureCache(n); err != nil {
		return 0, fmt.Errorf("%w: %w", spectrum.ErrTransform, err)
	}

	need := n * cfg.Format.BytesPerSample()
	e.work = append(e.work[:0], block[:min(len(block), need)]...)

	if cfg.Format == spectrum.FormatU8 {
		if err := gate.ApplyU8(e.work, cfg.SampleRate, cfg.Gate); err != nil {
			return 0, fmt.Errorf("noise gate: %w", err)
		}
	}

	power, err := e.cache.Transform(e.power, e.work, n, cfg.Format)
	if err != nil {
		return 0, err
	}
	e.power = power

	bin := SelectBin(power, cfg.Mode)
	freq := BinFrequency(bin, cfg.SampleRate, n)

	e.logger.Debug("pitch estimated",
		zap.Stringer("mode", cfg.Mode),
		zap.Int("bin", bin),
		zap.Float64("frequency", freq))

	if freq < cfg.FrequencyFloor {
		return NoPitch, nil
	}
	return freq, nil
}

// BinFrequency converts a bin index of an n-point transform to Hz
func BinFrequency(bin, sampleRate, n int) float64 {
	if bin == 0 {
		return 0
	}
	return float64(bin) * float64(sampleRate) / float64(n)
}
