// Package gate implements the noise gate that conditions raw 8-bit PCM
// before spectral analysis.
package gate

import (
	"errors"
	"fmt"
)

// silence is the center value of unsigned 8-bit PCM
const silence = 128

// ErrZeroTicks is returned when a release or attack time rounds down to
// zero samples at the given sample rate
var ErrZeroTicks = errors.New("gate time shorter than one sample")

// Params configures the gate
type Params struct {
	Threshold int // Half-width of the quiet band around 128; 0 disables the gate
	HoldMs    int // Quiet time before the gate starts closing
	ReleaseMs int // Ramp time from full level down to silence
	AttackMs  int // Ramp time from silence back to full level
}

// DefaultParams returns the gate settings the tuner runs with
func DefaultParams() Params {
	return Params{
		Threshold: 5,
		HoldMs:    5,
		ReleaseMs: 5,
		AttackMs:  5,
	}
}

// state follows the envelope across the samples of one call
type state struct {
	fact        float32
	hold        int
	open        bool
	releasing   bool
	holdTicks   int
	releaseStep float32
	attackStep  float32
}

// ApplyU8 gates samples in place. Samples strictly inside the band
// (128-Threshold, 128+Threshold) count as quiet. After HoldMs of quiet the gate
// opens and fades the signal to silence over ReleaseMs; the first loud sample
// after that fades it back in over AttackMs.
func ApplyU8(samples []byte, sampleRate int, p Params) error {
	if p.Threshold == 0 {
		return nil
	}

	releaseTicks := p.ReleaseMs * sampleRate / 1000
	attackTicks := p.AttackMs * sampleRate / 1000
	if releaseTicks <= 0 || attackTicks <= 0 {
		return fmt.Errorf("%w: release=%dms attack=%dms at %d Hz", ErrZeroTicks, p.ReleaseMs, p.AttackMs, sampleRate)
	}

	s := state{
		fact:        1,
		holdTicks:   p.HoldMs * sampleRate / 1000,
		releaseStep: 1 / float32(releaseTicks),
		attackStep:  1 / float32(attackTicks),
	}

	for i, v := range samples {
		if quiet(v, p.Threshold) {
			samples[i] = s.quiet(v)
		} else {
			samples[i] = s.loud(v)
		}
	}

	return nil
}

func quiet(v byte, threshold int) bool {
	d := int(v) - silence
	return d > -threshold && d < threshold
}

func (s *state) quiet(v byte) byte {
	if !s.open {
		s.hold++
		if s.hold > s.holdTicks {
			s.open = true
			s.releasing = true
		}
		return v
	}

	if !s.releasing {
		return silence
	}

	s.fact -= s.releaseStep
	if s.fact < 0 {
		s.fact = 0
		s.releasing = false
		return silence
	}
	return scale(v, s.fact)
}

func (s *state) loud(v byte) byte {
	s.hold = 0
	if !s.open {
		return v
	}

	s.fact += s.attackStep
	if s.fact > 1 {
		s.fact = 1
		s.open = false
		return v
	}
	return scale(v, s.fact)
}

func scale(v byte, fact float32) byte {
	return byte(silence + float32(int(v)-silence)*fact)
}
