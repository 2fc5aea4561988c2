package audio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Level returns the RMS level of unsigned 8-bit samples, normalized to
// [0, 1], and the same level in dBFS. Silence reports -100 dB.
func Level(samples []byte) (rms, db float64) {
	if len(samples) == 0 {
		return 0, -100
	}

	centered := make([]float64, len(samples))
	for i, s := range samples {
		centered[i] = (float64(s) - 128) / 128
	}
	rms = floats.Norm(centered, 2) / math.Sqrt(float64(len(centered)))

	// Avoid log(0)
	if rms > 0.0000001 {
		db = 20 * math.Log10(rms)
	} else {
		db = -100
	}
	return rms, db
}
