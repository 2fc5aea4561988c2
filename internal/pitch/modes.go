package pitch

import (
	"fmt"
	"strings"
)

// Empirical tuning constants of the harmonic search
const (
	majorThird = 1.259921050 // 2^(4/12)
	fifth      = 1.498307077 // 2^(7/12)

	// Peaks weaker than the loudest bin divided by this are noise
	noiseFloorDivisor = 1000

	// Half-width in bins of a harmonic match window
	harmonicTolerance = 4
)

// Mode selects the strategy that turns a spectrum into a pitch
type Mode int

const (
	// AbsoluteMax picks the loudest bin
	AbsoluteMax Mode = iota
	// HarmonicCount picks the candidate with the most harmonic support
	HarmonicCount
	// RatioRefine corrects octave errors around the loudest bin
	RatioRefine
)

var modeNames = map[Mode]string{
	AbsoluteMax:   "absolute-max",
	HarmonicCount: "harmonic-count",
	RatioRefine:   "ratio-refine",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m names a known strategy
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode maps a mode name back to its Mode
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// SelectBin runs peak extraction and the chosen strategy over a power
// spectrum and returns the winning bin
func SelectBin(power []float64, mode Mode) int {
	list, loudest := FindPeaks(power)

	switch mode {
	case HarmonicCount:
		return harmonicCount(list, loudest, len(power))
	case RatioRefine:
		return ratioRefine(power, loudest)
	default:
		return loudest.Bin
	}
}

// harmonicCount scores every candidate by how many higher-indexed peaks sit
// on its octave, major-third and fifth ladders, and returns the best scoring
// candidate that lies at or below the loudest bin.
func harmonicCount(list PeakList, loudest Peak, half int) int {
	list.sortByBin()
	floor := loudest.Amplitude / noiseFloorDivisor

	for i := range list {
		p := &list[i]
		if p.Bin == 0 || p.Amplitude < floor {
			continue
		}
		if p.Bin == loudest.Bin {
			p.IsAbsoluteMax = true
		}

		later := list[i+1:]
		for k := 2 * p.Bin; k < half; k *= 2 {
			p.score(later, k, loudest.Bin)
		}
		for _, ratio := range []float64{majorThird, fifth} {
			kf := ratio * float64(p.Bin)
			for k := int(kf); k < half; k = int(kf) {
				p.score(later, k, loudest.Bin)
				kf *= 2
			}
		}
	}

	bin, best := 0, 0
	for _, p := range list {
		// Ties go to the higher bin
		if p.IsAbsoluteMax && p.HarmonicScore >= best {
			bin = p.Bin
			best = p.HarmonicScore
		}
	}
	if bin == 0 {
		return loudest.Bin
	}
	return bin
}

func (p *Peak) score(later []Peak, k, loudestBin int) {
	for _, q := range later {
		if q.Bin == loudestBin {
			p.IsAbsoluteMax = true
		}
		if q.Bin >= k-harmonicTolerance && q.Bin <= k+harmonicTolerance {
			p.HarmonicScore++
		}
	}
}

// ratioRefine checks whether the loudest bin is really an overtone: first an
// octave above a peak backed by a fifth above, then a fifth above a peak
// backed by the octave below that.
func ratioRefine(power []float64, loudest Peak) int {
	k := loudest.Bin
	floor := loudest.Amplitude / noiseFloorDivisor
	kf := float64(k)

	if i := peakInRange(power, k/2-2, k/2+2); i != 0 && power[i] > floor {
		lo, hi := int(kf*fifth-harmonicTolerance), int(kf*fifth+harmonicTolerance)
		if t := peakInRange(power, lo, hi); t != 0 && power[t] > floor {
			return i
		}
	}

	lo, hi := int(kf/fifth-harmonicTolerance), int(kf/fifth+harmonicTolerance)
	if i := peakInRange(power, lo, hi); i != 0 && power[i] > floor {
		lo, hi = int(kf/(2*fifth)-harmonicTolerance), int(kf/(2*fifth)+harmonicTolerance)
		if t := peakInRange(power, lo, hi); t != 0 && power[t] > floor {
			return t
		}
	}

	return k
}
