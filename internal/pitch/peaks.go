package pitch

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// MaxPeaks is the capacity of a PeakList
const MaxPeaks = 20

// Peak is a spectrum bin selected as a pitch candidate
type Peak struct {
	Bin           int
	Amplitude     float64
	IsAbsoluteMax bool // Candidate is plausibly the fundamental of the loudest partial
	HarmonicScore int
}

// PeakList holds the strongest local peaks of one spectrum. Unused slots are
// zero Peaks. While being filled it is kept in ascending amplitude order so
// the first slot is always the weakest.
type PeakList [MaxPeaks]Peak

// Len returns the number of occupied slots
func (l *PeakList) Len() int {
	n := 0
	for _, p := range l {
		if p.Bin != 0 {
			n++
		}
	}
	return n
}

// add admits a peak if it beats the weakest one held, evicting that one
func (l *PeakList) add(bin int, amplitude float64) bool {
	if amplitude <= l[0].Amplitude {
		return false
	}
	l[0] = Peak{Bin: bin, Amplitude: amplitude}
	slices.SortStableFunc(l[:], func(a, b Peak) int {
		return cmp.Compare(a.Amplitude, b.Amplitude)
	})
	return true
}

func (l *PeakList) sortByBin() {
	slices.SortStableFunc(l[:], func(a, b Peak) int {
		return cmp.Compare(a.Bin, b.Bin)
	})
}

func isPeak(power []float64, i int) bool {
	return power[i] > power[i-1] && power[i] > power[i+1]
}

// peakInRange returns the first local peak in bins [lo, hi], or 0
func peakInRange(power []float64, lo, hi int) int {
	lo = max(lo, 1)
	hi = min(hi, len(power)-2)
	for i := lo; i <= hi; i++ {
		if isPeak(power, i) {
			return i
		}
	}
	return 0
}

// FindPeaks scans a power spectrum for its strongest local peaks and for the
// single loudest bin above DC. A spectrum with no energy yields an absolute
// max at bin 0.
func FindPeaks(power []float64) (PeakList, Peak) {
	var list PeakList
	var loudest Peak

	for i := 1; i < len(power)-1; i++ {
		if isPeak(power, i) {
			list.add(i, power[i])
		}
	}

	if len(power) < 2 {
		return list, loudest
	}
	if i := floats.MaxIdx(power[1:]) + 1; power[i] > 0 {
		loudest = Peak{Bin: i, Amplitude: power[i]}
	}

	return list, loudest
}
