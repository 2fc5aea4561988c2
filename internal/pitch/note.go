package pitch

import (
	"fmt"
	"math"
)

// Note represents a musical note
type Note struct {
	Name      string  // e.g., "A", "A#", "B"
	Octave    int     // e.g., 4 for middle C (C4)
	Frequency float64 // Frequency in Hz
	Cents     float64 // Cents deviation from perfect pitch (-50 to +50)
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// All note names in chromatic order
var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// FrequencyToNote converts a frequency to the nearest equal-tempered note
func FrequencyToNote(frequency float64) *Note {
	// A4 = 440Hz, calculate semitones from A4
	semitones := 12 * math.Log2(frequency/440.0)

	roundedSemitones := math.Round(semitones)
	cents := 100 * (semitones - roundedSemitones)

	// A4 is 9 semitones above C4
	noteIndex := int(math.Mod(roundedSemitones+9, 12))
	if noteIndex < 0 {
		noteIndex += 12
	}
	octave := 4 + int(math.Floor((roundedSemitones+9)/12))

	return &Note{
		Name:      noteNames[noteIndex],
		Octave:    octave,
		Frequency: frequency,
		Cents:     cents,
	}
}

// NoteFrequency returns the equal-tempered frequency of a named note
func NoteFrequency(name string, octave int) (float64, error) {
	for i, n := range noteNames {
		if n == name {
			semitones := float64(i-9) + 12*float64(octave-4)
			return 440 * math.Pow(2, semitones/12), nil
		}
	}
	return 0, fmt.Errorf("unknown note name %q", name)
}

// CentsBetween returns how far frequency is from reference, in cents
func CentsBetween(frequency, reference float64) float64 {
	return 1200 * math.Log2(frequency/reference)
}
