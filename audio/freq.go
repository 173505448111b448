package audio

import (
	"errors"
	"fmt"
	"math"
)

const (
	// NumNotes is the size of the note frequency table.
	NumNotes = 128

	a4Freq = 440.0
	a4Note = 69
)

var ErrNoteRange = errors.New("note out of range")

// noteFreqs holds equal tempered frequencies, built by repeated twelfth
// roots of two from the frequency of note 0.
var noteFreqs = makeFreqTable()

func makeFreqTable() [NumNotes]float64 {
	var table [NumNotes]float64
	semitone := math.Pow(2, 1.0/12)
	lowest := a4Freq / math.Pow(semitone, a4Note)
	for n := range table {
		table[n] = lowest * math.Pow(semitone, float64(n))
	}
	return table
}

// FrequencyOf returns the frequency in Hz of a note number.
func FrequencyOf(note int) (float64, error) {
	if note < 0 || note >= NumNotes {
		return 0, fmt.Errorf("%w: %d", ErrNoteRange, note)
	}
	return noteFreqs[note], nil
}
