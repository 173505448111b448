package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrdg/organ/audio"
	wav "github.com/youpy/go-wav"
)

// renderWAV plays notes through engine for the given number of seconds and
// writes the result as 16 bit stereo. The notes are released after three
// quarters of the duration so the tail of the release and the reverb is kept.
func renderWAV(w io.Writer, engine *audio.Engine, notes []int, seconds float64, frames int) error {
	if seconds <= 0 {
		return fmt.Errorf("render: duration must be positive: %v", seconds)
	}
	if frames <= 0 {
		return fmt.Errorf("render: frame size must be positive: %d", frames)
	}
	total := int(seconds * audio.SampleRate)
	release := total * 3 / 4

	organ := engine.Organ()
	for _, note := range notes {
		if err := organ.NoteOn(0, note); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	ww := wav.NewWriter(w, uint32(total), 2, audio.SampleRate, 16)
	buf := make([]int16, frames*2)
	samples := make([]wav.Sample, 0, frames)
	released := false
	for pos := 0; pos < total; pos += frames {
		if !released && pos >= release {
			for _, note := range notes {
				organ.NoteOff(0, note)
			}
			released = true
		}
		n := frames
		if total-pos < n {
			n = total - pos
		}
		for i := range buf {
			buf[i] = 0
		}
		engine.Process(buf[:n*2])
		samples = samples[:0]
		for i := 0; i < n; i++ {
			samples = append(samples, wav.Sample{Values: [2]int{int(buf[2*i]), int(buf[2*i+1])}})
		}
		if err := ww.WriteSamples(samples); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	return nil
}

// parseNotes parses a comma separated list of note numbers such as "60,64,67".
func parseNotes(s string) ([]int, error) {
	var notes []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid note %q", field)
		}
		if _, err := audio.FrequencyOf(n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes in %q", s)
	}
	return notes, nil
}
