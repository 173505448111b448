package audio

import (
	"log"
)

const (
	SampleRate = 44100

	numVoices = 10
)

// Organ manages a fixed pool of voices. When every voice is busy the least
// recently used one is taken over without a release fade.
type Organ struct {
	voices  [numVoices]Voice
	arbiter *Arbiter
	stops   *Registry
	stop    int
	debug   bool
}

// NewOrgan creates an organ with the first stop of the registry drawn.
func NewOrgan(sampleRate float64, stops *Registry) *Organ {
	o := &Organ{
		arbiter: NewArbiter(numVoices),
		stops:   stops,
	}
	for n := range o.voices {
		o.voices[n].init(sampleRate)
	}
	if err := o.SetRegistration(0); err != nil {
		panic(err)
	}
	return o
}

// SetDebug enables logging of voice allocation.
func (o *Organ) SetDebug(debug bool) { o.debug = debug }

// NoteOn starts a note. A note that is already sounding on the same channel
// gets a fresh attack on its existing voice.
func (o *Organ) NoteOn(channel, note int) error {
	freq, err := FrequencyOf(note)
	if err != nil {
		return err
	}
	if slot := o.find(channel, note); slot >= 0 {
		o.voices[slot].Retrigger()
		o.arbiter.Promote(slot)
		return nil
	}
	slot := o.arbiter.AllocateOldest()
	voice := &o.voices[slot]
	if o.debug {
		if voice.active() {
			log.Printf("organ: voice %d stolen from note %d", slot, voice.note)
		} else {
			log.Printf("organ: voice %d plays note %d", slot, note)
		}
	}
	voice.Trigger(channel, note, freq)
	return nil
}

// NoteOff releases a sounding note. Releasing a note that is not sounding
// does nothing.
func (o *Organ) NoteOff(channel, note int) {
	if slot := o.find(channel, note); slot >= 0 {
		o.voices[slot].Release()
	}
}

// ReleaseAll releases every sounding voice.
func (o *Organ) ReleaseAll() {
	for n := range o.voices {
		if o.voices[n].active() {
			o.voices[n].Release()
		}
	}
}

func (o *Organ) find(channel, note int) int {
	for n := range o.voices {
		v := &o.voices[n]
		if v.active() && v.note == note && v.channel == channel {
			return n
		}
	}
	return -1
}

// SetRegistration draws a stop, changing the partial balance of every voice
// immediately. Envelopes are left alone.
func (o *Organ) SetRegistration(stop int) error {
	s, err := o.stops.Stop(stop)
	if err != nil {
		return err
	}
	weights := s.MixWeights()
	for n := range o.voices {
		o.voices[n].SetMix(weights)
	}
	o.stop = stop
	return nil
}

// Registration returns the index of the current stop.
func (o *Organ) Registration() int { return o.stop }

func (o *Organ) Stops() *Registry { return o.stops }

// Next sums the next sample of every voice.
func (o *Organ) Next() float64 {
	var sum float64
	for n := range o.voices {
		sum += o.voices[n].Next()
	}
	return sum
}

// VoiceInfo describes the state of one voice slot.
type VoiceInfo struct {
	Slot    int
	Channel int
	Note    int
	Level   float64
}

// Voices returns a snapshot of the voice pool, including idle slots.
func (o *Organ) Voices() []VoiceInfo {
	infos := make([]VoiceInfo, numVoices)
	for n := range o.voices {
		v := &o.voices[n]
		infos[n] = VoiceInfo{
			Slot:    n,
			Channel: v.channel,
			Note:    v.note,
			Level:   v.Level(),
		}
	}
	return infos
}

// LRU returns the voice slots from least to most recently used.
func (o *Organ) LRU() []int { return o.arbiter.Order() }
