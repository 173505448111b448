package main

import (
	"log"
	"sync/atomic"

	"github.com/mrdg/organ/audio"
	"github.com/mrdg/organ/midi"
)

const propTranspose = "transpose"

// controller feeds control bytes to the organ. It runs on the audio
// goroutine as the sink's ticker, so the organ is never touched concurrently.
type controller struct {
	organ     *audio.Organ
	sources   []*controlSource
	transpose *atomic.Value
	releasing atomic.Bool
	debug     bool
}

// controlSource is one byte stream with its own decoder, so that messages
// from different inputs can't interleave.
type controlSource struct {
	name    string
	queue   *midi.Queue
	decoder *midi.Decoder
	// held maps channel and received key to the note that was started, so a
	// note-off finds its voice even if the transpose changed in between.
	held map[[2]int]int
}

func newController(props *audio.Props, organ *audio.Organ, transpose int) *controller {
	return &controller{
		organ:     organ,
		transpose: props.MustRegister(propTranspose, audio.IntRange(-48, 48), transpose),
	}
}

func (c *controller) addSource(name string, q *midi.Queue) {
	c.sources = append(c.sources, &controlSource{
		name:    name,
		queue:   q,
		decoder: midi.NewDecoder(c.transpose.Load().(int)),
		held:    make(map[[2]int]int),
	})
}

// releaseAll asks the audio goroutine to release every voice at the next tick.
// Partially received messages are dropped as well.
func (c *controller) releaseAll() {
	c.releasing.Store(true)
}

// Tick takes at most one byte from every source.
func (c *controller) Tick() {
	if c.releasing.Swap(false) {
		c.organ.ReleaseAll()
		for _, src := range c.sources {
			src.decoder.Reset()
			clear(src.held)
		}
	}
	transpose := c.transpose.Load().(int)
	for _, src := range c.sources {
		src.decoder.Transpose = transpose
		b, ok := src.queue.Pop()
		if !ok {
			continue
		}
		if ev, ok := src.decoder.Feed(b); ok {
			c.dispatch(src, ev)
		}
	}
}

func (c *controller) dispatch(src *controlSource, ev midi.Event) {
	if c.debug {
		log.Printf("%s: %v", src.name, ev)
	}
	key := [2]int{ev.Channel, ev.Key}
	switch ev.Kind {
	case midi.NoteOn:
		if err := c.organ.NoteOn(ev.Channel, ev.Note); err != nil {
			log.Printf("%s: %v", src.name, err)
			return
		}
		if prev, ok := src.held[key]; ok && prev != ev.Note {
			c.organ.NoteOff(ev.Channel, prev)
		}
		src.held[key] = ev.Note
	case midi.NoteOff:
		note, ok := src.held[key]
		if !ok {
			note = ev.Note
		}
		delete(src.held, key)
		c.organ.NoteOff(ev.Channel, note)
	}
}
