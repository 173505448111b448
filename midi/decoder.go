// Package midi turns a raw MIDI byte stream into note events.
package midi

import "fmt"

const (
	statusNoteOff = 0x8
	statusNoteOn  = 0x9
)

type Kind int

const (
	NoteOff Kind = iota
	NoteOn
)

func (k Kind) String() string {
	if k == NoteOn {
		return "note-on"
	}
	return "note-off"
}

// Event is a decoded note message. Note already includes the transpose offset,
// Key is the note number as received.
type Event struct {
	Kind    Kind
	Channel int
	Key     int
	Note    int
}

func (e Event) String() string {
	return fmt.Sprintf("%v ch=%d note=%d", e.Kind, e.Channel, e.Note)
}

type decoderState int

const (
	awaitingStatus decoderState = iota
	awaitingNote
	awaitingVelocity
)

// Decoder is a state machine over note-on and note-off channel messages.
// Any byte with the high bit set starts a new message, abandoning whatever
// was pending; statuses other than note-on/off are skipped along with their
// data bytes. After a complete message the decoder waits for the next note
// under the same status, so running status works.
type Decoder struct {
	// Transpose is added to every incoming note number.
	Transpose int

	state   decoderState
	command byte
	channel int
	key     int
	note    int
}

func NewDecoder(transpose int) *Decoder {
	return &Decoder{Transpose: transpose}
}

// Feed consumes one byte. It returns an event and true when b completes a
// note message.
func (d *Decoder) Feed(b byte) (Event, bool) {
	if b&0x80 != 0 {
		d.status(b)
		return Event{}, false
	}
	switch d.state {
	case awaitingNote:
		d.key = int(b)
		d.note = d.key + d.Transpose
		d.state = awaitingVelocity
	case awaitingVelocity:
		d.state = awaitingNote
		kind := NoteOff
		if d.command == statusNoteOn && b != 0 {
			kind = NoteOn
		}
		return Event{Kind: kind, Channel: d.channel, Key: d.key, Note: d.note}, true
	}
	return Event{}, false
}

func (d *Decoder) status(b byte) {
	switch cmd := b >> 4; cmd {
	case statusNoteOn, statusNoteOff:
		d.command = cmd
		d.channel = int(b & 0x0f)
		d.state = awaitingNote
	default:
		d.command = 0
		d.state = awaitingStatus
	}
}

// Decode feeds all of p and returns the completed events.
func (d *Decoder) Decode(p []byte) []Event {
	var events []Event
	for _, b := range p {
		if ev, ok := d.Feed(b); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Reset drops any partially received message.
func (d *Decoder) Reset() {
	d.state = awaitingStatus
	d.command = 0
}
