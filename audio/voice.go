package audio

import "math"

const (
	// NumPartials is the number of oscillators per voice: the fundamental
	// followed by harmonics 2x through 7x.
	NumPartials = 7

	// partialAmp is the fixed amplitude of every partial, independent of the
	// registration's mix weights.
	partialAmp = 1.0 / 32

	unassigned = -1
)

// Voice is one slot of the organ's pool. It is created once and
// re-parameterized for every note it plays.
type Voice struct {
	sampleRate float64
	partials   [NumPartials]osc
	mix        [NumPartials]float64
	env        envelope
	note       int
	channel    int
}

func NewVoice(sampleRate float64) *Voice {
	v := &Voice{}
	v.init(sampleRate)
	return v
}

func (v *Voice) init(sampleRate float64) {
	v.sampleRate = sampleRate
	v.note = unassigned
}

// Trigger tunes all partials to integer multiples of freq (Hz) and starts
// a new attack.
func (v *Voice) Trigger(channel, note int, freq float64) {
	w := 2 * math.Pi * freq / v.sampleRate
	for n := range v.partials {
		v.partials[n].set(float64(n+1)*w, partialAmp)
	}
	v.env.startAttack()
	v.channel = channel
	v.note = note
}

// Retrigger restarts the attack from zero without touching the oscillators.
func (v *Voice) Retrigger() {
	v.env.startAttack()
}

func (v *Voice) Release() {
	v.env.startRelease()
}

func (v *Voice) SetMix(weights [NumPartials]float64) {
	v.mix = weights
}

// Next returns the next sample: the weighted sum of all partials scaled by
// the envelope.
func (v *Voice) Next() float64 {
	var sum float64
	for n := range v.partials {
		sum += v.partials[n].next() * v.mix[n]
	}
	amp := v.env.value()
	if v.env.state == stateIdle {
		v.note = unassigned
	}
	return sum * amp
}

// Note returns the note the voice is sounding or releasing, or -1.
func (v *Voice) Note() int { return v.note }

func (v *Voice) Channel() int { return v.channel }

// Level returns the current envelope amplitude.
func (v *Voice) Level() float64 { return v.env.val }

func (v *Voice) active() bool { return v.note != unassigned }
