package audio

import (
	"log"
	"math"
	"sync/atomic"
)

const (
	numChannels = 2

	PropGain      = "gain"
	PropReverbMix = "reverb.mix"
	PropStop      = "stop"
)

// Engine runs the organ through its reverb lines and renders interleaved
// stereo frames.
type Engine struct {
	*Props
	organ   *Organ
	reverbs []*Reverb
	gain    *atomic.Value
	mix     *atomic.Value
	stop    *atomic.Value
}

// NewEngine registers the engine's properties on props. The stop property
// starts at the organ's current registration.
func NewEngine(props *Props, organ *Organ, reverbs ...*Reverb) *Engine {
	return &Engine{
		Props:   props,
		organ:   organ,
		reverbs: reverbs,
		gain:    props.MustRegister(PropGain, setFloat64(0, 10), 3.0),
		mix:     props.MustRegister(PropReverbMix, setFloat64(0, 2), 0.5),
		stop:    props.MustRegister(PropStop, IntRange(0, organ.Stops().Len()-1), organ.Registration()),
	}
}

// DefaultReverbs returns a single line of 2500 samples with 0.8 feedback.
func DefaultReverbs() []*Reverb {
	r, err := NewReverb(DefaultReverbCapacity, 2500, 0.8)
	if err != nil {
		panic(err)
	}
	return []*Reverb{r}
}

func (e *Engine) Organ() *Organ { return e.organ }

// Next returns the next mono sample, nominally within [-1, 1].
func (e *Engine) Next() float64 {
	return e.next(e.gain.Load().(float64), e.mix.Load().(float64))
}

func (e *Engine) next(gain, mix float64) float64 {
	dry := e.organ.Next()
	var wet float64
	for _, r := range e.reverbs {
		wet += r.Next(dry)
	}
	return gain*dry + mix*wet
}

// Process mixes one frame of interleaved stereo samples into out. Property
// changes, including a new registration, take effect at frame boundaries.
func (e *Engine) Process(out []int16) {
	if stop := e.stop.Load().(int); stop != e.organ.Registration() {
		if err := e.organ.SetRegistration(stop); err != nil {
			log.Printf("engine: %v", err)
		} else {
			log.Printf("engine: registration %d", stop)
		}
	}
	gain := e.gain.Load().(float64)
	mix := e.mix.Load().(float64)
	for n := 0; n+numChannels <= len(out); n += numChannels {
		sample := e.next(gain, mix)
		for c := 0; c < numChannels; c++ {
			out[n+c] = mix16(out[n+c], sample)
		}
	}
}

const scale = math.MaxInt16

// mix16 adds a float sample to a 16 bit one, saturating at the int16 range.
func mix16(dst int16, sample float64) int16 {
	v := float64(dst) + scale*sample
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
