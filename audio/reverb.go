package audio

import "fmt"

// DefaultReverbCapacity is the buffer size used for the built-in reverb lines.
const DefaultReverbCapacity = 32768

// Reverb is a single-tap recirculating delay line (a comb filter). Several
// lines with different lengths can be summed for a denser tail.
type Reverb struct {
	buf      []float64
	length   int
	feedback float64
	in, out  int // write and read positions, length samples apart
}

// NewReverb creates a delay line of length samples inside a buffer of the
// given capacity. length must be positive and less than capacity, feedback
// in [0,1).
func NewReverb(capacity, length int, feedback float64) (*Reverb, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("reverb capacity must be > 0, got %d", capacity)
	}
	if length <= 0 || length >= capacity {
		return nil, fmt.Errorf("reverb length %d not in 1-%d", length, capacity-1)
	}
	if feedback < 0 || feedback >= 1 {
		return nil, fmt.Errorf("reverb feedback %v not in [0,1)", feedback)
	}
	return &Reverb{
		buf:      make([]float64, capacity),
		length:   length,
		feedback: feedback,
		in:       0,
		out:      capacity - length,
	}, nil
}

// Next returns the sample written length samples ago and feeds input plus
// the attenuated output back into the line.
func (r *Reverb) Next(input float64) float64 {
	out := r.buf[r.out]
	r.buf[r.in] = input + out*r.feedback
	r.in = (r.in + 1) % len(r.buf)
	r.out = (r.out + 1) % len(r.buf)
	return out
}

func (r *Reverb) Length() int { return r.length }

func (r *Reverb) Feedback() float64 { return r.feedback }
