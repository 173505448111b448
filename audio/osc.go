package audio

import "math"

// osc is a two-pole digital resonator producing one sinusoidal partial.
// The recurrence has no damping term, so rounding lets amplitude and phase
// wander slowly over very long notes.
type osc struct {
	freq  float64 // radians per sample
	amp   float64
	coeff float64 // 2cos(freq)

	// state
	y1, y2 float64 // y[n-1] y[n-2]
}

// set starts a fresh zero-phase sinusoid: the first call to next returns
// amp*sin(freq).
func (o *osc) set(freq, amp float64) {
	o.freq = freq
	o.amp = amp
	o.coeff = 2 * math.Cos(freq)
	o.y1 = 0
	o.y2 = -amp * math.Sin(freq)
}

func (o *osc) next() float64 {
	y := o.coeff*o.y1 - o.y2
	o.y2 = o.y1
	o.y1 = y
	return y
}
