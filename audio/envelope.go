package audio

type envelopeState int

const (
	stateIdle envelopeState = iota
	stateAttack
	stateSustain
	stateRelease
)

const (
	attackRate  = 0.005  // per sample, 200 samples to full volume
	releaseRate = 0.0008 // per sample
	// silenceFloor snaps a releasing envelope to exactly zero.
	silenceFloor = 0.2
)

// envelope is a two segment linear ramp: up to target at attackRate while the
// key is held, down to zero at releaseRate once it is let go.
type envelope struct {
	val         float64
	target      float64
	attackRate  float64
	releaseRate float64
	state       envelopeState
}

func (e *envelope) value() float64 {
	switch e.state {
	case stateAttack:
		e.val += e.attackRate
		if e.val >= e.target {
			e.val = e.target
			e.state = stateSustain
		}
	case stateRelease:
		e.val -= e.releaseRate
		if e.val < silenceFloor && e.val > -silenceFloor {
			e.val = 0
			e.state = stateIdle
		}
	}
	return e.val
}

// startAttack always ramps up from zero, even if the envelope is still sounding.
func (e *envelope) startAttack() {
	e.val = 0
	e.target = 1
	e.attackRate = attackRate
	e.releaseRate = 0
	e.state = stateAttack
}

func (e *envelope) startRelease() {
	e.target = 0
	e.attackRate = 0
	e.releaseRate = releaseRate
	e.state = stateRelease
}
