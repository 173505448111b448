package audio

// Arbiter orders voice slots from least recently used (first) to most
// recently used (last). The order is always a permutation of 0..n-1.
type Arbiter struct {
	order []int
}

func NewArbiter(n int) *Arbiter {
	a := &Arbiter{order: make([]int, n)}
	for i := range a.order {
		a.order[i] = i
	}
	return a
}

// AllocateOldest returns the least recently used slot and marks it as the
// most recently used. The slot may still be sounding.
func (a *Arbiter) AllocateOldest() int {
	slot := a.order[0]
	copy(a.order, a.order[1:])
	a.order[len(a.order)-1] = slot
	return slot
}

// Promote marks slot as the most recently used, keeping the relative order
// of all other slots.
func (a *Arbiter) Promote(slot int) {
	for i, s := range a.order {
		if s == slot {
			copy(a.order[i:], a.order[i+1:])
			a.order[len(a.order)-1] = slot
			return
		}
	}
}

// Order returns a copy of the current ordering.
func (a *Arbiter) Order() []int {
	order := make([]int, len(a.order))
	copy(order, a.order)
	return order
}
