package audio

import (
	"errors"
	"testing"
)

func newTestOrgan(t *testing.T) *Organ {
	t.Helper()
	return NewOrgan(SampleRate, DefaultRegistry())
}

func slotOf(o *Organ, channel, note int) int {
	for _, v := range o.Voices() {
		if v.Channel == channel && v.Note == note {
			return v.Slot
		}
	}
	return -1
}

func sounding(o *Organ) int {
	var n int
	for _, v := range o.Voices() {
		if v.Note != unassigned {
			n++
		}
	}
	return n
}

func TestOrganRetriggerKeepsSlot(t *testing.T) {
	o := newTestOrgan(t)
	if err := o.NoteOn(0, 60); err != nil {
		t.Fatal(err)
	}
	if err := o.NoteOn(0, 64); err != nil {
		t.Fatal(err)
	}
	slot := slotOf(o, 0, 60)
	if slot < 0 {
		t.Fatalf("note 60 not sounding")
	}
	for n := 0; n < 100; n++ {
		o.Next()
	}

	if err := o.NoteOn(0, 60); err != nil {
		t.Fatal(err)
	}
	lru := o.LRU()
	if want, got := slot, lru[len(lru)-1]; want != got {
		t.Errorf("retriggered slot should be most recently used: want %v, got %v (order %v)", want, got, lru)
	}
	if want, got := 2, sounding(o); want != got {
		t.Errorf("retrigger allocated a new voice: want %v sounding, got %v", want, got)
	}
	if want, got := 0.0, o.Voices()[slot].Level; want != got {
		t.Errorf("retrigger should restart the envelope: level %v", got)
	}
}

func TestOrganSameNoteOtherChannel(t *testing.T) {
	o := newTestOrgan(t)
	o.NoteOn(0, 60)
	o.NoteOn(1, 60)
	if want, got := 2, sounding(o); want != got {
		t.Errorf("same note on another channel needs its own voice: want %v, got %v", want, got)
	}
	o.NoteOff(1, 60)
	if got := o.voices[slotOf(o, 0, 60)].env.state; got != stateAttack {
		t.Errorf("note off on channel 1 released channel 0: state %v", got)
	}
	if got := o.voices[slotOf(o, 1, 60)].env.state; got != stateRelease {
		t.Errorf("note off on channel 1 not released: state %v", got)
	}
}

func TestOrganStealsLeastRecentlyUsed(t *testing.T) {
	o := newTestOrgan(t)
	for note := 60; note < 60+numVoices; note++ {
		if err := o.NoteOn(0, note); err != nil {
			t.Fatal(err)
		}
	}
	if want, got := numVoices, sounding(o); want != got {
		t.Fatalf("want %v sounding voices, got %v", want, got)
	}
	for n := 0; n < 3; n++ {
		stolen := 60 + n
		slot := slotOf(o, 0, stolen)
		if want := n; want != slot {
			t.Fatalf("note %d: want slot %v, got %v", stolen, want, slot)
		}
		if err := o.NoteOn(0, 80+n); err != nil {
			t.Fatal(err)
		}
		if got := slotOf(o, 0, stolen); got >= 0 {
			t.Errorf("note %d should have been stolen", stolen)
		}
		if want, got := slot, slotOf(o, 0, 80+n); want != got {
			t.Errorf("note %d: want stolen slot %v, got %v", 80+n, want, got)
		}
		if want, got := numVoices, sounding(o); want != got {
			t.Errorf("want %v sounding voices, got %v", want, got)
		}
	}
}

func TestOrganStealRespectsRetrigger(t *testing.T) {
	o := newTestOrgan(t)
	for note := 60; note < 60+numVoices; note++ {
		o.NoteOn(0, note)
	}
	// note 60 holds the oldest slot until it is played again.
	o.NoteOn(0, 60)
	o.NoteOn(0, 90)
	if slotOf(o, 0, 60) < 0 {
		t.Errorf("retriggered note was stolen")
	}
	if slotOf(o, 0, 61) >= 0 {
		t.Errorf("note 61 should have been stolen")
	}
}

func TestOrganNoteOffUnknownIsNoop(t *testing.T) {
	a := newTestOrgan(t)
	b := newTestOrgan(t)
	for _, o := range []*Organ{a, b} {
		o.NoteOn(0, 60)
		o.NoteOn(0, 67)
	}
	b.NoteOff(0, 62)
	b.NoteOff(3, 60)
	b.NoteOff(0, -1)
	for n := 0; n < 2000; n++ {
		if want, got := a.Next(), b.Next(); want != got {
			t.Fatalf("sample %d: output changed by unmatched note off: want %v, got %v", n, want, got)
		}
	}
}

func TestOrganNoteOffTwice(t *testing.T) {
	o := newTestOrgan(t)
	o.NoteOn(0, 60)
	for n := 0; n < 300; n++ {
		o.Next()
	}
	o.NoteOff(0, 60)
	for n := 0; n < 100; n++ {
		o.Next()
	}
	level := o.Voices()[0].Level
	o.NoteOff(0, 60)
	o.Next()
	if want, got := level-releaseRate, o.Voices()[0].Level; got > want+1e-12 || got < want-1e-12 {
		t.Errorf("second note off changed the release: want level %v, got %v", want, got)
	}
}

func TestOrganReleasedVoiceIsFreed(t *testing.T) {
	o := newTestOrgan(t)
	o.NoteOn(0, 60)
	o.NoteOff(0, 60)
	for n := 0; n < 10; n++ {
		o.Next()
	}
	if want, got := 0, sounding(o); want != got {
		t.Errorf("want %v sounding voices after release, got %v", want, got)
	}
	if want, got := 0.0, o.Next(); want != got {
		t.Errorf("silent organ: want %v, got %v", want, got)
	}
}

func TestOrganNoteRange(t *testing.T) {
	o := newTestOrgan(t)
	for _, note := range []int{-1, NumNotes} {
		if err := o.NoteOn(0, note); !errors.Is(err, ErrNoteRange) {
			t.Errorf("note %d: want ErrNoteRange, got %v", note, err)
		}
	}
	if want, got := 0, sounding(o); want != got {
		t.Errorf("rejected notes must not allocate voices, got %v sounding", got)
	}
}

func TestOrganRegistration(t *testing.T) {
	o := newTestOrgan(t)
	if want, got := 0, o.Registration(); want != got {
		t.Errorf("wrong initial registration: want %v, got %v", want, got)
	}
	if err := o.SetRegistration(2); err != nil {
		t.Fatal(err)
	}
	want := DefaultStops()[2].MixWeights()
	for n := range o.voices {
		if got := o.voices[n].mix; want != got {
			t.Errorf("voice %d: wrong mix weights: want %v, got %v", n, want, got)
		}
	}
	for _, stop := range []int{-1, 5} {
		if err := o.SetRegistration(stop); !errors.Is(err, ErrStopRange) {
			t.Errorf("stop %d: want ErrStopRange, got %v", stop, err)
		}
	}
	if want, got := 2, o.Registration(); want != got {
		t.Errorf("failed registration changed stop: want %v, got %v", want, got)
	}
}

func TestOrganRegistrationKeepsEnvelopes(t *testing.T) {
	o := newTestOrgan(t)
	o.NoteOn(0, 60)
	for n := 0; n < 50; n++ {
		o.Next()
	}
	level := o.Voices()[0].Level
	o.SetRegistration(4)
	if want, got := level, o.Voices()[0].Level; want != got {
		t.Errorf("registration change touched envelope: want %v, got %v", want, got)
	}
}

func TestOrganReleaseAll(t *testing.T) {
	o := newTestOrgan(t)
	for _, note := range []int{60, 64, 67} {
		o.NoteOn(0, note)
	}
	for n := 0; n < 300; n++ {
		o.Next()
	}
	o.ReleaseAll()
	for n := 0; n < 2000; n++ {
		o.Next()
	}
	if want, got := 0, sounding(o); want != got {
		t.Errorf("want %v sounding voices, got %v", want, got)
	}
}

func BenchmarkOrgan(b *testing.B) {
	o := NewOrgan(SampleRate, DefaultRegistry())
	for note := 60; note < 60+numVoices; note++ {
		o.NoteOn(0, note)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Next()
	}
}
