package audio

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestMixWeights(t *testing.T) {
	s := Stop{Harmonics: [NumPartials]float64{400, 0, 800, 1000, 0, 1, 0}}
	want := [NumPartials]float64{
		0.25,
		0,
		0.5,
		math.Pow(2, 2.5) / 8,
		0,
		math.Pow(2, 1.0/400) / 8,
		0,
	}
	got := s.MixWeights()
	for n := range want {
		if math.Abs(want[n]-got[n]) > 1e-12 {
			t.Errorf("harmonic %d: want %v, got %v", n, want[n], got[n])
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	if want, got := 5, r.Len(); want != got {
		t.Fatalf("want %v stops, got %v", want, got)
	}
	s, err := r.Stop(3)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := "Trumpet 8'", s.Name; want != got {
		t.Errorf("want %q, got %q", want, got)
	}
	if _, err := r.Stop(5); !errors.Is(err, ErrStopRange) {
		t.Errorf("want ErrStopRange, got %v", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()
	for name, want := range map[string]int{
		"principal": 0,
		"CLAR":      2,
		" cello ":   4,
	} {
		got, ok := r.Lookup(name)
		if !ok || want != got {
			t.Errorf("lookup %q: want %v, got %v (found %v)", name, want, got, ok)
		}
	}
	for _, name := range []string{"", "oboe"} {
		if _, ok := r.Lookup(name); ok {
			t.Errorf("lookup %q should fail", name)
		}
	}
}

func TestRegistryIsImmutable(t *testing.T) {
	stops := DefaultStops()
	r, err := NewRegistry(stops)
	if err != nil {
		t.Fatal(err)
	}
	stops[0].Harmonics[0] = 0
	r.Stops()[0].Harmonics[0] = 0
	s, _ := r.Stop(0)
	if want, got := 500.0, s.Harmonics[0]; want != got {
		t.Errorf("registry changed through caller's slice: want %v, got %v", want, got)
	}
}

func TestLoadStops(t *testing.T) {
	input := `{
  "stops": [
    {"name": "Flute 8'", "harmonics": [800, 200, 0, 0, 0, 0, 0]},
    {"name": "Mixture", "harmonics": [300, 300, 600, 300, 600, 300, 600]}
  ]
}`
	r, err := LoadStops(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 2, r.Len(); want != got {
		t.Fatalf("want %v stops, got %v", want, got)
	}
	s, _ := r.Stop(1)
	if want, got := "Mixture", s.Name; want != got {
		t.Errorf("want %q, got %q", want, got)
	}
	if want, got := 600.0, s.Harmonics[6]; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestLoadStopsErrors(t *testing.T) {
	for _, input := range []string{
		`{"stops": [`,
		`{"stops": []}`,
		`{"stops": [{"name": "short", "harmonics": [1, 2, 3]}]}`,
		`{"stops": [{"name": "loud", "harmonics": [1001, 0, 0, 0, 0, 0, 0]}]}`,
		`{"stops": [{"name": "negative", "harmonics": [-1, 0, 0, 0, 0, 0, 0]}]}`,
	} {
		if _, err := LoadStops(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}
