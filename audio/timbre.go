package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const maxIntensity = 1000

var ErrStopRange = errors.New("stop out of range")

// Stop is a named harmonic balance. Intensities run from 0 (silent) to 1000
// and act as a loudness control, not a linear gain.
type Stop struct {
	Name      string
	Harmonics [NumPartials]float64
}

// MixWeights converts the stop's intensities to per-partial gains.
func (s Stop) MixWeights() [NumPartials]float64 {
	var weights [NumPartials]float64
	for n, intensity := range s.Harmonics {
		if intensity > 0 {
			weights[n] = math.Pow(2, intensity/400) / 8
		}
	}
	return weights
}

// Registry is an immutable table of stops, selected by index.
type Registry struct {
	stops []Stop
}

func NewRegistry(stops []Stop) (*Registry, error) {
	if len(stops) == 0 {
		return nil, errors.New("registry needs at least one stop")
	}
	for i, s := range stops {
		for n, intensity := range s.Harmonics {
			if intensity < 0 || intensity > maxIntensity {
				return nil, fmt.Errorf("stop %d (%s): harmonic %d intensity %v not in 0-%d",
					i, s.Name, n, intensity, maxIntensity)
			}
		}
	}
	r := &Registry{stops: make([]Stop, len(stops))}
	copy(r.stops, stops)
	return r, nil
}

// DefaultStops returns the built-in stop table.
func DefaultStops() []Stop {
	return []Stop{
		{Name: "Principal 8'", Harmonics: [NumPartials]float64{500, 700, 500, 400, 200, 100, 0}},
		{Name: "Diapason 8'", Harmonics: [NumPartials]float64{500, 600, 400, 200, 100, 100, 0}},
		{Name: "Clarinet 8'", Harmonics: [NumPartials]float64{800, 0, 800, 0, 800, 400, 0}},
		{Name: "Trumpet 8'", Harmonics: [NumPartials]float64{600, 700, 800, 600, 500, 300, 0}},
		{Name: "Cello 8'", Harmonics: [NumPartials]float64{400, 500, 400, 500, 400, 400, 200}},
	}
}

func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultStops())
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Len() int { return len(r.stops) }

func (r *Registry) Stop(i int) (Stop, error) {
	if i < 0 || i >= len(r.stops) {
		return Stop{}, fmt.Errorf("%w: %d (have %d stops)", ErrStopRange, i, len(r.stops))
	}
	return r.stops[i], nil
}

// Lookup finds a stop by case-insensitive name prefix.
func (r *Registry) Lookup(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	for i, s := range r.stops {
		if strings.HasPrefix(strings.ToLower(s.Name), name) {
			return i, true
		}
	}
	return 0, false
}

func (r *Registry) Stops() []Stop {
	stops := make([]Stop, len(r.stops))
	copy(stops, r.stops)
	return stops
}

// stopFile is the JSON schema for stop tables.
type stopFile struct {
	Stops []struct {
		Name      string    `json:"name"`
		Harmonics []float64 `json:"harmonics"`
	} `json:"stops"`
}

// LoadStops reads a JSON stop table of the form
//
//	{"stops": [{"name": "Flute 8'", "harmonics": [800, 200, 0, 0, 0, 0, 0]}]}
func LoadStops(r io.Reader) (*Registry, error) {
	var f stopFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}
	stops := make([]Stop, 0, len(f.Stops))
	for i, entry := range f.Stops {
		if len(entry.Harmonics) != NumPartials {
			return nil, fmt.Errorf("stop %d (%s): want %d harmonics, got %d",
				i, entry.Name, NumPartials, len(entry.Harmonics))
		}
		s := Stop{Name: entry.Name}
		copy(s.Harmonics[:], entry.Harmonics)
		stops = append(stops, s)
	}
	return NewRegistry(stops)
}
