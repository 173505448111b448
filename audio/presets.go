package audio

import (
	"fmt"
	"sort"
)

type Device interface {
	Set(key string, val interface{}) error
	Get(key string) (interface{}, error)
}

type preset map[string]interface{}

var presets = map[string]preset{
	"default": {
		PropGain:      3.,
		PropReverbMix: 0.5,
	},
	"cathedral": {
		PropGain:      2.,
		PropReverbMix: 1.2,
	},
	"dry": {
		PropGain:      3.,
		PropReverbMix: 0.,
	},
}

func LoadPreset(name string, d Device) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset: %v", name)
	}
	for k, v := range p {
		if err := d.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Presets returns the names of all presets in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
