package audio

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Props stores engine settings that can be updated from the console while the
// audio loop reads them without locks. All properties should be registered
// before any reads take place.
type Props struct {
	properties map[string]*atomic.Value
	setters    map[string]Setter
}

func NewProps() *Props {
	return &Props{
		properties: make(map[string]*atomic.Value),
		setters:    make(map[string]Setter),
	}
}

// Set updates the property with value. The key has to be registered first using Register.
func (p *Props) Set(key string, value interface{}) error {
	prop, ok := p.properties[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	set, ok := p.setters[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	if err := set(value, prop); err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

func (p *Props) Get(key string) (interface{}, error) {
	prop, ok := p.properties[key]
	if !ok {
		return nil, fmt.Errorf("unknown property %s", key)
	}
	return prop.Load(), nil
}

// Keys returns the registered property names in sorted order.
func (p *Props) Keys() []string {
	keys := make([]string, 0, len(p.properties))
	for k := range p.properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register adds a new property.
func (p *Props) Register(key string, set Setter, init interface{}) (*atomic.Value, error) {
	if _, ok := p.properties[key]; ok {
		return nil, fmt.Errorf("property %s already registered", key)
	}
	var prop atomic.Value
	if err := set(init, &prop); err != nil {
		return nil, fmt.Errorf("register %s: %w", key, err)
	}
	p.properties[key] = &prop
	p.setters[key] = set
	return &prop, nil
}

func (p *Props) MustRegister(key string, set Setter, init interface{}) *atomic.Value {
	if prop, err := p.Register(key, set, init); err != nil {
		panic(err)
	} else {
		return prop
	}
}

// Setter validates v and stores it in dest.
type Setter func(v interface{}, dest *atomic.Value) error

func setFloat64(min, max float64) Setter {
	return func(v interface{}, dest *atomic.Value) error {
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case int:
			f = float64(n)
		default:
			return fmt.Errorf("value is not a float64: %v", v)
		}
		if f < min || f > max {
			return fmt.Errorf("property value is not in valid range %v - %v: %v", min, max, f)
		}
		dest.Store(f)
		return nil
	}
}

// IntRange returns a Setter accepting whole numbers between min and max.
func IntRange(min, max int) Setter {
	return func(v interface{}, dest *atomic.Value) error {
		var n int
		switch i := v.(type) {
		case int:
			n = i
		case float64:
			if i != float64(int(i)) {
				return fmt.Errorf("value is not an int: %v", v)
			}
			n = int(i)
		default:
			return fmt.Errorf("value is not an int: %v", v)
		}
		if n < min || n > max {
			return fmt.Errorf("property value is not in valid range %v - %v: %v", min, max, n)
		}
		dest.Store(n)
		return nil
	}
}
