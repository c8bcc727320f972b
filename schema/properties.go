package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Properties is an insertion-ordered map of property name to fragment. It
// marshals to a JSON object whose keys follow declaration order, which keeps
// generated documents stable across runs.
type Properties struct {
	names  []string
	byName map[string]*Schema
}

// NewProperties returns a Properties holding props in order. A later entry
// with a repeated name replaces the earlier value in place.
func NewProperties(props ...Property) *Properties {
	p := &Properties{byName: make(map[string]*Schema, len(props))}
	for _, prop := range props {
		p.Set(prop.Name, prop.Schema)
	}
	return p
}

// Set inserts or replaces a property.
func (p *Properties) Set(name string, s *Schema) {
	if p.byName == nil {
		p.byName = make(map[string]*Schema)
	}
	if _, ok := p.byName[name]; !ok {
		p.names = append(p.names, name)
	}
	p.byName[name] = s
}

// Get returns the fragment stored under name.
func (p *Properties) Get(name string) (*Schema, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := p.byName[name]
	return s, ok
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Names returns the property names in order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *Properties) equal(o *Properties) bool {
	if (p == nil) != (o == nil) {
		return false
	}
	if p.Len() != o.Len() {
		return false
	}
	for i, name := range p.Names() {
		if o.names[i] != name {
			return false
		}
		if !Equal(p.byName[name], o.byName[name]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the properties as an object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.byName[name])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
