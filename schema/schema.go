// Package schema is the runtime half of struct2openapi. It holds the JSON
// Schema fragment model, the primitive type registry, and the capability
// interfaces implemented by generated code.
//
// Generated code looks like this:
//
//	func (Pet) JSONSchema() *schema.Schema {
//		return schema.Object(
//			[]string{"id", "name"},
//			schema.Property{Name: "id", Schema: schema.For(schema.Int64)},
//			schema.Property{Name: "name", Schema: schema.For(schema.String)},
//			schema.Property{Name: "tags", Schema: schema.ArrayOf(schema.For(schema.String))},
//		)
//	}
//
// Fragments are rebuilt on every call and never shared, so callers may
// mutate what they receive.
package schema

import (
	"encoding/json"
	"slices"
)

// JSON Schema type names used in fragments.
const (
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeString  = "string"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Schema is a JSON Schema fragment describing the shape of a value.
// Minimum and Maximum hold exact decimal literals so that 64-bit bounds
// survive serialization.
type Schema struct {
	Type       string      `json:"type"`
	Minimum    json.Number `json:"minimum,omitempty"`
	Maximum    json.Number `json:"maximum,omitempty"`
	Items      *Schema     `json:"items,omitempty"`
	Required   []string    `json:"required,omitempty"`
	Properties *Properties `json:"properties,omitempty"`
}

// Property is one named entry of an object fragment.
type Property struct {
	Name   string
	Schema *Schema
}

// ArrayOf wraps an element fragment as {type: "array", items: ...}. Slices
// and fixed-size arrays both map here.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// Object builds a record fragment. Properties keep the given order. When
// required is empty the fragment has no "required" key at all.
func Object(required []string, props ...Property) *Schema {
	s := &Schema{
		Type:       TypeObject,
		Properties: NewProperties(props...),
	}
	if len(required) > 0 {
		s.Required = slices.Clone(required)
	}
	return s
}

// Equal reports whether two fragments are structurally identical, including
// property order.
func Equal(a, b *Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Minimum != b.Minimum || a.Maximum != b.Maximum {
		return false
	}
	if !slices.Equal(a.Required, b.Required) {
		return false
	}
	if !Equal(a.Items, b.Items) {
		return false
	}
	return a.Properties.equal(b.Properties)
}
