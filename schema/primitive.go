package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies one entry of the closed primitive type table.
type Kind int

const (
	Int8 Kind = iota + 1
	Int16
	Int32
	Int64
	Int
	Uint8
	Uint16
	Uint32
	Uint64
	Uint
	Uintptr
	Float32
	Float64
	Bool
	String
)

var kindNames = map[Kind]string{
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Int:     "int",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Uint:    "uint",
	Uintptr: "uintptr",
	Float32: "float32",
	Float64: "float64",
	Bool:    "bool",
	String:  "string",
}

// String returns the Go spelling of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// GoName returns the identifier of the exported constant for k, as used in
// generated code (schema.Uint8, schema.String, ...).
func (k Kind) GoName() string {
	name, ok := kindNames[k]
	if !ok {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Kinds lists every kind in table order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := Int8; k <= String; k++ {
		out = append(out, k)
	}
	return out
}

// primitive is one row of the registry: the JSON type plus native bounds
// rendered as exact decimal literals. Empty bounds mean "unbounded".
type primitive struct {
	typ      string
	min, max string
}

var registry = map[Kind]primitive{
	Int8:    signed(math.MinInt8, math.MaxInt8),
	Int16:   signed(math.MinInt16, math.MaxInt16),
	Int32:   signed(math.MinInt32, math.MaxInt32),
	Int64:   signed(math.MinInt64, math.MaxInt64),
	Int:     signed(math.MinInt, math.MaxInt),
	Uint8:   unsigned(math.MaxUint8),
	Uint16:  unsigned(math.MaxUint16),
	Uint32:  unsigned(math.MaxUint32),
	Uint64:  unsigned(math.MaxUint64),
	Uint:    unsigned(math.MaxUint),
	Uintptr: unsigned(uint64(^uintptr(0))),
	Float32: float(math.MaxFloat32, 32),
	Float64: float(math.MaxFloat64, 64),
	Bool:    {typ: TypeBoolean},
	String:  {typ: TypeString},
}

func signed(lo, hi int64) primitive {
	return primitive{
		typ: TypeInteger,
		min: strconv.FormatInt(lo, 10),
		max: strconv.FormatInt(hi, 10),
	}
}

func unsigned(hi uint64) primitive {
	return primitive{
		typ: TypeInteger,
		min: "0",
		max: strconv.FormatUint(hi, 10),
	}
}

func float(hi float64, bits int) primitive {
	return primitive{
		typ: TypeNumber,
		min: strconv.FormatFloat(-hi, 'g', -1, bits),
		max: strconv.FormatFloat(hi, 'g', -1, bits),
	}
}

// For returns the schema fragment of a primitive kind. Integer and number
// fragments carry the exact bounds of the native width; platform-width kinds
// (Int, Uint, Uintptr) use the width of the running binary. Every call
// allocates a fresh fragment. For panics on a kind outside the table.
func For(k Kind) *Schema {
	p, ok := registry[k]
	if !ok {
		panic(fmt.Sprintf("schema: unknown primitive kind %d", int(k)))
	}
	s := &Schema{Type: p.typ}
	if p.min != "" {
		s.Minimum = json.Number(p.min)
		s.Maximum = json.Number(p.max)
	}
	return s
}

// LookupKind resolves a predeclared Go identifier to its kind. byte and rune
// resolve to Uint8 and Int32.
func LookupKind(ident string) (Kind, bool) {
	switch ident {
	case "byte":
		return Uint8, true
	case "rune":
		return Int32, true
	}
	for k, name := range kindNames {
		if name == ident {
			return k, true
		}
	}
	return 0, false
}

// ParseKind resolves a kind name as written in configuration. Besides the Go
// spellings accepted by LookupKind it understands the JSON Schema names
// "integer" (Int64), "number" (Float64) and "boolean" (Bool).
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case TypeInteger:
		return Int64, nil
	case TypeNumber:
		return Float64, nil
	case TypeBoolean:
		return Bool, nil
	}
	if k, ok := LookupKind(n); ok {
		return k, nil
	}
	return 0, fmt.Errorf("schema: unknown primitive kind %q", name)
}
