// Package typeexpr classifies Go type expressions into the four shapes the
// synthesizer understands: primitive, optional, sequence and nested record.
// Classification is syntactic. Names are never resolved, so a nested record
// that does not implement the schema capabilities is caught when the
// generated code is compiled.
package typeexpr

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"
	"strings"

	"github.com/mark3labs/struct2openapi/schema"
)

// Class is the root shape of an expression.
type Class int

const (
	Primitive Class = iota + 1
	Optional
	Sequence
	Nested
)

func (c Class) String() string {
	switch c {
	case Primitive:
		return "primitive"
	case Optional:
		return "optional"
	case Sequence:
		return "sequence"
	case Nested:
		return "nested"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ErrUnsupported is returned for expressions with no schema shape, such as
// maps, interfaces, channels and functions.
var ErrUnsupported = errors.New("unsupported type expression")

// Expr is a classified type expression.
type Expr struct {
	Class Class
	// Kind is set for Primitive.
	Kind schema.Kind
	// Elem is set for Optional and Sequence.
	Elem *Expr
	// Name is set for Nested: the record name, package-qualified when the
	// expression was (e.g. "geo.Point").
	Name string
	// Qualifier is the package identifier of a qualified Nested name.
	Qualifier string
	// Raw is the source text of the expression.
	Raw string
}

// Options tune classification.
type Options struct {
	// OptionalWrappers are generic type names (bare or package-qualified)
	// whose single type argument is treated as an optional value, e.g.
	// "Optional" matches Optional[T] and opt.Optional[T].
	OptionalWrappers []string
	// TypeMappings map a type name to a primitive kind, e.g. "time.Time" to
	// schema.String. They are consulted before nested classification.
	TypeMappings map[string]schema.Kind
	// Qualifiers map the package identifiers used in source to the names
	// the packages declare, so that tm.Time matches a "time.Time" mapping
	// under import tm "time".
	Qualifiers map[string]string
}

// DefaultOptionalWrappers is used when Options.OptionalWrappers is nil.
var DefaultOptionalWrappers = []string{"Optional", "Option", "Nullable"}

// Parse classifies the type expression src.
func Parse(src string, opts Options) (*Expr, error) {
	e, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}
	return FromAST(e, opts)
}

// FromAST classifies a parsed type expression.
func FromAST(e ast.Expr, opts Options) (*Expr, error) {
	if opts.OptionalWrappers == nil {
		opts.OptionalWrappers = DefaultOptionalWrappers
	}
	return classify(e, opts)
}

func classify(e ast.Expr, opts Options) (*Expr, error) {
	raw := types.ExprString(e)

	switch t := e.(type) {
	case *ast.ParenExpr:
		inner, err := classify(t.X, opts)
		if err != nil {
			return nil, err
		}
		inner.Raw = raw
		return inner, nil

	case *ast.StarExpr:
		elem, err := classify(t.X, opts)
		if err != nil {
			return nil, err
		}
		return &Expr{Class: Optional, Elem: elem, Raw: raw}, nil

	case *ast.ArrayType:
		elem, err := classify(t.Elt, opts)
		if err != nil {
			return nil, err
		}
		return &Expr{Class: Sequence, Elem: elem, Raw: raw}, nil

	case *ast.Ident:
		if k, ok := opts.TypeMappings[t.Name]; ok {
			return &Expr{Class: Primitive, Kind: k, Raw: raw}, nil
		}
		if k, ok := schema.LookupKind(t.Name); ok {
			return &Expr{Class: Primitive, Kind: k, Raw: raw}, nil
		}
		switch t.Name {
		case "any", "error", "complex64", "complex128":
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, raw)
		}
		return &Expr{Class: Nested, Name: t.Name, Raw: raw}, nil

	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, raw)
		}
		if pkgName, ok := opts.Qualifiers[pkg.Name]; ok {
			if k, ok := opts.TypeMappings[pkgName+"."+t.Sel.Name]; ok {
				return &Expr{Class: Primitive, Kind: k, Raw: raw}, nil
			}
		}
		if k, ok := opts.TypeMappings[raw]; ok {
			return &Expr{Class: Primitive, Kind: k, Raw: raw}, nil
		}
		return &Expr{Class: Nested, Name: raw, Qualifier: pkg.Name, Raw: raw}, nil

	case *ast.IndexExpr:
		if isWrapper(t.X, opts.OptionalWrappers) {
			elem, err := classify(t.Index, opts)
			if err != nil {
				return nil, err
			}
			return &Expr{Class: Optional, Elem: elem, Raw: raw}, nil
		}
		return nil, fmt.Errorf("%w: generic instantiation %s", ErrUnsupported, raw)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupported, raw)
}

func isWrapper(base ast.Expr, wrappers []string) bool {
	name := types.ExprString(base)
	short := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		short = name[i+1:]
	}
	for _, w := range wrappers {
		if w == name || w == short {
			return true
		}
	}
	return false
}

// Required reports whether a field of this type belongs to the record's
// required set: only a top-level optional exempts it.
func (e *Expr) Required() bool {
	return e.Class != Optional
}

// Unwrap strips top-level optional markers.
func (e *Expr) Unwrap() *Expr {
	for e.Class == Optional {
		e = e.Elem
	}
	return e
}

// Walk calls fn for e and every nested element, outermost first.
func (e *Expr) Walk(fn func(*Expr)) {
	for cur := e; cur != nil; cur = cur.Elem {
		fn(cur)
	}
}

// String renders the classification tree, e.g. sequence(optional(uint8)).
func (e *Expr) String() string {
	switch e.Class {
	case Primitive:
		return e.Kind.String()
	case Nested:
		return "nested(" + e.Name + ")"
	case Optional, Sequence:
		return e.Class.String() + "(" + e.Elem.String() + ")"
	}
	return e.Raw
}
