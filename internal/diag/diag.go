// Package diag carries build-time diagnostics raised while inspecting and
// synthesizing record types. A diagnostic is fatal: the generator writes no
// output when any is reported.
package diag

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Code categorizes a diagnostic.
type Code string

const (
	ParseError      Code = "parse-error"
	NotStruct       Code = "not-struct"
	NoNamedFields   Code = "no-named-fields"
	EmbeddedField   Code = "embedded-field"
	GenericRecord   Code = "generic-record"
	UnsupportedType Code = "unsupported-type"
	RecursiveRecord Code = "recursive-record"
	UnknownType     Code = "unknown-type"
	DuplicateField  Code = "duplicate-field"
)

// Diagnostic is a positioned build-time error.
type Diagnostic struct {
	Code    Code
	Pos     token.Position
	Message string
}

func (d *Diagnostic) Error() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", d.Pos, d.Message)
	}
	return d.Message
}

// Errorf builds a diagnostic.
func Errorf(code Code, pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// List collects diagnostics. A non-empty List is an error.
type List []*Diagnostic

// Add appends d.
func (l *List) Add(d *Diagnostic) {
	*l = append(*l, d)
}

// Sort orders diagnostics by file, line and column.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Err returns l as an error, or nil when it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Has reports whether any diagnostic in l carries code.
func (l List) Has(code Code) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}
