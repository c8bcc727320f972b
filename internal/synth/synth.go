// Package synth turns inspected records into Go source implementing the
// schema.Describer and schema.QueryDescriber capabilities.
package synth

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/mark3labs/struct2openapi/internal/diag"
	"github.com/mark3labs/struct2openapi/internal/inspect"
	"github.com/mark3labs/struct2openapi/internal/typeexpr"
)

// Header opens every generated file.
const Header = "// Code generated by struct2openapi. DO NOT EDIT."

// SchemaImport is the import path of the runtime package generated code uses.
const SchemaImport = "github.com/mark3labs/struct2openapi/schema"

// Options tune synthesis.
type Options struct {
	Types typeexpr.Options
}

// Output is a synthesized source file.
type Output struct {
	Package string
	Records []string
	Source  []byte
}

// Synthesize classifies every field of pkg's records and renders the
// generated file. Any diagnostic aborts synthesis.
func Synthesize(pkg *inspect.Package, opts Options) (*Output, error) {
	if pkg == nil {
		return nil, errors.New("synth: nil package")
	}
	if len(pkg.Records) == 0 {
		return nil, fmt.Errorf("synth: no records selected in package %s", pkg.Name)
	}

	var diags diag.List
	records := make([]recordData, 0, len(pkg.Records))
	for _, r := range pkg.Records {
		rd, ok := classifyRecord(r, opts.Types, &diags)
		if ok {
			records = append(records, rd)
		}
	}
	checkRecursion(records, &diags)
	imports := collectImports(records, &diags)

	diags.Sort()
	if err := diags.Err(); err != nil {
		return nil, err
	}

	src, err := render(fileData{Header: Header, Package: pkg.Name, Imports: imports, Records: records})
	if err != nil {
		return nil, err
	}
	out := &Output{Package: pkg.Name, Source: src}
	for _, r := range records {
		out.Records = append(out.Records, r.Name)
	}
	return out, nil
}

type recordData struct {
	Name     string
	Required []string
	Fields   []fieldData

	rec inspect.Record
}

type fieldData struct {
	Name     string
	Required bool
	Expr     string

	typ *typeexpr.Expr
}

func classifyRecord(r inspect.Record, opts typeexpr.Options, diags *diag.List) (recordData, bool) {
	rd := recordData{Name: r.Name, rec: r}
	opts.Qualifiers = make(map[string]string, len(r.Imports))
	for name, imp := range r.Imports {
		opts.Qualifiers[name] = imp.Package
	}
	ok := true
	for _, f := range r.Fields {
		typ, err := typeexpr.FromAST(f.Expr, opts)
		if err != nil {
			diags.Add(diag.Errorf(diag.UnsupportedType, f.Pos, "field %s.%s: %v", r.Name, f.GoName, err))
			ok = false
			continue
		}
		fd := fieldData{Name: f.Name, Required: typ.Required(), Expr: fragment(typ), typ: typ}
		if fd.Required {
			rd.Required = append(rd.Required, f.Name)
		}
		rd.Fields = append(rd.Fields, fd)
	}
	return rd, ok
}

// fragment renders the expression building the schema of e. Optional
// markers only affect the required set, so they render their element.
func fragment(e *typeexpr.Expr) string {
	switch e.Class {
	case typeexpr.Primitive:
		return "schema.For(schema." + e.Kind.GoName() + ")"
	case typeexpr.Sequence:
		return "schema.ArrayOf(" + fragment(e.Elem) + ")"
	case typeexpr.Optional:
		return fragment(e.Elem)
	case typeexpr.Nested:
		return "schema.Of[" + e.Name + "]()"
	}
	panic(fmt.Sprintf("synth: unclassified expression %q", e.Raw))
}

// checkRecursion reports records that contain themselves through local
// nested references. Their schemas are inlined, so construction would not
// terminate.
func checkRecursion(records []recordData, diags *diag.List) {
	byName := make(map[string]int, len(records))
	for i, r := range records {
		byName[r.Name] = i
	}
	edges := make([][]int, len(records))
	for i, r := range records {
		seen := map[int]bool{}
		for _, f := range r.Fields {
			f.typ.Walk(func(e *typeexpr.Expr) {
				if e.Class != typeexpr.Nested || e.Qualifier != "" {
					return
				}
				if j, ok := byName[e.Name]; ok && !seen[j] {
					seen[j] = true
					edges[i] = append(edges[i], j)
				}
			})
		}
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(records))
	var visit func(i int, path []string)
	visit = func(i int, path []string) {
		state[i] = active
		path = append(path, records[i].Name)
		for _, j := range edges[i] {
			switch state[j] {
			case active:
				cycle := append([]string{}, path[indexOf(path, records[j].Name):]...)
				cycle = append(cycle, records[j].Name)
				diags.Add(diag.Errorf(diag.RecursiveRecord, records[j].rec.Pos,
					"type %s is recursive (%s): schemas are inlined and cannot refer to themselves",
					records[j].Name, strings.Join(cycle, " -> ")))
			case unvisited:
				visit(j, path)
			}
		}
		state[i] = done
	}
	for i := range records {
		if state[i] == unvisited {
			visit(i, nil)
		}
	}
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return 0
}

type importData struct {
	Name string // empty unless the import needs an explicit name
	Path string
}

// collectImports resolves the package qualifiers used by nested references
// against the imports of each record's declaring file.
func collectImports(records []recordData, diags *diag.List) []importData {
	byPath := map[string]importData{SchemaImport: {Path: SchemaImport}}
	byName := map[string]string{"schema": SchemaImport}

	for _, r := range records {
		for _, f := range r.Fields {
			f.typ.Walk(func(e *typeexpr.Expr) {
				if e.Class != typeexpr.Nested || e.Qualifier == "" {
					return
				}
				imp, ok := r.rec.Imports[e.Qualifier]
				if !ok {
					diags.Add(diag.Errorf(diag.UnknownType, r.rec.Pos,
						"type %s: package %s of %s is not imported", r.Name, e.Qualifier, e.Raw))
					return
				}
				if prev, ok := byName[imp.Name]; ok && prev != imp.Path {
					diags.Add(diag.Errorf(diag.UnknownType, r.rec.Pos,
						"type %s: package name %s refers to both %q and %q", r.Name, imp.Name, prev, imp.Path))
					return
				}
				byName[imp.Name] = imp.Path
				d := importData{Path: imp.Path}
				if imp.Explicit {
					d.Name = imp.Name
				}
				byPath[imp.Path] = d
			})
		}
	}

	out := make([]importData, 0, len(byPath))
	for _, d := range byPath {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

type fileData struct {
	Header  string
	Package string
	Imports []importData
	Records []recordData
}

var fileTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"quote":    strconv.Quote,
	"required": requiredLiteral,
}).Parse(`{{.Header}}

package {{.Package}}

import (
{{- range .Imports}}
	{{if .Name}}{{.Name}} {{end}}{{quote .Path}}
{{- end}}
)
{{range .Records}}
// JSONSchema describes {{.Name}} as an object schema.
func ({{.Name}}) JSONSchema() *schema.Schema {
	return schema.Object(
		{{required .Required}},
{{- range .Fields}}
		schema.Property{Name: {{quote .Name}}, Schema: {{.Expr}}},
{{- end}}
	)
}

// QueryParameters describes {{.Name}} as query string parameters.
func ({{.Name}}) QueryParameters() []schema.Parameter {
	return []schema.Parameter{
{{- range .Fields}}
		{Name: {{quote .Name}}, In: schema.InQuery, Required: {{.Required}}, Schema: {{.Expr}}},
{{- end}}
	}
}
{{end}}`))

func requiredLiteral(names []string) string {
	if len(names) == 0 {
		return "nil"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

func render(data fileData) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("synth: render %s: %w", data.Package, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("synth: format %s: %w", data.Package, err)
	}
	return src, nil
}
