// Package inspect walks the Go source of one package directory and extracts
// the field descriptors of the record types selected for generation.
package inspect

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/mark3labs/struct2openapi/internal/diag"
)

// Directive marks a type for generation when it appears in the type's doc
// comment.
const Directive = "//struct2openapi:generate"

// Package is the inspected form of a source directory.
type Package struct {
	Name    string
	Dir     string
	Files   []string
	Records []Record
}

// Record is a struct type selected for generation.
type Record struct {
	Name    string
	Doc     string
	Pos     token.Position
	Fields  []Field
	Imports map[string]Import // by package identifier, from the declaring file
}

// Field is the descriptor of one named struct field, in declaration order.
type Field struct {
	Name     string // wire name: tag value when present, else GoName
	GoName   string
	TypeExpr string // source text of the declared type
	Expr     ast.Expr
	Pos      token.Position
}

// Import is one import of the file declaring a record.
type Import struct {
	Name string // identifier the file refers to the package by
	Path string
	// Explicit is true when the import spec carries its own name.
	Explicit bool
	// Package is the name the imported package declares, guessed from Path.
	Package string
}

// Options control record selection and field naming.
type Options struct {
	// TagKey is the struct tag consulted for field names. Default "json".
	TagKey string
	// All selects every exported struct in the package.
	All bool
	// IncludeTypes selects types by name in addition to the directive.
	IncludeTypes []string
	// ExcludeTypes removes types from the selection.
	ExcludeTypes []string
	// SkipFiles are base names ignored while parsing, typically the
	// generator's own output file.
	SkipFiles []string
}

// Load parses the non-test Go files of dir and returns the selected records.
// Structural problems are reported together as a diag.List.
func Load(dir string, opts Options) (*Package, error) {
	if opts.TagKey == "" {
		opts.TagKey = "json"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", abs, err)
	}

	skip := make(map[string]bool, len(opts.SkipFiles))
	for _, f := range opts.SkipFiles {
		skip[f] = true
	}

	fset := token.NewFileSet()
	pkg := &Package{Dir: abs}
	var (
		files []*ast.File
		diags diag.List
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || skip[name] {
			continue
		}
		path := filepath.Join(abs, name)
		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if pkg.Name == "" {
			pkg.Name = f.Name.Name
		} else if f.Name.Name != pkg.Name {
			diags.Add(diag.Errorf(diag.ParseError, fset.Position(f.Name.Pos()),
				"package %s conflicts with package %s", f.Name.Name, pkg.Name))
			continue
		}
		pkg.Files = append(pkg.Files, path)
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Go source files in %s", abs)
	}

	in := &inspector{fset: fset, opts: opts, diags: &diags}
	in.collect(files)
	pkg.Records = in.records()

	diags.Sort()
	if err := diags.Err(); err != nil {
		return nil, err
	}
	return pkg, nil
}

type inspector struct {
	fset  *token.FileSet
	opts  Options
	diags *diag.List

	// decls holds every type spec of the package by name.
	decls map[string]typeDecl
}

type typeDecl struct {
	spec *ast.TypeSpec
	doc  *ast.CommentGroup
	file *ast.File
}

func (in *inspector) collect(files []*ast.File) {
	in.decls = make(map[string]typeDecl)
	for _, f := range files {
		for _, d := range f.Decls {
			gen, ok := d.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, s := range gen.Specs {
				spec := s.(*ast.TypeSpec)
				doc := spec.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				in.decls[spec.Name.Name] = typeDecl{spec: spec, doc: doc, file: f}
			}
		}
	}
}

// records returns the selected records in source order.
func (in *inspector) records() []Record {
	include := make(map[string]bool, len(in.opts.IncludeTypes))
	for _, name := range in.opts.IncludeTypes {
		include[name] = true
		if _, ok := in.decls[name]; !ok {
			in.diags.Add(diag.Errorf(diag.UnknownType, token.Position{}, "type %s not found in package", name))
		}
	}
	exclude := make(map[string]bool, len(in.opts.ExcludeTypes))
	for _, name := range in.opts.ExcludeTypes {
		exclude[name] = true
	}

	var selected []typeDecl
	for _, d := range in.decls {
		name := d.spec.Name.Name
		if exclude[name] {
			continue
		}
		switch {
		case hasDirective(d.doc), include[name]:
		case in.opts.All && ast.IsExported(name) && isStruct(d.spec):
		default:
			continue
		}
		selected = append(selected, d)
	}
	sort.Slice(selected, func(i, j int) bool {
		a, b := in.fset.Position(selected[i].spec.Pos()), in.fset.Position(selected[j].spec.Pos())
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Offset < b.Offset
	})

	out := make([]Record, 0, len(selected))
	for _, d := range selected {
		if r, ok := in.record(d); ok {
			out = append(out, r)
		}
	}
	return out
}

func (in *inspector) record(d typeDecl) (Record, bool) {
	spec := d.spec
	name := spec.Name.Name
	pos := in.fset.Position(spec.Pos())

	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		in.diags.Add(diag.Errorf(diag.GenericRecord, pos,
			"type %s is generic: only named-field record types supported", name))
		return Record{}, false
	}
	st, ok := spec.Type.(*ast.StructType)
	if !ok || spec.Assign.IsValid() {
		in.diags.Add(diag.Errorf(diag.NotStruct, pos,
			"type %s is not a struct: only named-field record types supported", name))
		return Record{}, false
	}

	r := Record{
		Name:    name,
		Doc:     commentText(d.doc),
		Pos:     pos,
		Imports: imports(d.file),
	}
	failed := false
	wires := make(map[string]string)
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			in.diags.Add(diag.Errorf(diag.EmbeddedField, in.fset.Position(f.Pos()),
				"type %s embeds %s: only named-field record types supported", name, types.ExprString(f.Type)))
			failed = true
			continue
		}
		tagName, skipField := in.tagName(f.Tag)
		for _, ident := range f.Names {
			if skipField || !ast.IsExported(ident.Name) {
				continue
			}
			wire := ident.Name
			if tagName != "" && len(f.Names) == 1 {
				wire = tagName
			}
			fpos := in.fset.Position(ident.Pos())
			if prev, ok := wires[wire]; ok {
				in.diags.Add(diag.Errorf(diag.DuplicateField, fpos,
					"type %s: fields %s and %s both use the name %q", name, prev, ident.Name, wire))
				failed = true
				continue
			}
			wires[wire] = ident.Name
			r.Fields = append(r.Fields, Field{
				Name:     wire,
				GoName:   ident.Name,
				TypeExpr: types.ExprString(f.Type),
				Expr:     f.Type,
				Pos:      fpos,
			})
		}
	}
	if failed {
		return Record{}, false
	}
	if len(r.Fields) == 0 {
		in.diags.Add(diag.Errorf(diag.NoNamedFields, pos,
			"type %s has no named fields: only named-field record types supported", name))
		return Record{}, false
	}
	return r, true
}

// tagName returns the field name carried by the configured tag key and
// whether the field is excluded with "-".
func (in *inspector) tagName(lit *ast.BasicLit) (string, bool) {
	if lit == nil {
		return "", false
	}
	raw := strings.Trim(lit.Value, "`")
	v, ok := reflect.StructTag(raw).Lookup(in.opts.TagKey)
	if !ok {
		return "", false
	}
	if v == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(v, ",")
	return name, false
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == Directive {
			return true
		}
	}
	return false
}

func isStruct(spec *ast.TypeSpec) bool {
	_, ok := spec.Type.(*ast.StructType)
	return ok && !spec.Assign.IsValid()
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

func imports(f *ast.File) map[string]Import {
	out := make(map[string]Import, len(f.Imports))
	for _, spec := range f.Imports {
		path := strings.Trim(spec.Path.Value, `"`)
		imp := Import{Path: path, Package: defaultName(path)}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
			imp.Explicit = true
		} else {
			imp.Name = imp.Package
		}
		if imp.Name == "_" || imp.Name == "." {
			continue
		}
		out[imp.Name] = imp
	}
	return out
}

// defaultName guesses the package identifier of an unnamed import from its
// path: the last element, skipping a major-version suffix.
func defaultName(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	if majorVersion.MatchString(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	name = strings.TrimPrefix(name, "go-")
	if i := strings.IndexAny(name, ".-"); i >= 0 {
		name = name[:i]
	}
	return name
}

func commentText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return strings.TrimSpace(cg.Text())
}
