package inspect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/struct2openapi/internal/diag"
)

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

const petSource = `package pets

import (
	"time"

	"github.com/google/uuid"
	yaml "gopkg.in/yaml.v3"
)

//struct2openapi:generate
type Pet struct {
	ID       uuid.UUID ` + "`json:\"id\"`" + `
	Name     string    ` + "`json:\"name,omitempty\"`" + `
	Tag      *string
	Born     time.Time ` + "`json:\"born\"`" + `
	Secret   string    ` + "`json:\"-\"`" + `
	internal int
	Node     yaml.Node ` + "`json:\"-\"`" + `
}

// Owner is not annotated.
type Owner struct {
	Name string
}

type helper struct {
	X int
}
`

func TestLoadDirective(t *testing.T) {
	dir := writePackage(t, map[string]string{"pets.go": petSource})

	pkg, err := Load(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, "pets", pkg.Name)
	require.Len(t, pkg.Records, 1)

	rec := pkg.Records[0]
	assert.Equal(t, "Pet", rec.Name)
	assert.Equal(t, 11, rec.Pos.Line)

	var names, goNames, exprs []string
	for _, f := range rec.Fields {
		names = append(names, f.Name)
		goNames = append(goNames, f.GoName)
		exprs = append(exprs, f.TypeExpr)
	}
	assert.Equal(t, []string{"id", "name", "Tag", "born"}, names)
	assert.Equal(t, []string{"ID", "Name", "Tag", "Born"}, goNames)
	assert.Equal(t, []string{"uuid.UUID", "string", "*string", "time.Time"}, exprs)

	assert.Equal(t, Import{Name: "uuid", Path: "github.com/google/uuid", Package: "uuid"}, rec.Imports["uuid"])
	assert.Equal(t, Import{Name: "yaml", Path: "gopkg.in/yaml.v3", Explicit: true, Package: "yaml"}, rec.Imports["yaml"])
	assert.Equal(t, "time", rec.Imports["time"].Path)
}

func TestLoadAllAndExclude(t *testing.T) {
	dir := writePackage(t, map[string]string{"pets.go": petSource})

	pkg, err := Load(dir, Options{All: true})
	require.NoError(t, err)
	require.Len(t, pkg.Records, 2)
	assert.Equal(t, "Pet", pkg.Records[0].Name)
	assert.Equal(t, "Owner", pkg.Records[1].Name)
	assert.Equal(t, "Owner is not annotated.", pkg.Records[1].Doc)

	pkg, err = Load(dir, Options{All: true, ExcludeTypes: []string{"Pet"}})
	require.NoError(t, err)
	require.Len(t, pkg.Records, 1)
	assert.Equal(t, "Owner", pkg.Records[0].Name)
}

func TestLoadIncludeTypes(t *testing.T) {
	dir := writePackage(t, map[string]string{"pets.go": petSource})

	pkg, err := Load(dir, Options{IncludeTypes: []string{"helper"}})
	require.NoError(t, err)
	require.Len(t, pkg.Records, 2)
	assert.Equal(t, "helper", pkg.Records[1].Name)

	_, err = Load(dir, Options{IncludeTypes: []string{"Missing"}})
	var list diag.List
	require.True(t, errors.As(err, &list), err)
	assert.True(t, list.Has(diag.UnknownType))
}

func TestLoadTagKey(t *testing.T) {
	dir := writePackage(t, map[string]string{"a.go": "package a\n\n//struct2openapi:generate\ntype A struct {\n\tX int `json:\"x\" yaml:\"ex\"`\n\tY int `yaml:\"-\"`\n}\n"})

	pkg, err := Load(dir, Options{TagKey: "yaml"})
	require.NoError(t, err)
	require.Len(t, pkg.Records[0].Fields, 1)
	assert.Equal(t, "ex", pkg.Records[0].Fields[0].Name)
}

func TestLoadMultiNameField(t *testing.T) {
	dir := writePackage(t, map[string]string{"a.go": "package a\n\n//struct2openapi:generate\ntype Point struct {\n\tX, Y float64\n}\n"})

	pkg, err := Load(dir, Options{})
	require.NoError(t, err)
	fields := pkg.Records[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "X", fields[0].Name)
	assert.Equal(t, "Y", fields[1].Name)
	assert.Equal(t, "float64", fields[1].TypeExpr)
}

func TestLoadSkipsTestsAndOutput(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"a.go":              "package a\n\n//struct2openapi:generate\ntype A struct{ X int }\n",
		"a_test.go":         "package a_test\n\n//struct2openapi:generate\ntype T struct{ X int }\n",
		"zz_openapi_gen.go": "package a\n\nthis does not parse\n",
	})

	pkg, err := Load(dir, Options{SkipFiles: []string{"zz_openapi_gen.go"}})
	require.NoError(t, err)
	require.Len(t, pkg.Records, 1)
	assert.Len(t, pkg.Files, 1)
}

func TestLoadDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"not struct", "package a\n\n//struct2openapi:generate\ntype Color int\n", diag.NotStruct},
		{"alias", "package a\n\ntype B struct{ X int }\n\n//struct2openapi:generate\ntype A = B\n", diag.NotStruct},
		{"empty", "package a\n\n//struct2openapi:generate\ntype Unit struct{}\n", diag.NoNamedFields},
		{"only skipped", "package a\n\n//struct2openapi:generate\ntype A struct {\n\tx int\n\tY int `json:\"-\"`\n}\n", diag.NoNamedFields},
		{"embedded", "package a\n\ntype B struct{ X int }\n\n//struct2openapi:generate\ntype A struct {\n\tB\n\tY int\n}\n", diag.EmbeddedField},
		{"generic", "package a\n\n//struct2openapi:generate\ntype Box[T any] struct{ V T }\n", diag.GenericRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePackage(t, map[string]string{"a.go": tt.src})
			_, err := Load(dir, Options{})
			require.Error(t, err)

			var list diag.List
			require.True(t, errors.As(err, &list))
			require.Len(t, list, 1)
			assert.Equal(t, tt.code, list[0].Code)
			assert.Contains(t, list[0].Error(), "a.go:")
			assert.Contains(t, list[0].Error(), "only named-field record types supported")
		})
	}
}

func TestLoadReportsAllDiagnostics(t *testing.T) {
	dir := writePackage(t, map[string]string{"a.go": "package a\n\n//struct2openapi:generate\ntype A int\n\n//struct2openapi:generate\ntype B struct{}\n"})

	_, err := Load(dir, Options{})
	var list diag.List
	require.True(t, errors.As(err, &list))
	require.Len(t, list, 2)
	assert.Equal(t, diag.NotStruct, list[0].Code)
	assert.Equal(t, diag.NoNamedFields, list[1].Code)
}

func TestLoadDuplicateWireName(t *testing.T) {
	src := "package a\n\n//struct2openapi:generate\ntype A struct {\n\tX int8   `json:\"v\"`\n\tY string `json:\"v\"`\n\tZ uint8  `json:\"v,omitempty\"`\n}\n"
	dir := writePackage(t, map[string]string{"a.go": src})

	_, err := Load(dir, Options{})
	require.Error(t, err)

	var list diag.List
	require.True(t, errors.As(err, &list))
	require.Len(t, list, 2)
	for _, d := range list {
		assert.Equal(t, diag.DuplicateField, d.Code)
	}
	// reported at the later field
	assert.Equal(t, 6, list[0].Pos.Line)
	assert.Contains(t, list[0].Error(), `fields X and Y both use the name "v"`)
	assert.Equal(t, 7, list[1].Pos.Line)
	assert.Contains(t, list[1].Error(), `fields X and Z both use the name "v"`)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)

	_, err = Load(t.TempDir(), Options{})
	assert.ErrorContains(t, err, "no Go source files")

	dir := writePackage(t, map[string]string{"a.go": "package a\n\ntype {"})
	_, err = Load(dir, Options{})
	assert.ErrorContains(t, err, "parsing")
}

func TestDefaultName(t *testing.T) {
	tests := map[string]string{
		"time":                        "time",
		"github.com/google/uuid":      "uuid",
		"gopkg.in/yaml.v3":            "yaml",
		"github.com/go-openapi/swag":  "swag",
		"github.com/foo/bar/v2":       "bar",
		"github.com/mattn/go-sqlite3": "sqlite3",
	}
	for path, want := range tests {
		assert.Equal(t, want, defaultName(path), path)
	}
}
