package openapi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/struct2openapi/schema"
)

type bigBounds struct{}

func (bigBounds) JSONSchema() *schema.Schema {
	return schema.Object(
		[]string{"count"},
		schema.Property{Name: "count", Schema: schema.For(schema.Uint64)},
		schema.Property{Name: "ratio", Schema: schema.For(schema.Float32)},
	)
}

func TestJSONOmitsAbsentFields(t *testing.T) {
	doc := New(testTitle, testVersion)
	data, err := doc.JSON(false)
	require.NoError(t, err)
	assert.Equal(t, `{"openapi":"3.0.0","info":{"title":"the title","version":"1.0.1"},"paths":{}}`, string(data))
	assert.NotContains(t, string(data), "null")
}

func TestJSONIndent(t *testing.T) {
	doc := New(testTitle, testVersion).AddServer("https://api.example.com", "").AddTag("pets", "Pet operations")
	data, err := doc.JSON(true)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
	assert.Contains(t, string(data), "\n  \"info\": {")
	assert.Contains(t, string(data), `"url": "https://api.example.com"`)
	assert.NotContains(t, string(data), `"description": ""`)
}

func TestYAML(t *testing.T) {
	doc := New(testTitle, testVersion)
	doc.AddRoute(Route{Method: MethodGet, Path: "/", Status: 200, Description: testDescription, Response: bigBounds{}})

	data, err := doc.YAML()
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "openapi: 3.0.0\n"), out)
	assert.Contains(t, out, "maximum: 18446744073709551615")
	assert.Contains(t, out, "minimum: -3.4028235e+38")
	assert.NotContains(t, out, "{")

	// properties keep declaration order
	assert.Less(t, strings.Index(out, "count:"), strings.Index(out, "ratio:"))

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, "3.0.0", back["openapi"])
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	doc := New(testTitle, testVersion)
	doc.AddRoute(Route{Method: MethodGet, Path: "/", Status: 200, Description: testDescription, Response: simpleStruct{}})

	jsonPath := filepath.Join(dir, "openapi.json")
	require.NoError(t, doc.WriteFile(jsonPath))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	want, err := doc.JSON(true)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))

	yamlPath := filepath.Join(dir, "openapi.yml")
	require.NoError(t, doc.WriteFile(yamlPath))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "paths:\n")

	assert.Error(t, doc.WriteFile(filepath.Join(dir, "missing", "openapi.json")))
}
