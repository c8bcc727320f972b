package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/struct2openapi/internal/synth"
)

const modelsSrc = "" +
	"package models\n" +
	"\n" +
	"//struct2openapi:generate\n" +
	"type MyStruct struct {\n" +
	"\tVal1 uint8  `json:\"val1\"`\n" +
	"\tVal2 string `json:\"val2\"`\n" +
	"}\n"

func writePackage(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "models.go"), []byte(src), 0o600); err != nil {
		t.Fatalf("write models: %v", err)
	}
	return dir
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	dir := writePackage(t, modelsSrc)

	out, err := runRoot(t, "generate", "--dir", dir, "--dry-run")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Planned writes to") || !strings.Contains(out, "- zz_openapi_gen.go") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	if !strings.Contains(out, "Records: MyStruct") {
		t.Fatalf("expected record list, got: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "zz_openapi_gen.go")); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_Writes(t *testing.T) {
	dir := writePackage(t, modelsSrc)

	if _, err := runRoot(t, "generate", "--dir", dir); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "zz_openapi_gen.go"))
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	s := string(data)
	if !strings.HasPrefix(s, synth.Header) {
		t.Fatalf("missing generated header: %s", s)
	}
	if !strings.Contains(s, "func (MyStruct) JSONSchema() *schema.Schema") {
		t.Fatalf("missing JSONSchema method: %s", s)
	}

	// A second run reads past its own output and produces the same bytes.
	if _, err := runRoot(t, "generate", "--dir", dir); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	again, err := os.ReadFile(filepath.Join(dir, "zz_openapi_gen.go"))
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatalf("regenerated output differs")
	}
}

func TestGeneratePipeline_RefusesHandWrittenOutput(t *testing.T) {
	dir := writePackage(t, modelsSrc)
	target := filepath.Join(dir, "schemas.go")
	if err := os.WriteFile(target, []byte("package models\n"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	_, err := runRoot(t, "generate", "--dir", dir, "--out", "schemas.go")
	if err == nil {
		t.Fatalf("expected refusal to overwrite hand-written file")
	}
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := runRoot(t, "generate", "--dir", dir, "--out", "schemas.go", "--force"); err != nil {
		t.Fatalf("forced execute: %v", err)
	}
}

func TestGeneratePipeline_Diagnostics(t *testing.T) {
	dir := writePackage(t, "package models\n\n//struct2openapi:generate\ntype Bad struct {\n\tM map[string]int\n}\n")

	_, err := runRoot(t, "generate", "--dir", dir)
	if err == nil {
		t.Fatalf("expected diagnostics error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "1 problem(s)") || !strings.Contains(msg, "models.go:") || !strings.Contains(msg, "Bad.M") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "zz_openapi_gen.go")); err == nil {
		t.Fatalf("expected no output when diagnostics are reported")
	}
}

func TestGeneratePipeline_NothingSelected(t *testing.T) {
	dir := writePackage(t, "package models\n\ntype Plain struct{ A int }\n")

	_, err := runRoot(t, "generate", "--dir", dir)
	if err == nil || !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "no structs selected") {
		t.Fatalf("expected usage error, got %v", err)
	}

	out, err := runRoot(t, "generate", "--dir", dir, "--all", "--dry-run")
	if err != nil {
		t.Fatalf("execute with --all: %v", err)
	}
	if !strings.Contains(out, "Records: Plain") {
		t.Fatalf("expected Plain to be selected, got: %s", out)
	}
}
