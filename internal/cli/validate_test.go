package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Test API\n" +
	"  version: '1.0.0'\n" +
	"servers:\n" +
	"  - url: https://api.example.com\n" +
	"paths:\n" +
	"  /hello:\n" +
	"    get:\n" +
	"      summary: Hello\n" +
	"      parameters:\n" +
	"        - name: limit\n" +
	"          in: query\n" +
	"          required: true\n" +
	"          schema:\n" +
	"            type: integer\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema:\n" +
	"                type: array\n" +
	"                items:\n" +
	"                  type: string\n" +
	"    post:\n" +
	"      requestBody:\n" +
	"        content:\n" +
	"          application/json:\n" +
	"            schema:\n" +
	"              type: object\n" +
	"              properties:\n" +
	"                name:\n" +
	"                  type: string\n" +
	"      responses:\n" +
	"        '201':\n" +
	"          description: created\n"

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return path
}

func rowFor(out, method string) []string {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == method {
			return fields
		}
	}
	return nil
}

func TestValidate_PrintsEndpoints(t *testing.T) {
	t.Parallel()
	out, err := runRoot(t, "validate", "--input", writeSpec(t, minimalSpecYAML))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Valid OpenAPI 3.0.0 document: Test API (version 1.0.0)") {
		t.Fatalf("missing header: %s", out)
	}
	if !strings.Contains(out, "Server: https://api.example.com") || !strings.Contains(out, "Endpoints (2):") {
		t.Fatalf("missing server or count: %s", out)
	}

	if header := rowFor(out, "METHOD"); strings.Join(header, " ") != "METHOD PATH QUERY BODY SCHEMA RESPONSES" {
		t.Fatalf("header row: %v", header)
	}
	get := rowFor(out, "GET")
	if strings.Join(get, " ") != "GET /hello limit* - 200" {
		t.Fatalf("GET row: %v", get)
	}
	post := rowFor(out, "POST")
	if strings.Join(post, " ") != "POST /hello - object(1) 201" {
		t.Fatalf("POST row: %v", post)
	}
}

func TestValidate_LoggingFromConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "validate.log")
	configPath := filepath.Join(dir, "config.yaml")
	config := "out: ignored_gen.go\nlogLevel: warn\nlogFile: " + logPath + "\n"
	if err := os.WriteFile(configPath, []byte(config), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runRoot(t, "--config", configPath, "validate", "--input", writeSpec(t, minimalSpecYAML)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"document valid"`) {
		t.Fatalf("expected JSON log record, got: %s", data)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("logLevel: loud\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err = runRoot(t, "--config", bad, "validate", "--input", writeSpec(t, minimalSpecYAML))
	if err == nil || !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "unknown log level") {
		t.Fatalf("expected log level usage error, got %v", err)
	}
}

func TestValidate_MethodFilter(t *testing.T) {
	t.Parallel()
	out, err := runRoot(t, "validate", "--input", writeSpec(t, minimalSpecYAML), "--method", "post")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if rowFor(out, "GET") != nil || rowFor(out, "POST") == nil {
		t.Fatalf("expected only POST rows: %s", out)
	}
}

func TestValidate_UsageErrors(t *testing.T) {
	t.Parallel()
	swagger := writeSpec(t, "swagger: '2.0'\ninfo:\n  title: Old\n  version: '1'\npaths: {}\n")
	good := writeSpec(t, minimalSpecYAML)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"validate"}, "--input is required"},
		{"swagger 2.0", []string{"validate", "--input", swagger}, "spec:"},
		{"missing file", []string{"validate", "--input", filepath.Join(t.TempDir(), "nope.yaml")}, "spec:"},
		{"bad method", []string{"validate", "--input", good, "--method", "FETCH"}, "unsupported method"},
		{"bad path pattern", []string{"validate", "--input", good, "--path", "("}, "--path"},
		{"bad timeout", []string{"validate", "--input", good, "--timeout", "0s"}, "--timeout must be positive"},
	}
	for _, tt := range tests {
		_, err := runRoot(t, tt.args...)
		if err == nil {
			t.Fatalf("%s: expected an error", tt.name)
		}
		if !errors.Is(err, ErrUsage) {
			t.Fatalf("%s: expected usage error, got %v", tt.name, err)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: unexpected error text: %v", tt.name, err)
		}
	}
}
