package goemitter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/struct2openapi/internal/synth"
)

// DefaultFileName is the generated file written into each package directory.
const DefaultFileName = "zz_openapi_gen.go"

// Options controls where and how generated files are written.
type Options struct {
	Dir      string // required; package directory receiving the file
	FileName string // defaults to DefaultFileName
	Force    bool   // overwrite a file that was not written by the generator
	DryRun   bool   // don't write, only plan
	Logger   *slog.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath   string
	Size      int
	Mode      os.FileMode
	Unchanged bool // content already on disk
}

// Result returns the planned files and the records they describe.
type Result struct {
	Dir     string
	Package string
	Records []string
	Planned []PlannedFile
}

// Emit writes the synthesized file for one package.
func Emit(ctx context.Context, out *synth.Output, opts Options) (*Result, error) {
	if out == nil {
		return nil, fmt.Errorf("goemitter: nil output")
	}
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("goemitter: Dir is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(opts.FileName)
	if name == "" {
		name = DefaultFileName
	}
	if filepath.Base(name) != name || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return nil, fmt.Errorf("goemitter: invalid output file name %q", name)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	abs, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve dir: %w", err)
	}
	files := map[string][]byte{name: out.Source}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		pf := PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644}
		existing, err := os.ReadFile(filepath.Join(abs, rel))
		switch {
		case err == nil:
			if !opts.Force && !isGenerated(existing) {
				return nil, fmt.Errorf("goemitter: %s exists and was not generated by struct2openapi (use --force to overwrite)", filepath.Join(abs, rel))
			}
			pf.Unchanged = bytes.Equal(existing, files[rel])
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("goemitter: stat %s: %w", rel, err)
		}
		planned = append(planned, pf)
	}

	if !opts.DryRun {
		if err := writeFiles(abs, files, planned); err != nil {
			return nil, err
		}
		for _, pf := range planned {
			log.Info("generated file", "path", filepath.Join(abs, pf.RelPath), "records", len(out.Records), "unchanged", pf.Unchanged)
		}
	}

	return &Result{Dir: abs, Package: out.Package, Records: out.Records, Planned: planned}, nil
}

// isGenerated reports whether src carries the generator's header on its
// first line.
func isGenerated(src []byte) bool {
	first, _, _ := bytes.Cut(src, []byte("\n"))
	return string(bytes.TrimRight(first, "\r")) == synth.Header
}

func writeFiles(dir string, files map[string][]byte, planned []PlannedFile) error {
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return fmt.Errorf("goemitter: %s is not a directory", dir)
	}
	for _, pf := range planned {
		if pf.Unchanged {
			continue
		}
		p := filepath.Join(dir, pf.RelPath)
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, files[pf.RelPath], pf.Mode); err != nil {
			return fmt.Errorf("write temp %s: %w", pf.RelPath, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", pf.RelPath, err)
		}
	}
	return nil
}
