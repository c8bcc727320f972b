package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// DefaultConfigFile is where init writes the sample configuration.
const DefaultConfigFile = "struct2openapi.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool

	stdout io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample struct2openapi configuration file",
		Long:  "Scaffold a commented struct2openapi configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
				stdout:     cmd.OutOrStdout(),
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", DefaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx
	stdout := cfg.stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = DefaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# struct2openapi configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Package directory to inspect. Defaults to the current directory.
# dir: ./models

# Generated file name inside dir.
# out: zz_openapi_gen.go

# Generate for these structs in addition to those annotated with
# //struct2openapi:generate (comma-separated or list).
# types: [Pet, PetList]

# Never generate for these structs.
# exclude: [internalState]

# Generate for every exported struct in the package.
# all: false

# Struct tag consulted for field names.
# tag: json

# Generic wrappers whose type argument is an optional value.
# optionalWrappers: [Optional, Option, Nullable]

# Map types without schema methods onto primitive kinds
# (int8..int64, uint8..uint64, int, uint, uintptr, float32, float64, bool, string).
# typeMappings:
#   time.Time: string
#   uuid.UUID: string

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite an output file that was not generated by struct2openapi.
# force: false

# Logging: verbose lowers the stderr level to debug; logFile receives JSON logs.
# verbose: false
# logLevel: info
# logFile: ./struct2openapi.log
`
