package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/struct2openapi/internal/logging"
)

// Execute runs the struct2openapi CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "struct2openapi",
		Short:         "Generate OpenAPI schemas from Go struct definitions",
		Long:          "struct2openapi generates JSON Schema and query parameter descriptions for annotated Go structs, so documents assembled with the openapi package stay in sync with the types they describe.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().String("log-level", "", "Log level for stderr output (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd(), newValidateCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}

// LogOptions are the logging settings shared by every command.
type LogOptions struct {
	Verbose  bool
	LogLevel string
	LogFile  string
}

func applyLogFlagOverrides(flags *pflag.FlagSet, opts *LogOptions) error {
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		opts.Verbose = value
	}
	if flags.Changed("log-level") {
		value, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		opts.LogLevel = strings.TrimSpace(value)
	}
	if flags.Changed("log-file") {
		value, err := flags.GetString("log-file")
		if err != nil {
			return err
		}
		opts.LogFile = strings.TrimSpace(value)
	}
	return nil
}

func (o LogOptions) validate() error {
	if _, err := logging.ParseLevel(o.LogLevel); err != nil {
		return newUsageError(fmt.Sprintf("--log-level: %v", err))
	}
	return nil
}

func (o LogOptions) logger(stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, nil, newUsageError(fmt.Sprintf("--log-level: %v", err))
	}
	log, closer, err := logging.New(logging.Config{
		Level:   level,
		Verbose: o.Verbose,
		File:    o.LogFile,
		Stderr:  stderr,
	})
	if err != nil {
		return nil, nil, newUsageError(err.Error())
	}
	return log, closer, nil
}
