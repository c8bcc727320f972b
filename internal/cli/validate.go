package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/struct2openapi/internal/spec"
	"github.com/mark3labs/struct2openapi/openapi"
)

// ValidateConfig captures the options for the validate command.
type ValidateConfig struct {
	Input   string
	Methods []openapi.Method
	Paths   []string
	Timeout time.Duration
	Retries int
	// ConfigPath supplies logging keys; generate-only keys are ignored.
	ConfigPath string
	LogOptions

	stdout io.Writer
	stderr io.Writer
}

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI document and print its endpoints",
		Long: "Load an OpenAPI 3.0 document from a file or http(s) URL, validate it, " +
			"and print a table of its endpoints. Swagger 2.0 documents are rejected.",
		Example: strings.TrimSpace(`  struct2openapi validate --input openapi.yaml
  struct2openapi validate --input https://api.example.com/openapi.json --method GET --path '^/pets'`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveValidateConfig(cmd)
			if err != nil {
				return err
			}
			return validateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI document")
	flags.StringSlice("method", nil, "Only list endpoints using these HTTP methods")
	flags.StringSlice("path", nil, "Only list endpoints whose path matches one of these regular expressions")
	flags.Duration("timeout", spec.DefaultSettings().HTTPTimeout, "Timeout for each HTTP request")
	flags.Int("retries", spec.DefaultSettings().MaxRetries, "Attempts for transient HTTP failures")

	return cmd
}

func resolveValidateConfig(cmd *cobra.Command) (*ValidateConfig, error) {
	flags := cmd.Flags()
	cfg := &ValidateConfig{stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		shared := defaultGenerateConfig()
		if err := applyGenerateConfigFromFile(&shared, configPath); err != nil {
			return nil, err
		}
		cfg.ConfigPath = configPath
		cfg.LogOptions = shared.LogOptions
	}

	if err := applyValidateFlags(flags, cfg); err != nil {
		return nil, err
	}
	if cfg.Input == "" {
		return nil, newUsageError("validate: --input is required")
	}
	if cfg.Timeout <= 0 {
		return nil, newUsageError("validate: --timeout must be positive")
	}
	if _, err := spec.CompilePathPatterns(cfg.Paths); err != nil {
		return nil, newUsageError(fmt.Sprintf("validate: --path: %v", err))
	}
	if err := cfg.LogOptions.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyValidateFlags(flags *pflag.FlagSet, cfg *ValidateConfig) error {
	var err error
	if cfg.Input, err = flags.GetString("input"); err != nil {
		return err
	}
	cfg.Input = strings.TrimSpace(cfg.Input)

	methods, err := flags.GetStringSlice("method")
	if err != nil {
		return err
	}
	for _, name := range sanitizeNames(methods) {
		m, err := openapi.ParseMethod(name)
		if err != nil {
			return newUsageError(fmt.Sprintf("validate: --method: %v", err))
		}
		cfg.Methods = append(cfg.Methods, m)
	}

	paths, err := flags.GetStringSlice("path")
	if err != nil {
		return err
	}
	cfg.Paths = sanitizeNames(paths)

	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.Retries, err = flags.GetInt("retries"); err != nil {
		return err
	}
	return applyLogFlagOverrides(flags, &cfg.LogOptions)
}

func runValidate(ctx context.Context, cfg *ValidateConfig) error {
	stdout, stderr := cfg.stdout, cfg.stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	log, closer, err := cfg.LogOptions.logger(stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Debug("loading document", "input", cfg.Input)
	doc, err := spec.Load(ctx, cfg.Input,
		spec.WithHTTPTimeout(cfg.Timeout),
		spec.WithMaxRetries(cfg.Retries),
	)
	if err != nil {
		// Map structured spec errors into friendly messages
		var se *spec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	res, err := spec.CompilePathPatterns(cfg.Paths)
	if err != nil {
		return newUsageError(fmt.Sprintf("validate: --path: %v", err))
	}
	summary, err := spec.Summarize(doc, spec.WithMethods(cfg.Methods), spec.WithPathPatterns(res))
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	log.Info("document valid", "input", cfg.Input, "endpoints", len(summary.Endpoints))

	printSummary(stdout, summary)
	return nil
}

func printSummary(w io.Writer, s *spec.Summary) {
	fmt.Fprintf(w, "Valid OpenAPI %s document: %s (version %s)\n", s.OpenAPI, s.Title, s.Version)
	for _, srv := range s.Servers {
		fmt.Fprintf(w, "Server: %s\n", srv.URL)
	}
	fmt.Fprintf(w, "Endpoints (%d):\n", len(s.Endpoints))
	if len(s.Endpoints) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tQUERY\tBODY SCHEMA\tRESPONSES")
	for _, ep := range s.Endpoints {
		params := make([]string, 0, len(ep.Parameters))
		for _, p := range ep.Parameters {
			name := p.Name
			if p.Required {
				name += "*"
			}
			params = append(params, name)
		}
		body := "-"
		if ep.RequestBody != nil && len(ep.RequestBody.Content) > 0 {
			body = ep.RequestBody.Content[0].Type
		}
		statuses := make([]string, 0, len(ep.Responses))
		for _, r := range ep.Responses {
			statuses = append(statuses, r.Status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ep.Method, ep.Path, orDash(strings.Join(params, ",")), body, strings.Join(statuses, ","))
	}
	_ = tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
