package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/struct2openapi/internal/diag"
	"github.com/mark3labs/struct2openapi/internal/emitter/goemitter"
	"github.com/mark3labs/struct2openapi/internal/inspect"
	"github.com/mark3labs/struct2openapi/internal/synth"
	"github.com/mark3labs/struct2openapi/internal/typeexpr"
	"github.com/mark3labs/struct2openapi/schema"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Dir              string
	Out              string // generated file name inside Dir
	Types            []string
	Exclude          []string
	All              bool
	Tag              string
	OptionalWrappers []string
	TypeMappings     map[string]string // type name -> primitive kind name
	ConfigPath       string
	DryRun           bool
	Force            bool
	LogOptions

	stdout io.Writer
	stderr io.Writer
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Dir: ".", Out: goemitter.DefaultFileName, Tag: "json"}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate schema methods for the annotated structs of a package",
		Long: "Generate JSONSchema and QueryParameters methods for the structs of one package. " +
			"Structs are selected by a //struct2openapi:generate comment, by --types, or with --all. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  struct2openapi generate --dir ./models
  struct2openapi generate --dir ./models --all --exclude Internal --dry-run
  //go:generate struct2openapi generate --types Pet,PetList`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("dir", "", "Package directory to inspect (default: current directory)")
	flags.String("out", "", "Generated file name inside --dir (default: "+goemitter.DefaultFileName+")")
	flags.StringSlice("types", nil, "Also generate for these struct types")
	flags.StringSlice("exclude", nil, "Never generate for these struct types")
	flags.Bool("all", false, "Generate for every exported struct in the package")
	flags.String("tag", "", "Struct tag used for field names (default: json)")
	flags.StringSlice("optional-wrappers", nil, "Generic types treated as optional values (default: Optional,Option,Nullable)")
	flags.StringToString("type-mapping", nil, "Map a type to a primitive kind, e.g. time.Time=string")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite an existing output file that was not generated")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.stdout = cmd.OutOrStdout()
	cfg.stderr = cmd.ErrOrStderr()

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("dir") {
		value, err := flags.GetString("dir")
		if err != nil {
			return err
		}
		cfg.Dir = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("types") {
		value, err := flags.GetStringSlice("types")
		if err != nil {
			return err
		}
		cfg.Types = sanitizeNames(value)
	}
	if flags.Changed("exclude") {
		value, err := flags.GetStringSlice("exclude")
		if err != nil {
			return err
		}
		cfg.Exclude = sanitizeNames(value)
	}
	if flags.Changed("all") {
		value, err := flags.GetBool("all")
		if err != nil {
			return err
		}
		cfg.All = value
	}
	if flags.Changed("tag") {
		value, err := flags.GetString("tag")
		if err != nil {
			return err
		}
		cfg.Tag = strings.TrimSpace(value)
	}
	if flags.Changed("optional-wrappers") {
		value, err := flags.GetStringSlice("optional-wrappers")
		if err != nil {
			return err
		}
		cfg.OptionalWrappers = sanitizeNames(value)
	}
	if flags.Changed("type-mapping") {
		value, err := flags.GetStringToString("type-mapping")
		if err != nil {
			return err
		}
		// flag mappings extend the config file's
		if cfg.TypeMappings == nil {
			cfg.TypeMappings = make(map[string]string, len(value))
		}
		for k, v := range value {
			cfg.TypeMappings[k] = v
		}
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}

	return applyLogFlagOverrides(flags, &cfg.LogOptions)
}

func (c *GenerateConfig) normalize() {
	c.Dir = strings.TrimSpace(c.Dir)
	if c.Dir == "" {
		c.Dir = "."
	}
	c.Out = strings.TrimSpace(c.Out)
	if c.Out == "" {
		c.Out = goemitter.DefaultFileName
	}
	c.Tag = strings.TrimSpace(c.Tag)
	if c.Tag == "" {
		c.Tag = "json"
	}
	c.Types = sanitizeNames(c.Types)
	c.Exclude = sanitizeNames(c.Exclude)
	c.OptionalWrappers = sanitizeNames(c.OptionalWrappers)
	if len(c.TypeMappings) > 0 {
		cleaned := make(map[string]string, len(c.TypeMappings))
		for k, v := range c.TypeMappings {
			if k = strings.TrimSpace(k); k != "" {
				cleaned[k] = strings.TrimSpace(v)
			}
		}
		c.TypeMappings = cleaned
	}
}

func (c *GenerateConfig) validate() error {
	if filepath.Base(c.Out) != c.Out || !strings.HasSuffix(c.Out, ".go") || strings.HasSuffix(c.Out, "_test.go") {
		return newUsageError(fmt.Sprintf("generate: --out must be a Go file name without directories, got %q", c.Out))
	}

	overlap := intersect(c.Types, c.Exclude)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: types listed in both --types and --exclude: %s", strings.Join(overlap, ", ")))
	}

	if _, err := c.kindMappings(); err != nil {
		return err
	}
	return c.LogOptions.validate()
}

// kindMappings parses TypeMappings into primitive kinds.
func (c *GenerateConfig) kindMappings() (map[string]schema.Kind, error) {
	if len(c.TypeMappings) == 0 {
		return nil, nil
	}
	out := make(map[string]schema.Kind, len(c.TypeMappings))
	for name, kind := range c.TypeMappings {
		k, err := schema.ParseKind(kind)
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("generate: type mapping %s: %v", name, err))
		}
		out[name] = k
	}
	return out, nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
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

	mappings, err := cfg.kindMappings()
	if err != nil {
		return err
	}

	// 1) Inspect the package source
	pkg, err := inspect.Load(cfg.Dir, inspect.Options{
		TagKey:       cfg.Tag,
		All:          cfg.All,
		IncludeTypes: cfg.Types,
		ExcludeTypes: cfg.Exclude,
		SkipFiles:    []string{cfg.Out},
	})
	if err != nil {
		return wrapDiagnostics(err, cfg.Dir)
	}
	if len(pkg.Records) == 0 {
		return newUsageError(fmt.Sprintf("generate: no structs selected in %s\nHint: annotate a struct with //struct2openapi:generate, or pass --types or --all.", pkg.Dir))
	}
	for _, r := range pkg.Records {
		log.Debug("selected record", "package", pkg.Name, "record", r.Name, "fields", len(r.Fields), "pos", r.Pos.String())
	}

	// 2) Classify fields and render source
	out, err := synth.Synthesize(pkg, synth.Options{Types: typeexpr.Options{
		OptionalWrappers: cfg.OptionalWrappers,
		TypeMappings:     mappings,
	}})
	if err != nil {
		return wrapDiagnostics(err, pkg.Dir)
	}

	// 3) Write (or plan) the generated file
	res, err := goemitter.Emit(ctx, out, goemitter.Options{
		Dir:      pkg.Dir,
		FileName: cfg.Out,
		Force:    cfg.Force,
		DryRun:   cfg.DryRun,
		Logger:   log,
	})
	if err != nil {
		return wrapOutputError(err, pkg.Dir)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(stdout, res.Dir, paths)
		fmt.Fprintf(stdout, "Records: %s\n", strings.Join(res.Records, ", "))
	}
	return nil
}

func printPlan(w io.Writer, outDir string, relPaths []string) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(w, "- %s\n", p)
	}
}

// wrapDiagnostics turns build-time diagnostics into a single error listing
// each one as file:line:col: message.
func wrapDiagnostics(err error, dir string) error {
	var list diag.List
	if errors.As(err, &list) {
		return fmt.Errorf("generate %s: %d problem(s):\n%w", dir, len(list), list)
	}
	return fmt.Errorf("generate %s: %w", dir, err)
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "--force") || strings.Contains(lower, "rename") || strings.Contains(lower, "not a directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	raw, err := readConfigFile(path)
	if err != nil {
		return err
	}

	// Sorted for a stable first error.
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		var err error
		switch normalizeKey(key) {
		case "dir":
			cfg.Dir, err = valueAsString(value)
		case "out":
			cfg.Out, err = valueAsString(value)
		case "types", "includetypes":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.Types = sanitizeNames(list)
		case "exclude", "excludetypes":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.Exclude = sanitizeNames(list)
		case "all":
			cfg.All, err = valueAsBool(value)
		case "tag":
			cfg.Tag, err = valueAsString(value)
		case "optionalwrappers":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.OptionalWrappers = sanitizeNames(list)
		case "typemappings":
			cfg.TypeMappings, err = valueAsStringMap(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "force":
			cfg.Force, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		case "loglevel":
			cfg.LogLevel, err = valueAsString(value)
		case "logfile":
			cfg.LogFile, err = valueAsString(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}
	return raw, nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsStringMap(v any) (map[string]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		out := make(map[string]string, len(val))
		for key, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected mapping, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
