// Package config loads and validates the tool's configuration, merging
// defaults, an optional YAML config file, CHAMPCOLLECT_* environment
// variables, and command-line flags (highest priority).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Striender/Research-data/pkg/collector"
	"github.com/Striender/Research-data/pkg/collector/metrics"
)

const (
	// EnvPrefix namespaces the environment variables read by viper.
	EnvPrefix = "CHAMPCOLLECT"
	// DefaultConfigName is the config file base name searched for in the
	// working directory and ~/.config/champ-collect/.
	DefaultConfigName = "champ-collect"
)

// LoadAndValidate resolves the final Options from all configuration sources
// and sets up the logger. A .env file in the working directory, if present,
// is loaded into the environment first.
func LoadAndValidate(cfgFile string, verbose bool, flags *pflag.FlagSet) (collector.Options, *slog.Logger, error) {
	var opts collector.Options
	v := viper.New()

	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		tempLogger.Warn("Could not load .env file", slog.Any("error", err))
	}

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags")
		} else {
			return opts, tempLogger, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for _, key := range []string{"baseline", "schema", "verbose"} {
		if flag := flags.Lookup(key); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", key, err)
			}
		}
	}
	if err := v.Unmarshal(&opts); err != nil {
		return opts, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Hyphenated flag keys do not line up with the mapstructure tags, so
	// explicit flags are applied by hand and always win over file/env values.
	if flags.Changed("input") {
		if val, _ := flags.GetString("input"); val != "" {
			opts.InputPath = val
		}
	}
	if flags.Changed("output") {
		if val, _ := flags.GetString("output"); val != "" {
			opts.OutputPath = val
		}
	}
	if flags.Changed("report-file") {
		if val, _ := flags.GetString("report-file"); val != "" {
			opts.ReportFileName = val
		}
	}
	if flags.Changed("output-format") {
		if val, _ := flags.GetString("output-format"); val != "" {
			opts.OutputFormat = collector.OutputFormat(val)
		}
	}
	if flags.Changed("verbose") {
		opts.Verbose, _ = flags.GetBool("verbose")
	}
	opts.Verbose = opts.Verbose || verbose
	if flags.Changed("no-cache") {
		opts.IgnoreCacheRead, _ = flags.GetBool("no-cache")
	}
	if flags.Changed("clear-cache") {
		opts.ClearCache, _ = flags.GetBool("clear-cache")
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	if err := validateAndDerive(&opts, logger); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("input", opts.InputPath),
		slog.String("output", opts.OutputPath),
		slog.String("schema", opts.SchemaName))
	return opts, logger, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reportFile", collector.DefaultReportFileName)
	v.SetDefault("baseline", collector.DefaultBaselineName)
	v.SetDefault("schema", collector.DefaultSchemaName)
	v.SetDefault("outputFormat", string(collector.DefaultOutputFormat))
	v.SetDefault("verbose", collector.DefaultVerbose)
}

// validateAndDerive performs semantic validation and fills in derived fields
// (absolute paths, the report file location). It wraps failures with
// collector.ErrConfigValidation.
func validateAndDerive(opts *collector.Options, logger *slog.Logger) error {
	if opts.InputPath == "" {
		return fmt.Errorf("%w: input path is required (-i, --input)", collector.ErrConfigValidation)
	}
	absInput, err := filepath.Abs(opts.InputPath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve absolute input path %q: %w", collector.ErrConfigValidation, opts.InputPath, err)
	}
	opts.InputPath = absInput
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: results directory %q not found", collector.ErrConfigValidation, opts.InputPath)
		}
		return fmt.Errorf("%w: cannot access results directory %q: %w", collector.ErrConfigValidation, opts.InputPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: input path %q is not a directory", collector.ErrConfigValidation, opts.InputPath)
	}

	if opts.OutputPath == "" {
		return fmt.Errorf("%w: output path is required (-o, --output)", collector.ErrConfigValidation)
	}
	absOutput, err := filepath.Abs(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve absolute output path %q: %w", collector.ErrConfigValidation, opts.OutputPath, err)
	}
	opts.OutputPath = absOutput
	if err := os.MkdirAll(opts.OutputPath, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create or access output directory %q: %w", collector.ErrConfigValidation, opts.OutputPath, err)
	}

	if _, err := metrics.ByName(opts.SchemaName); err != nil {
		return fmt.Errorf("%w: %w", collector.ErrConfigValidation, err)
	}

	allowedFormats := []collector.OutputFormat{collector.OutputFormatText, collector.OutputFormatJSON}
	if !slices.Contains(allowedFormats, opts.OutputFormat) {
		return fmt.Errorf("%w: invalid value %q for key 'outputFormat' (flag --output-format); allowed: %v",
			collector.ErrConfigValidation, opts.OutputFormat, allowedFormats)
	}

	if opts.ReportFileName == "" {
		opts.ReportFileName = collector.DefaultReportFileName
	}
	opts.ReportFilePath = filepath.Join(opts.OutputPath, opts.ReportFileName)

	logger.Debug("Validated paths",
		slog.String("input", opts.InputPath),
		slog.String("report", opts.ReportFilePath))
	return nil
}
