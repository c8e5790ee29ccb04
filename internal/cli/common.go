package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/orizon-lang/scopetree/internal/debug"
	scopeerrors "github.com/orizon-lang/scopetree/internal/errors"
	"github.com/orizon-lang/scopetree/internal/pipeline"
)

// Version information for all CLI tools
const (
	Version   = "0.3.0"
	BuildDate = "2025-09-14"
)

// CommitSHA is set at link time.
var CommitSHA = "unknown"

// VersionInfo contains version and build information
type VersionInfo struct {
	Version       string `json:"version"`
	BuildDate     string `json:"build_date"`
	CommitSHA     string `json:"commit_sha"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	Arch          string `json:"arch"`
	FormatVersion string `json:"format_version"`
}

// GetVersionInfo returns structured version information
func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:       Version,
		BuildDate:     BuildDate,
		CommitSHA:     CommitSHA,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS,
		Arch:          runtime.GOARCH,
		FormatVersion: debug.FormatVersion,
	}
}

// PrintVersion prints version information in a consistent format
func PrintVersion(w io.Writer, toolName string, jsonOutput bool) error {
	info := GetVersionInfo()

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "%s v%s\n", toolName, info.Version)
	fmt.Fprintf(w, "Build Date: %s\n", info.BuildDate)
	if info.CommitSHA != "unknown" && info.CommitSHA != "" {
		fmt.Fprintf(w, "Commit: %s\n", info.CommitSHA)
	}
	fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s/%s\n", info.Platform, info.Arch)
	fmt.Fprintf(w, "Dump Format: %s\n", info.FormatVersion)
	return nil
}

// NewLogger returns a console logger writing to w. Warnings and errors are
// always shown; verbose adds info and debug adds debug records.
func NewLogger(w io.Writer, verbose, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Config represents common configuration for CLI tools
type Config struct {
	Verbose       bool     `yaml:"verbose" json:"verbose"`
	Debug         bool     `yaml:"debug" json:"debug"`
	Policy        string   `yaml:"policy" json:"policy"`
	Concurrency   int      `yaml:"concurrency" json:"concurrency"`
	FormatVersion string   `yaml:"format_version" json:"format_version"`
	Methods       []string `yaml:"methods" json:"methods"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Policy:        pipeline.PolicyAbort.String(),
		FormatVersion: debug.FormatVersion,
	}
}

// LoadConfig loads configuration from a YAML or JSON file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Default config if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks every field that has a restricted value set.
func (c *Config) Validate() error {
	if _, err := pipeline.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return scopeerrors.InvalidConfig("concurrency", c.Concurrency, "must not be negative")
	}
	if _, err := debug.CheckFormat(c.FormatVersion); err != nil {
		return scopeerrors.InvalidConfig("format_version", c.FormatVersion, err.Error())
	}
	for _, pattern := range c.Methods {
		if !doublestar.ValidatePattern(pattern) {
			return scopeerrors.InvalidConfig("methods", pattern, "bad glob pattern")
		}
	}
	return nil
}

// PipelineOptions converts the config into pipeline options.
func (c *Config) PipelineOptions(logger zerolog.Logger) ([]pipeline.Option, error) {
	policy, err := pipeline.ParsePolicy(c.Policy)
	if err != nil {
		return nil, err
	}
	return []pipeline.Option{
		pipeline.WithPolicy(policy),
		pipeline.WithConcurrency(c.Concurrency),
		pipeline.WithLogger(logger),
	}, nil
}

// MatchMethod reports whether name passes the method filters. Method names
// use '.' as separator, so patterns match them like slash-free paths.
func (c *Config) MatchMethod(name string) bool {
	if len(c.Methods) == 0 {
		return true
	}
	for _, pattern := range c.Methods {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// FilterMethods keeps the methods matching the configured filters.
func (c *Config) FilterMethods(methods []pipeline.Method) []pipeline.Method {
	if len(c.Methods) == 0 {
		return methods
	}
	out := make([]pipeline.Method, 0, len(methods))
	for _, m := range methods {
		if c.MatchMethod(m.Name) {
			out = append(out, m)
		}
	}
	return out
}
