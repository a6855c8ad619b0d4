// Package config loads the trustforge.yaml project file.
//
// Values resolve in this order: CLI flags, TRUSTFORGE_* environment
// variables, the config file, then DefaultConfig. This package only covers
// the file and the defaults; flags and environment are merged by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-trustforge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DefaultName is the config name searched when none is given.
const DefaultName = "trustforge"

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxNameLength     = 100
	MaxTitleLength    = 100
	MaxLangLength     = 35 // BCP 47 upper bound in practice
	MaxDateSpecLength = 60 // "auto:" plus a date format
	MaxPatternLength  = 256
)

// Engine names.
const (
	EngineXeLaTeX = "xelatex"
	EngineChrome  = "chrome"
)

var (
	engines    = []string{EngineXeLaTeX, EngineChrome}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"console", "json"}
)

// Config holds a project's settings.
type Config struct {
	Sources SourcesConfig `yaml:"sources"`
	Output  OutputConfig  `yaml:"output"`
	Theme   ThemeConfig   `yaml:"theme"`
	Assets  AssetsConfig  `yaml:"assets"`
	Render  RenderConfig  `yaml:"render"`
	PDF     PDFConfig     `yaml:"pdf"`
	Index   IndexConfig   `yaml:"index"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
	Workers int           `yaml:"workers"` // 0 = GOMAXPROCS
}

// SourcesConfig selects the policy sources.
type SourcesConfig struct {
	Dir     string   `yaml:"dir"`     // default "policies"
	Include []string `yaml:"include"` // doublestar patterns, empty = all Markdown
	Exclude []string `yaml:"exclude"`
}

// OutputConfig defines where artifacts go.
type OutputConfig struct {
	Dir string `yaml:"dir"` // default "out"
}

// ThemeConfig selects the theme.
type ThemeConfig struct {
	Name string   `yaml:"name"` // built-in name, user theme name, or file path
	Dirs []string `yaml:"dirs"` // searched before the built-ins
}

// AssetsConfig points at user templates and stylesheets.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// RenderConfig holds options shared by HTML and PDF output.
type RenderConfig struct {
	TOC         bool   `yaml:"toc"`
	TOCTitle    string `yaml:"tocTitle"`
	GeneratedAt string `yaml:"generatedAt"` // literal, "auto" or "auto:FORMAT"; empty = none
	Lang        string `yaml:"lang"`
}

// PDFConfig configures the PDF toolchain.
type PDFConfig struct {
	Engine     string `yaml:"engine"`  // xelatex or chrome
	Timeout    string `yaml:"timeout"` // Go duration, e.g. "2m"
	KeepSource bool   `yaml:"keepSource"`
	XeLaTeX    string `yaml:"xelatex"` // binary name or path
	Passes     int    `yaml:"passes"`
	ChromeBin  string `yaml:"chromeBin"`
	NoSandbox  bool   `yaml:"noSandbox"`
}

// IndexConfig configures build-index.
type IndexConfig struct {
	Out string `yaml:"out"`
}

// ExportConfig configures control-map and risk-export.
type ExportConfig struct {
	Strict   bool              `yaml:"strict"`
	Catalogs map[string]string `yaml:"catalogs"` // framework name -> catalog file
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TimeoutDuration parses PDF.Timeout. Zero means the toolchain default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.PDF.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.PDF.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: pdf.timeout: %v", ErrInvalidValue, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: pdf.timeout: must not be negative", ErrInvalidValue)
	}
	return d, nil
}

// Validate checks lengths and enumerations. Called by LoadConfig; callers
// that assemble a Config themselves should call it too.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"sources.dir", c.Sources.Dir, MaxPathLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"theme.name", c.Theme.Name, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"render.tocTitle", c.Render.TOCTitle, MaxTitleLength},
		{"render.generatedAt", c.Render.GeneratedAt, MaxDateSpecLength},
		{"render.lang", c.Render.Lang, MaxLangLength},
		{"pdf.xelatex", c.PDF.XeLaTeX, MaxPathLength},
		{"pdf.chromeBin", c.PDF.ChromeBin, MaxPathLength},
		{"index.out", c.Index.Out, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}
	for i, d := range c.Theme.Dirs {
		if err := validateFieldLength(fmt.Sprintf("theme.dirs[%d]", i), d, MaxPathLength); err != nil {
			return err
		}
	}
	for _, list := range []struct {
		field    string
		patterns []string
	}{{"sources.include", c.Sources.Include}, {"sources.exclude", c.Sources.Exclude}} {
		for i, p := range list.patterns {
			if err := validateFieldLength(fmt.Sprintf("%s[%d]", list.field, i), p, MaxPatternLength); err != nil {
				return err
			}
		}
	}
	for name, path := range c.Export.Catalogs {
		if err := validateFieldLength("export.catalogs."+name, path, MaxPathLength); err != nil {
			return err
		}
	}

	if err := validateEnum("pdf.engine", c.PDF.Engine, engines); err != nil {
		return err
	}
	if err := validateEnum("log.level", c.Log.Level, logLevels); err != nil {
		return err
	}
	if err := validateEnum("log.format", c.Log.Format, logFormats); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.PDF.Passes < 0 || c.PDF.Passes > 5 {
		return fmt.Errorf("%w: pdf.passes: must be between 1 and 5, got %d", ErrInvalidValue, c.PDF.Passes)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers: must not be negative, got %d", ErrInvalidValue, c.Workers)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateEnum accepts an empty value or one of allowed, ignoring case.
func validateEnum(fieldName, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, strings.ToLower(value)) {
		return nil
	}
	return fmt.Errorf("%w: %s: %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{Dir: "policies"},
		Output:  OutputConfig{Dir: "out"},
		Render:  RenderConfig{TOCTitle: "Contents", Lang: "en"},
		PDF:     PDFConfig{Engine: EngineXeLaTeX, XeLaTeX: "xelatex", Passes: 2},
		Index:   IndexConfig{Out: filepath.Join("out", "policies.csv")},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// LoadConfig loads configuration from a file path or config name on top of
// DefaultConfig. If nameOrPath contains a path separator it is a file
// path; otherwise it is searched in standard locations. A missing file is
// an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	empty, err := yamlutil.IsNull(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}
	if !empty {
		if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists where a config name is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "trustforge", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
