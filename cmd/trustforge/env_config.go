package main

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-trustforge/internal/config"
)

const envPrefix = "TRUSTFORGE_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string   // TRUSTFORGE_CONFIG: config name or path
	Theme      string   // TRUSTFORGE_THEME: theme name or path
	OutDir     string   // TRUSTFORGE_OUT: output directory
	LogLevel   string   // TRUSTFORGE_LOG: debug, info, warn, error
	ThemesDirs []string // TRUSTFORGE_THEMES_DIR: list separated like PATH
	PDFEngine  string   // TRUSTFORGE_PDF_ENGINE: xelatex or chrome
	Timeout    string   // TRUSTFORGE_TIMEOUT: Go duration
	Workers    int      // TRUSTFORGE_WORKERS: parallel workers
}

// knownEnvVars lists valid TRUSTFORGE_* environment variables.
var knownEnvVars = map[string]bool{
	"TRUSTFORGE_CONFIG":     true,
	"TRUSTFORGE_THEME":      true,
	"TRUSTFORGE_OUT":        true,
	"TRUSTFORGE_LOG":        true,
	"TRUSTFORGE_THEMES_DIR": true,
	"TRUSTFORGE_PDF_ENGINE": true,
	"TRUSTFORGE_TIMEOUT":    true,
	"TRUSTFORGE_WORKERS":    true,
}

// loadEnvConfig reads TRUSTFORGE_* variables. Malformed numbers and
// durations are config errors rather than silently ignored.
func loadEnvConfig(getenv func(string) string) (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath: getenv("TRUSTFORGE_CONFIG"),
		Theme:      getenv("TRUSTFORGE_THEME"),
		OutDir:     getenv("TRUSTFORGE_OUT"),
		LogLevel:   getenv("TRUSTFORGE_LOG"),
		PDFEngine:  getenv("TRUSTFORGE_PDF_ENGINE"),
		Timeout:    getenv("TRUSTFORGE_TIMEOUT"),
	}

	if dirs := getenv("TRUSTFORGE_THEMES_DIR"); dirs != "" {
		for _, d := range filepath.SplitList(dirs) {
			if d != "" {
				cfg.ThemesDirs = append(cfg.ThemesDirs, d)
			}
		}
	}

	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: TRUSTFORGE_TIMEOUT=%q: want a positive duration such as 90s", config.ErrInvalidValue, cfg.Timeout)
		}
	}

	if workers := getenv("TRUSTFORGE_WORKERS"); workers != "" {
		w, err := strconv.Atoi(workers)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("%w: TRUSTFORGE_WORKERS=%q: want a non-negative integer", config.ErrInvalidValue, workers)
		}
		cfg.Workers = w
	}

	return cfg, nil
}

// warnUnknownEnvVars warns about unrecognized TRUSTFORGE_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides config file values with set variables. Flags
// are merged afterwards, so the order is flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Theme != "" {
		cfg.Theme.Name = env.Theme
	}
	if len(env.ThemesDirs) > 0 {
		cfg.Theme.Dirs = slices.Concat(env.ThemesDirs, cfg.Theme.Dirs)
	}
	if env.OutDir != "" {
		moveOutDir(cfg, env.OutDir)
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.PDFEngine != "" {
		cfg.PDF.Engine = strings.ToLower(env.PDFEngine)
	}
	if env.Timeout != "" {
		cfg.PDF.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}

// moveOutDir sets the output directory and carries along an index path
// that lived below the old one.
func moveOutDir(cfg *config.Config, dir string) {
	if rel, err := filepath.Rel(cfg.Output.Dir, cfg.Index.Out); err == nil && !strings.HasPrefix(rel, "..") {
		cfg.Index.Out = filepath.Join(dir, rel)
	}
	cfg.Output.Dir = dir
}
