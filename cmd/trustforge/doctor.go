package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-trustforge"
	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/config"
	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/hints"
	"github.com/alnah/go-trustforge/internal/theme"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// versionProbeTimeout bounds each "--version" call.
const versionProbeTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Engine   string     `json:"engine"`
	XeLaTeX  toolInfo   `json:"xelatex"`
	Chrome   toolInfo   `json:"chrome"`
	Themes   themeInfo  `json:"themes"`
	Sources  string     `json:"sources"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds an external binary's detection results.
type toolInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// themeInfo holds theme and template checks.
type themeInfo struct {
	Selected  string   `json:"selected"`
	Dirs      []string `json:"dirs,omitempty"`
	Available []string `json:"available"`
	AssetPath string   `json:"asset_path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     bool   `json:"no_sandbox"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// runDoctorCmd executes the doctor command. Errors found by the checks
// give exit code 1; warnings alone do not.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) error {
	f := &doctorFlags{}
	fs := newDoctorFlagSet(f)
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}

	result := runDoctor(ctx, cfg, env)
	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return errDoctor
	}
	return nil
}

// errDoctor is returned when checks failed; the report already says why.
var errDoctor = errors.New("doctor found problems")

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Engine: strings.ToLower(cfg.PDF.Engine),
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			NoSandbox: cfg.PDF.NoSandbox || env.Getenv("ROD_NO_SANDBOX") == "1",
		},
	}

	checkXeLaTeX(ctx, cfg, result)
	checkChrome(ctx, cfg, result)
	checkThemes(cfg, result)
	checkSources(cfg, result)
	checkEnvironment(env, result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkXeLaTeX locates xelatex. Missing is an error only when it is the
// selected engine.
func checkXeLaTeX(ctx context.Context, cfg *config.Config, result *doctorResult) {
	x := &trustforge.XeLaTeX{Binary: cfg.PDF.XeLaTeX}
	if x.Binary == "" {
		x.Binary = "xelatex"
	}
	path, err := x.LookPath()
	if err != nil {
		msg := fmt.Sprintf("%s not found on PATH; install TeX Live or MiKTeX, or use --engine chrome", x.Binary)
		if result.Engine == config.EngineXeLaTeX {
			result.fail("%s", msg)
		} else {
			result.warn("%s", msg)
		}
		return
	}
	result.XeLaTeX = toolInfo{Found: true, Path: path, Version: probeVersion(ctx, path)}
}

// checkChrome locates a browser for the chrome engine. Rod downloads
// Chromium when none is installed, so absence is only a warning.
func checkChrome(ctx context.Context, cfg *config.Config, result *doctorResult) {
	c := &trustforge.Chrome{Bin: cfg.PDF.ChromeBin}
	path, found := c.LookPath()
	if !found {
		if result.Engine == config.EngineChrome {
			result.warn("Chrome/Chromium not found; a managed Chromium will be downloaded on first use")
		}
		return
	}
	result.Chrome = toolInfo{Found: true, Path: path, Version: probeVersion(ctx, path)}
}

// checkThemes resolves the configured theme and the template directory.
func checkThemes(cfg *config.Config, result *doctorResult) {
	r := theme.NewResolver(cfg.Theme.Dirs...)
	result.Themes.Dirs = cfg.Theme.Dirs
	result.Themes.Available = r.Available()
	result.Themes.AssetPath = cfg.Assets.BasePath

	for _, dir := range cfg.Theme.Dirs {
		if !fileutil.DirExists(dir) {
			result.warn("theme directory %s does not exist", dir)
		}
	}

	th, err := r.Resolve(cfg.Theme.Name)
	if err != nil {
		result.fail("%v", err)
	} else {
		result.Themes.Selected = th.Name
	}

	if _, err := assets.NewResolver(cfg.Assets.BasePath); err != nil {
		result.fail("asset path %s: %v", cfg.Assets.BasePath, err)
	}
}

func checkSources(cfg *config.Config, result *doctorResult) {
	result.Sources = cfg.Sources.Dir
	if !fileutil.DirExists(cfg.Sources.Dir) {
		result.warn("sources directory %s does not exist", cfg.Sources.Dir)
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(env *Environment, result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Engine == config.EngineChrome && (result.Env.Container || result.Env.CI) && !result.Env.NoSandbox {
		result.warn("container/CI detected with the chrome engine; set ROD_NO_SANDBOX=1 or pdf.noSandbox")
	}
}

// isContainer returns whether a container was detected and which signal
// gave it away.
func isContainer(env *Environment) (bool, string) {
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := env.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if env.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory toolchains compile in.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "trustforge-doctor-*")
	if err != nil {
		result.fail("temp directory not writable: %s", os.TempDir())
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.TempWritable = true
}

// probeVersion returns the first line of "<bin> --version", or "".
func probeVersion(ctx context.Context, bin string) string {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, bin, "--version").Output() // #nosec G204 -- binary is user configured
	if err != nil {
		return ""
	}
	line, _, _ := bufio.NewReader(bytes.NewReader(out)).ReadLine()
	return strings.TrimSpace(string(line))
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	s := newStyles(w)
	ok := s.Success.Render("[OK]")
	warn := s.Warning.Render("[WARN]")
	bad := s.Error.Render("[ERROR]")

	fmt.Fprintln(w, "trustforge doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Toolchains (engine: %s)\n", r.Engine)
	for _, tool := range []struct {
		name string
		info toolInfo
	}{{"xelatex", r.XeLaTeX}, {"chrome", r.Chrome}} {
		switch {
		case tool.info.Found && tool.info.Version != "":
			fmt.Fprintf(w, "  %s %s: %s (%s)\n", ok, tool.name, tool.info.Path, tool.info.Version)
		case tool.info.Found:
			fmt.Fprintf(w, "  %s %s: %s\n", ok, tool.name, tool.info.Path)
		case tool.name == r.Engine:
			fmt.Fprintf(w, "  %s %s: not found\n", bad, tool.name)
		default:
			fmt.Fprintf(w, "  %s %s: not found\n", warn, tool.name)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Themes")
	if r.Themes.Selected != "" {
		fmt.Fprintf(w, "  %s Selected: %s\n", ok, r.Themes.Selected)
	}
	fmt.Fprintf(w, "  %s Available: %s\n", ok, strings.Join(r.Themes.Available, ", "))
	if r.Themes.AssetPath != "" {
		fmt.Fprintf(w, "  %s Templates: %s\n", ok, r.Themes.AssetPath)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  %s Platform: %s/%s\n", ok, r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  %s Container: detected (%s)\n", ok, r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintf(w, "  %s CI: detected\n", ok)
	}
	if r.System.TempWritable {
		fmt.Fprintf(w, "  %s Temp directory: writable\n", ok)
	} else {
		fmt.Fprintf(w, "  %s Temp directory: not writable\n", bad)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warn, msg)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, msg := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", bad, msg)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
