// Package hints turns common failures into one actionable line. Every hint
// reads "\n  hint: <text>" so callers can append it to an error message.
package hints

import (
	"slices"
	"strings"

	"github.com/alnah/go-trustforge/internal/fileutil"
)

// IsInContainer reports whether /.dockerenv exists. Tests replace it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by the CI systems we know about.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// ForBrowserConnect returns hints for Chrome launch failures, looking up
// variables through getenv.
func ForBrowserConnect(getenv func(string) string) string {
	inCI := slices.ContainsFunc(ciVars, func(v string) bool { return getenv(v) != "" })

	var hints []string
	if (inCI || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 or pdf.noSandbox in containers and CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN or --chrome-bin to use an installed Chrome")
	}
	return formatHints(hints)
}

// ForXeLaTeXMissing returns hints when the xelatex binary cannot be found.
func ForXeLaTeXMissing() string {
	return formatHints([]string{
		"install TeX Live or MiKTeX with XeLaTeX",
		"or use --engine chrome",
	})
}

// ForLaTeXFailure points at the diagnostics of a failed compile.
func ForLaTeXFailure() string {
	return format("rerun with --keep-tex to inspect the generated source")
}

// ForTimeout suggests a longer per-document budget.
func ForTimeout() string {
	return format("raise --timeout or pdf.timeout for long policies")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/trustforge.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(slashed(p), ".config/trustforge") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory is shown when an artifact cannot be written.
func ForOutputDirectory() string {
	return format("check that --out (or output.dir) is writable")
}

// ForThemeNotFound lists the themes that can be used instead.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForFrameworkNotFound lists the known control frameworks.
func ForFrameworkNotFound(available []string) string {
	if len(available) == 0 {
		return format("use --catalog to load a catalog file")
	}
	return format("available: " + strings.Join(available, ", ") + "; or use --catalog")
}

// ForInvalidRecord suggests the lenient mode after a strict failure.
func ForInvalidRecord(strict bool) string {
	if !strict {
		return ""
	}
	return format("drop --strict to skip invalid records and export the rest")
}

// ForFrontmatter describes the expected frontmatter shape.
func ForFrontmatter() string {
	return format("frontmatter must open and close with a line of three dashes and hold a YAML mapping with a title")
}

func slashed(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format prefixes a non-empty hint.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins hints into one line.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
