package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/alnah/go-trustforge"
	"github.com/alnah/go-trustforge/internal/config"
	"github.com/alnah/go-trustforge/internal/controls"
	"github.com/alnah/go-trustforge/internal/hints"
)

// Palette for status lines.
var (
	colorError   = lipgloss.Color("#F38BA8")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorMuted   = lipgloss.Color("#6C7086")
)

// styles renders status lines for one writer. Colours are dropped when the
// writer is not a terminal.
type styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	return &styles{
		Error:   r.NewStyle().Foreground(colorError).Bold(true),
		Warning: r.NewStyle().Foreground(colorWarning),
		Success: r.NewStyle().Foreground(colorSuccess),
		Muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// printError writes err in red followed by any hint for it.
func printError(w io.Writer, err error) {
	s := newStyles(w)
	fmt.Fprintln(w, s.Error.Render("error:")+" "+err.Error())
	if hint := hintFor(err); hint != "" {
		fmt.Fprintln(w, s.Muted.Render(hint[1:]))
	}
}

// printFailure reports one skipped source of a batch.
func printFailure(w io.Writer, path string, err error) {
	s := newStyles(w)
	fmt.Fprintf(w, "%s %s: %v\n", s.Warning.Render("FAILED"), path, err)
}

// printCreated reports one written file.
func printCreated(w io.Writer, path, detail string) {
	s := newStyles(w)
	line := s.Success.Render("Created") + " " + path
	if detail != "" {
		line += " " + s.Muted.Render("("+detail+")")
	}
	fmt.Fprintln(w, line)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var te *trustforge.ToolchainError
	if errors.As(err, &te) {
		switch {
		case te.Timeout:
			return hints.ForTimeout()
		case te.Tool == "chrome":
			return hints.ForBrowserConnect(os.Getenv)
		case te.Missing:
			return hints.ForXeLaTeXMissing()
		default:
			return hints.ForLaTeXFailure()
		}
	}

	var tnf *trustforge.ThemeNotFoundError
	if errors.As(err, &tnf) {
		return hints.ForThemeNotFound(tnf.Available)
	}

	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultName))
	case errors.Is(err, trustforge.ErrUnknownFramework):
		return hints.ForFrameworkNotFound(controls.NewRegistry().Names())
	case errors.Is(err, trustforge.ErrInvalidRecord):
		// Only strict exports return record errors.
		return hints.ForInvalidRecord(true)
	case errors.Is(err, trustforge.ErrMalformedFrontmatter):
		return hints.ForFrontmatter()
	case errors.Is(err, trustforge.ErrWrite):
		return hints.ForOutputDirectory()
	}
	return ""
}
