// Package toolchain turns a rendered document source into PDF bytes using
// an external engine: XeLaTeX for LaTeX sources, headless Chrome for HTML.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SourceFormat is the document format a Compiler consumes.
type SourceFormat string

const (
	FormatLaTeX SourceFormat = "latex"
	FormatHTML  SourceFormat = "html"
)

// DefaultTimeout bounds one Compile call when no timeout is configured.
const DefaultTimeout = 2 * time.Minute

// Source is a complete document ready for compilation.
type Source struct {
	Name     string // used in diagnostics
	Data     []byte
	MarginMM float64 // page margins for engines that set them (Chrome)
}

// Compiler produces PDF bytes from a Source. Implementations must honor
// context cancellation.
type Compiler interface {
	Compile(ctx context.Context, src Source) ([]byte, error)
	Format() SourceFormat
}

// ErrToolchain is matched by *ToolchainError.
var ErrToolchain = errors.New("toolchain failed")

// outputTailLines bounds the diagnostic output kept in a ToolchainError.
const outputTailLines = 40

// ToolchainError reports a failed external compile. Output carries the
// captured diagnostics (process output and the tail of the engine log).
type ToolchainError struct {
	Tool    string
	Source  string
	Output  string
	Timeout bool
	Missing bool
	Err     error
}

func (e *ToolchainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Tool)
	if e.Source != "" {
		b.WriteString(e.Source + ": ")
	}
	switch {
	case e.Missing:
		b.WriteString("executable not found")
	case e.Timeout:
		b.WriteString("timed out")
	default:
		b.WriteString("compilation failed")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	if e.Output != "" {
		b.WriteString("\n" + e.Output)
	}
	return b.String()
}

func (e *ToolchainError) Unwrap() error { return e.Err }

func (e *ToolchainError) Is(target error) bool { return target == ErrToolchain }

// tail returns the last n non-empty-trailing lines of s.
func tail(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// effectiveTimeout returns d, or DefaultTimeout when d is not positive.
func effectiveTimeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return DefaultTimeout
}

// withTimeout applies the effective timeout and records whether the
// deadline, not the caller, ended the context.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeoutCause(ctx, effectiveTimeout(d), errCompileTimeout)
}

var errCompileTimeout = errors.New("compile timeout exceeded")

// timedOut reports whether ctx ended because its compile timeout expired.
func timedOut(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), errCompileTimeout)
}
