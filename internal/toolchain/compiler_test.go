package toolchain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestToolchainError - Message shapes
// ---------------------------------------------------------------------------

func TestToolchainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ToolchainError
		want string
	}{
		{
			name: "missing",
			err:  &ToolchainError{Tool: "xelatex", Missing: true, Err: errors.New("not in PATH")},
			want: "[xelatex] executable not found: not in PATH",
		},
		{
			name: "timeout with source",
			err:  &ToolchainError{Tool: "chrome", Source: "a.md", Timeout: true},
			want: "[chrome] a.md: timed out",
		},
		{
			name: "failure with output",
			err:  &ToolchainError{Tool: "xelatex", Output: "! LaTeX Error"},
			want: "[xelatex] compilation failed\n! LaTeX Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrToolchain) {
				t.Error("errors.Is(err, ErrToolchain) = false")
			}
		})
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := range 50 {
		lines = append(lines, strings.Repeat("x", i%3+1))
	}
	got := tail(strings.Join(lines, "\n")+"\n\n", 5)
	if n := strings.Count(got, "\n"); n != 4 {
		t.Errorf("tail() kept %d lines, want 5", n+1)
	}
	if tail("", 5) != "" {
		t.Error("tail(\"\") should be empty")
	}
}

func TestEffectiveTimeout(t *testing.T) {
	t.Parallel()

	if got := effectiveTimeout(0); got != DefaultTimeout {
		t.Errorf("effectiveTimeout(0) = %v, want %v", got, DefaultTimeout)
	}
	if got := effectiveTimeout(time.Second); got != time.Second {
		t.Errorf("effectiveTimeout(1s) = %v", got)
	}
}

func TestPrintOptions(t *testing.T) {
	t.Parallel()

	opts := printOptions(25.4)
	if *opts.MarginTop != 1 || *opts.MarginLeft != 1 {
		t.Errorf("margins = %v/%v, want 1 inch", *opts.MarginTop, *opts.MarginLeft)
	}
	if *opts.PaperWidth != a4WidthInches || !opts.PrintBackground {
		t.Errorf("unexpected paper settings: %+v", opts)
	}
}
