package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/process"
)

// DefaultPasses resolves the table of contents and cross references.
const DefaultPasses = 2

// XeLaTeX compiles LaTeX sources with the xelatex binary. Each Compile runs
// in a fresh temporary directory so auxiliary files never leak between
// documents.
type XeLaTeX struct {
	Binary  string // defaults to "xelatex" on PATH
	Passes  int
	Timeout time.Duration
	Logger  *zap.Logger
}

func (x *XeLaTeX) Format() SourceFormat { return FormatLaTeX }

func (x *XeLaTeX) binary() string {
	if x.Binary != "" {
		return x.Binary
	}
	return "xelatex"
}

// LookPath resolves the configured binary.
func (x *XeLaTeX) LookPath() (string, error) {
	return exec.LookPath(x.binary())
}

func (x *XeLaTeX) Compile(ctx context.Context, src Source) ([]byte, error) {
	logger := x.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fail := func(err error, output string) *ToolchainError {
		return &ToolchainError{Tool: "xelatex", Source: src.Name, Output: output, Err: err}
	}

	bin, err := x.LookPath()
	if err != nil {
		tErr := fail(err, "")
		tErr.Missing = true
		return nil, tErr
	}

	dir, err := os.MkdirTemp("", "trustforge-tex-*")
	if err != nil {
		return nil, fail(fmt.Errorf("creating work dir: %w", err), "")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	const job = "document"
	if err := os.WriteFile(filepath.Join(dir, job+".tex"), src.Data, 0o600); err != nil {
		return nil, fail(fmt.Errorf("writing source: %w", err), "")
	}

	ctx, cancel := withTimeout(ctx, x.Timeout)
	defer cancel()

	passes := x.Passes
	if passes < 1 {
		passes = DefaultPasses
	}
	for pass := 1; pass <= passes; pass++ {
		logger.Debug("xelatex pass", zap.String("source", src.Name), zap.Int("pass", pass))

		cmd := exec.CommandContext(ctx, bin, // #nosec G204 -- binary from config, args fixed
			"-interaction=nonstopmode",
			"-halt-on-error",
			"-no-shell-escape",
			"-output-directory="+dir,
			job+".tex",
		)
		cmd.Dir = dir
		process.Bind(cmd)
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out

		if err := cmd.Run(); err != nil {
			output := tail(out.String(), outputTailLines) + readLogTail(filepath.Join(dir, job+".log"))
			tErr := fail(err, output)
			if timedOut(ctx) {
				tErr.Timeout = true
				tErr.Err = fmt.Errorf("after %s", effectiveTimeout(x.Timeout))
			} else if ctxErr := ctx.Err(); ctxErr != nil {
				tErr.Err = ctxErr
			}
			return nil, tErr
		}
	}

	pdf, err := os.ReadFile(filepath.Join(dir, job+".pdf")) // #nosec G304 -- inside our temp dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fail(errors.New("no PDF produced"), readLogTail(filepath.Join(dir, job+".log")))
		}
		return nil, fail(err, "")
	}
	return pdf, nil
}

// readLogTail returns the end of the engine log, prefixed for display, or
// "" when there is none.
func readLogTail(path string) string {
	data, err := os.ReadFile(path) // #nosec G304 -- inside our temp dir
	if err != nil || len(data) == 0 {
		return ""
	}
	return "\n--- " + filepath.Base(path) + " ---\n" + tail(string(data), outputTailLines)
}

var _ Compiler = (*XeLaTeX)(nil)
