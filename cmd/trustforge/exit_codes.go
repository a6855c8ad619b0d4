package main

import (
	"errors"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-trustforge"
	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/config"
	"github.com/alnah/go-trustforge/internal/dateutil"
)

// Exit codes for the trustforge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Success, including batches with logged skips
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, theme or template
	ExitIO         = 3 // File not found, permission denied, write failure
	ExitToolchain  = 4 // xelatex or Chrome failure
	ExitValidation = 5 // Invalid document or record
)

// ErrUsage marks command line mistakes.
var ErrUsage = errors.New("usage error")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Toolchain errors (exit 4)
	if errors.Is(err, trustforge.ErrToolchain) ||
		errors.Is(err, trustforge.ErrNoCompiler) {
		return ExitToolchain
	}

	// Document and record validation (exit 5)
	if errors.Is(err, trustforge.ErrMalformedFrontmatter) ||
		errors.Is(err, trustforge.ErrMissingField) ||
		errors.Is(err, trustforge.ErrInvalidRecord) ||
		errors.Is(err, trustforge.ErrMalformedRecordFile) {
		return ExitValidation
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, flag.ErrHelp) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, trustforge.ErrThemeNotFound) ||
		errors.Is(err, trustforge.ErrInvalidTheme) ||
		errors.Is(err, trustforge.ErrTemplate) ||
		errors.Is(err, trustforge.ErrUnknownFramework) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, dateutil.ErrInvalidDate) ||
		errors.Is(err, assets.ErrInvalidBasePath) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, trustforge.ErrWrite) ||
		errors.Is(err, trustforge.ErrIndexRoot) ||
		errors.Is(err, trustforge.ErrAssetNotFound) {
		return ExitIO
	}

	return ExitGeneral
}
