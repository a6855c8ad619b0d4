package trustforge

import (
	"github.com/alnah/go-trustforge/internal/controls"
	"github.com/alnah/go-trustforge/internal/document"
	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/frontmatter"
	"github.com/alnah/go-trustforge/internal/index"
	"github.com/alnah/go-trustforge/internal/pipeline"
	"github.com/alnah/go-trustforge/internal/render"
	"github.com/alnah/go-trustforge/internal/tabular"
	"github.com/alnah/go-trustforge/internal/theme"
	"github.com/alnah/go-trustforge/internal/toolchain"
)

// Error types. Each names the offending file or record and supports
// errors.As; each also matches its sentinel below with errors.Is.
type (
	MalformedFrontmatterError = frontmatter.MalformedFrontmatterError
	MissingFieldError         = document.MissingFieldError
	ConversionError           = pipeline.ConversionError
	ThemeNotFoundError        = theme.ThemeNotFoundError
	InvalidThemeError         = theme.InvalidThemeError
	TemplateError             = render.TemplateError
	AssetNotFoundError        = render.AssetNotFoundError
	ToolchainError            = toolchain.ToolchainError
	WriteError                = fileutil.WriteError
	InvalidRecordError        = tabular.InvalidRecordError
	SkipError                 = index.SkipError
)

// Sentinel errors.
var (
	ErrMalformedFrontmatter = frontmatter.ErrMalformed
	ErrMissingField         = document.ErrMissingField
	ErrConversion           = pipeline.ErrConversion
	ErrThemeNotFound        = theme.ErrThemeNotFound
	ErrInvalidTheme         = theme.ErrInvalidTheme
	ErrTemplate             = render.ErrTemplate
	ErrAssetNotFound        = render.ErrAssetNotFound
	ErrNoCompiler           = render.ErrNoCompiler
	ErrToolchain            = toolchain.ErrToolchain
	ErrWrite                = fileutil.ErrWrite
	ErrInvalidRecord        = tabular.ErrInvalidRecord
	ErrMalformedRecordFile  = tabular.ErrMalformedFile
	ErrIndexRoot            = index.ErrRoot
	ErrUnknownFramework     = controls.ErrUnknownFramework
)
