package trustforge

import (
	"github.com/alnah/go-trustforge/internal/controls"
	"github.com/alnah/go-trustforge/internal/document"
	"github.com/alnah/go-trustforge/internal/index"
	"github.com/alnah/go-trustforge/internal/render"
	"github.com/alnah/go-trustforge/internal/risk"
	"github.com/alnah/go-trustforge/internal/theme"
	"github.com/alnah/go-trustforge/internal/toolchain"
)

// Documents and artifacts.
type (
	Document = document.Document
	Metadata = document.Metadata
	Artifact = render.Artifact
	Theme    = theme.Theme
)

// PDF toolchain.
type (
	Compiler     = toolchain.Compiler
	Source       = toolchain.Source
	SourceFormat = toolchain.SourceFormat
	XeLaTeX      = toolchain.XeLaTeX
	Chrome       = toolchain.Chrome
	CompilerPool = toolchain.Pool
)

// Source formats a Compiler consumes.
const (
	SourceLaTeX = toolchain.FormatLaTeX
	SourceHTML  = toolchain.FormatHTML
)

// NewCompilerPool spreads compilations over up to n compilers built by
// factory. Use it to print several documents in parallel with Chrome.
func NewCompilerPool(n int, format SourceFormat, factory func() Compiler) *CompilerPool {
	return toolchain.NewPool(n, format, factory)
}

// ResolvePoolSize determines how many documents compile at once.
func ResolvePoolSize(workers int, format SourceFormat) int {
	return toolchain.ResolvePoolSize(workers, format)
}

// Index, control map and risk register.
type (
	IndexRecord   = index.Record
	IndexResult   = index.Result
	Registry      = controls.Registry
	Catalog       = controls.Catalog
	ControlEntry  = controls.Entry
	ControlExport = controls.Export
	RiskEntry     = risk.Entry
	RiskExport    = risk.Export
)
