package trustforge

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/controls"
	"github.com/alnah/go-trustforge/internal/dateutil"
	"github.com/alnah/go-trustforge/internal/pipeline"
	"github.com/alnah/go-trustforge/internal/render"
	"github.com/alnah/go-trustforge/internal/tabular"
	"github.com/alnah/go-trustforge/internal/theme"
	"github.com/alnah/go-trustforge/internal/toolchain"
)

// DefaultTimeout bounds one PDF compilation when no timeout is configured.
const DefaultTimeout = 2 * time.Minute

// Pipeline carries the configuration of one run: theme, templates, output
// location, PDF toolchain and logger. Everything a render or export needs
// comes from here; there is no package-level state, so two Pipelines with
// different themes can run side by side.
//
// A Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg pipelineConfig

	theme     *theme.Theme
	templates *assets.Resolver
	registry  *controls.Registry
	compiler  toolchain.Compiler
	logger    *zap.Logger

	html  *pipeline.GoldmarkConverter
	latex *pipeline.LaTeXConverter

	// generatedAt is cfg.generatedAt with "auto" expanded.
	generatedAt string
}

// pipelineConfig holds what options set.
type pipelineConfig struct {
	themeName   string
	themeDirs   []string
	assetPath   string
	outDir      string
	toc         bool
	tocTitle    string
	generatedAt string
	lang        string
	keepSource  bool
	timeout     time.Duration
	strict      bool
	workers     int
	include     []string
	exclude     []string
	clock       dateutil.Clock
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTheme selects a theme by name (user directory or built-in) or by
// file path. Empty means the built-in defaults.
func WithTheme(name string) Option {
	return func(p *Pipeline) { p.cfg.themeName = name }
}

// WithThemeDirs adds directories searched for named themes before the
// built-ins.
func WithThemeDirs(dirs ...string) Option {
	return func(p *Pipeline) { p.cfg.themeDirs = append(p.cfg.themeDirs, dirs...) }
}

// WithAssetPath overrides embedded styles and templates with a directory
// of the same layout.
func WithAssetPath(path string) Option {
	return func(p *Pipeline) { p.cfg.assetPath = path }
}

// WithOutDir sets where artifacts are written. Empty writes them next to
// their sources.
func WithOutDir(dir string) Option {
	return func(p *Pipeline) { p.cfg.outDir = dir }
}

// WithTOC turns the generated table of contents on. title may be empty.
func WithTOC(title string) Option {
	return func(p *Pipeline) {
		p.cfg.toc = true
		p.cfg.tocTitle = title
	}
}

// WithGeneratedAt prints a generation date in footers. value is a literal
// date, "auto" or "auto:FORMAT"; it is resolved once, when the Pipeline is
// built.
func WithGeneratedAt(value string) Option {
	return func(p *Pipeline) { p.cfg.generatedAt = value }
}

// WithLang sets the HTML lang attribute.
func WithLang(lang string) Option {
	return func(p *Pipeline) { p.cfg.lang = lang }
}

// WithClock replaces time.Now for "auto" dates.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) { p.cfg.clock = clock }
}

// WithCompiler sets the PDF toolchain. The default is xelatex on PATH.
func WithCompiler(c toolchain.Compiler) Option {
	return func(p *Pipeline) { p.compiler = c }
}

// WithTimeout bounds the default xelatex compiler. It has no effect on a
// compiler given with WithCompiler.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("trustforge: WithTimeout duration must be positive")
	}
	return func(p *Pipeline) { p.cfg.timeout = d }
}

// WithKeepSource writes the intermediate .tex or .html next to each PDF.
func WithKeepSource(keep bool) Option {
	return func(p *Pipeline) { p.cfg.keepSource = keep }
}

// WithStrict makes exports fail on the first invalid record instead of
// skipping it.
func WithStrict(strict bool) Option {
	return func(p *Pipeline) { p.cfg.strict = strict }
}

// WithWorkers bounds parallel work. Zero picks a value from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.cfg.workers = n }
}

// WithSources sets the doublestar include and exclude patterns used to
// discover sources in a directory.
func WithSources(include, exclude []string) Option {
	return func(p *Pipeline) {
		p.cfg.include = include
		p.cfg.exclude = exclude
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRegistry replaces the control catalog registry. The default holds
// the built-in catalogs.
func WithRegistry(r *Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// New builds a Pipeline. It fails when the theme cannot be resolved, the
// asset path is unusable or the generation date format is invalid.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg: pipelineConfig{
			timeout: DefaultTimeout,
			clock:   time.Now,
		},
		html:  pipeline.NewGoldmarkConverter(),
		latex: pipeline.NewLaTeXConverter(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.registry == nil {
		p.registry = controls.NewRegistry()
	}

	templates, err := assets.NewResolver(p.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("asset path %q: %w", p.cfg.assetPath, err)
	}
	p.templates = templates

	th, err := theme.NewResolver(p.cfg.themeDirs...).Resolve(p.cfg.themeName)
	if err != nil {
		return nil, err
	}
	p.theme = th

	if p.cfg.generatedAt != "" {
		p.generatedAt, err = dateutil.Resolve(p.cfg.generatedAt, p.cfg.clock())
		if err != nil {
			return nil, fmt.Errorf("generated-at %q: %w", p.cfg.generatedAt, err)
		}
	}

	if p.compiler == nil {
		p.compiler = &toolchain.XeLaTeX{Timeout: p.cfg.timeout, Logger: p.logger}
	}

	p.logger.Debug("pipeline ready",
		zap.String("theme", th.Name),
		zap.String("engine", string(p.compiler.Format())),
		zap.String("out", p.cfg.outDir))
	return p, nil
}

// Theme returns the resolved theme.
func (p *Pipeline) Theme() *Theme {
	return p.theme
}

// Registry returns the control catalogs known to this run.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Logger returns the pipeline logger.
func (p *Pipeline) Logger() *zap.Logger {
	return p.logger
}

// Close releases the PDF toolchain when it holds resources (a browser).
func (p *Pipeline) Close() error {
	if c, ok := p.compiler.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (p *Pipeline) policy() tabular.Policy {
	return tabular.Policy{Strict: p.cfg.strict}
}

// workers resolves the parallelism for format. Browsers are memory heavy
// and capped; everything else follows GOMAXPROCS.
func (p *Pipeline) workers(format toolchain.SourceFormat) int {
	return toolchain.ResolvePoolSize(p.cfg.workers, format)
}

func (p *Pipeline) report() *render.Report {
	return &render.Report{
		Templates:   p.templates,
		Theme:       p.theme,
		Lang:        p.cfg.lang,
		GeneratedAt: p.generatedAt,
	}
}

func (p *Pipeline) htmlRenderer(outDir string) *render.HTMLRenderer {
	return &render.HTMLRenderer{
		Templates:   p.templates,
		Converter:   p.html,
		TOC:         p.cfg.toc,
		TOCTitle:    p.cfg.tocTitle,
		OutDir:      outDir,
		GeneratedAt: p.generatedAt,
		Lang:        p.cfg.lang,
		Logger:      p.logger,
	}
}

func (p *Pipeline) pdfRenderer(outDir string) *render.PDFRenderer {
	return &render.PDFRenderer{
		Templates:   p.templates,
		Converter:   p.latex,
		Compiler:    p.compiler,
		TOC:         p.cfg.toc,
		OutDir:      outDir,
		GeneratedAt: p.generatedAt,
		KeepSource:  p.cfg.keepSource,
		Logger:      p.logger,
	}
}
