package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"text/template"
	"text/template/parse"

	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/document"
	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/pipeline"
	"github.com/alnah/go-trustforge/internal/theme"
	"github.com/alnah/go-trustforge/internal/toolchain"
)

// LaTeX templates use << >> so they do not collide with TeX braces.
const (
	latexLeftDelim  = "<<"
	latexRightDelim = ">>"
)

// ErrNoCompiler is returned by PDFRenderer.Render without a Compiler.
var ErrNoCompiler = errors.New("no PDF compiler configured")

// PDFRenderer renders a Document to PDF through a toolchain.Compiler. LaTeX
// compilers receive a document built from the policy.tex template; HTML
// compilers receive the HTML page.
type PDFRenderer struct {
	Templates   assets.Loader
	Converter   *pipeline.LaTeXConverter
	Compiler    toolchain.Compiler
	TOC         bool
	OutDir      string
	GeneratedAt string

	// KeepSource writes the intermediate source (.tex or .html) next to
	// the PDF.
	KeepSource bool

	Logger *zap.Logger
}

type latexPage struct {
	Title        string
	Subtitle     string
	Version      string
	Owner        string
	LastReviewed string
	AppliesTo    string
	Refs         string
	Footer       string
	Brand        string
	Watermark    string
	GeneratedAt  string
	Body         string
	TOC          bool
	ShowHeader   bool
	ShowFooter   bool
	LogoPath     string
	LogoHeightMM string
	MarginMM     string
	LineHeight   string
	Fonts        latexFonts
	Colors       theme.LaTeXColors
}

type latexFonts struct {
	Body    string
	Heading string
	Mono    string
}

// OutputPath returns where the PDF for doc is written.
func (r *PDFRenderer) OutputPath(doc *document.Document) string {
	dir := r.OutDir
	if dir == "" {
		dir = filepath.Dir(doc.Path)
	}
	return fileutil.OutputPath(doc.Path, dir, ".pdf")
}

// LaTeXSource builds the complete LaTeX document for doc. All metadata is
// escaped; the body comes from the LaTeX converter.
func (r *PDFRenderer) LaTeXSource(ctx context.Context, doc *document.Document, th *theme.Theme) ([]byte, error) {
	src, _, err := r.latex(ctx, doc, th)
	return src, err
}

func (r *PDFRenderer) latex(ctx context.Context, doc *document.Document, th *theme.Theme) ([]byte, []error, error) {
	if th == nil {
		th = theme.Default()
	}
	conv := r.Converter
	if conv == nil {
		conv = pipeline.NewLaTeXConverter()
	}

	pre := (&pipeline.Preprocessor{StripManualTOC: r.TOC}).Process(ctx, doc.Body)
	frag, err := conv.ToLaTeX(ctx, doc.Path, pre)
	if err != nil {
		return nil, nil, err
	}
	warnings := reportWarnings(orNop(r.Logger), doc, frag.Warnings)

	tk := th.Tokens
	m := doc.Metadata
	page := latexPage{
		Title:        pipeline.EscapeLaTeX(m.Title),
		Subtitle:     pipeline.EscapeLaTeX(m.Subtitle),
		Version:      pipeline.EscapeLaTeX(m.Version),
		Owner:        pipeline.EscapeLaTeX(m.Owner),
		LastReviewed: pipeline.EscapeLaTeX(m.LastReviewed),
		AppliesTo:    escapeList(m.AppliesTo),
		Refs:         escapeList(m.Refs),
		Footer:       pipeline.EscapeLaTeX(footerText(doc, th)),
		Brand:        pipeline.EscapeLaTeX(tk.Brand.Name),
		Watermark:    pipeline.EscapeLaTeX(tk.Layout.Watermark),
		GeneratedAt:  pipeline.EscapeLaTeX(r.GeneratedAt),
		Body:         frag.Content,
		TOC:          r.TOC,
		ShowHeader:   tk.Layout.Header,
		ShowFooter:   tk.Layout.Footer,
		LogoHeightMM: formatFloat(tk.Brand.LogoHeightMM),
		MarginMM:     formatFloat(tk.Layout.PageMarginsMM),
		LineHeight:   formatFloat(tk.Typography.LineHeight),
		Fonts: latexFonts{
			Body:    pipeline.EscapeLaTeX(tk.Typography.FontBody),
			Heading: pipeline.EscapeLaTeX(tk.Typography.FontHeading),
			Mono:    pipeline.EscapeLaTeX(tk.Typography.FontMono),
		},
		Colors: th.LaTeXColors(),
	}
	if logo := tk.Brand.LogoPath; logo != "" {
		if !fileutil.FileExists(logo) {
			return nil, nil, &AssetNotFoundError{Path: logo, Kind: "logo"}
		}
		abs, err := filepath.Abs(logo)
		if err != nil {
			return nil, nil, err
		}
		page.LogoPath = filepath.ToSlash(abs)
	}

	tmpl, err := loadTemplate(r.Templates, assets.PolicyTemplate, assets.LaTeX)
	if err != nil {
		return nil, nil, err
	}
	out, err := executeLaTeX(tmpl, page)
	if err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}

func executeLaTeX(t assets.Template, data latexPage) ([]byte, error) {
	label := templateLabel(t)
	tmpl, err := template.New(t.Name).
		Delims(latexLeftDelim, latexRightDelim).
		Funcs(templateFuncs).
		Option("missingkey=error").
		Parse(t.Source)
	if err != nil {
		return nil, &TemplateError{Template: label, Reason: "parse failed", Err: err}
	}
	var trees []*parse.Tree
	for _, tt := range tmpl.Templates() {
		trees = append(trees, tt.Tree)
	}
	if err := checkBody(label, trees); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, &TemplateError{Template: label, Reason: "execution failed", Err: err}
	}
	return buf.Bytes(), nil
}

// Render produces the PDF artifact for doc. Compiler failures are returned
// unchanged (*toolchain.ToolchainError).
func (r *PDFRenderer) Render(ctx context.Context, doc *document.Document, th *theme.Theme) (*Artifact, error) {
	if r.Compiler == nil {
		return nil, ErrNoCompiler
	}
	logger := orNop(r.Logger)
	if th == nil {
		th = theme.Default()
	}

	var (
		src      []byte
		srcExt   string
		warnings []error
	)
	switch format := r.Compiler.Format(); format {
	case toolchain.FormatLaTeX:
		var err error
		src, warnings, err = r.latex(ctx, doc, th)
		if err != nil {
			return nil, err
		}
		srcExt = ".tex"
	case toolchain.FormatHTML:
		page, err := r.printableHTML().Render(ctx, doc, th)
		if err != nil {
			return nil, err
		}
		src, warnings, srcExt = page.Data, page.Warnings, ".html"
	default:
		return nil, fmt.Errorf("unsupported compiler source format %q", format)
	}

	art := &Artifact{Path: r.OutputPath(doc), Warnings: warnings}
	if r.KeepSource {
		art.Sidecars = append(art.Sidecars, Sidecar{
			Path: fileutil.OutputPath(doc.Path, filepath.Dir(art.Path), srcExt),
			Data: src,
		})
	}

	pdf, err := r.Compiler.Compile(ctx, toolchain.Source{
		Name:     doc.Path,
		Data:     src,
		MarginMM: th.Tokens.Layout.PageMarginsMM,
	})
	if err != nil {
		return nil, err
	}
	art.Data = pdf

	logger.Debug("rendered pdf",
		zap.String("source", doc.Path),
		zap.String("output", art.Path),
		zap.String("engine", string(r.Compiler.Format())))
	return art, nil
}

// printableHTML is the HTML renderer used for browser printing.
func (r *PDFRenderer) printableHTML() *HTMLRenderer {
	return &HTMLRenderer{
		Templates:   r.Templates,
		TOC:         r.TOC,
		GeneratedAt: r.GeneratedAt,
		FileURLs:    true,
		Logger:      r.Logger,
	}
}

func escapeList(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += pipeline.EscapeLaTeX(item)
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
