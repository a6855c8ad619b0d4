package render

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"text/template/parse"

	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/document"
	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/pipeline"
	"github.com/alnah/go-trustforge/internal/theme"
)

// DefaultTOCTitle heads the generated table of contents.
const DefaultTOCTitle = "Contents"

// assetsDir is the directory, relative to an HTML output, that receives
// copied theme assets.
const assetsDir = "assets"

// HTMLRenderer renders a Document into a standalone HTML5 page.
type HTMLRenderer struct {
	Templates assets.Loader // nil: embedded templates
	Converter *pipeline.GoldmarkConverter
	TOC       bool
	TOCTitle  string
	OutDir    string // defaults to the source directory

	// GeneratedAt is printed in the footer when non-empty. Callers resolve
	// "auto" values beforehand so rendering stays deterministic.
	GeneratedAt string
	Lang        string

	// FileURLs points images and the logo at their files through file://
	// URLs instead of paths relative to OutDir, and copies nothing. Used
	// when the page is printed by a browser.
	FileURLs bool

	Logger *zap.Logger
}

type htmlPage struct {
	Lang        string
	Meta        document.Metadata
	Theme       theme.Tokens
	Stylesheet  template.CSS
	LogoSrc     template.URL
	TOC         template.HTML
	Body        template.HTML
	Footer      string
	GeneratedAt string
}

// OutputPath returns where the page for doc is written.
func (r *HTMLRenderer) OutputPath(doc *document.Document) string {
	return fileutil.OutputPath(doc.Path, r.outDir(doc), ".html")
}

func (r *HTMLRenderer) outDir(doc *document.Document) string {
	if r.OutDir != "" {
		return r.OutDir
	}
	return filepath.Dir(doc.Path)
}

// Render converts doc with th (defaults when nil). Conversion warnings are
// logged and attached to the artifact; they never fail the render.
func (r *HTMLRenderer) Render(ctx context.Context, doc *document.Document, th *theme.Theme) (*Artifact, error) {
	logger := orNop(r.Logger)
	if th == nil {
		th = theme.Default()
	}
	conv := r.Converter
	if conv == nil {
		conv = pipeline.NewGoldmarkConverter()
	}

	pre := (&pipeline.Preprocessor{StripManualTOC: r.TOC}).Process(ctx, doc.Body)
	frag, err := conv.ToHTML(ctx, doc.Path, pre)
	if err != nil {
		return nil, err
	}
	art := &Artifact{Path: r.OutputPath(doc), Warnings: reportWarnings(logger, doc, frag.Warnings)}

	srcDir := filepath.Dir(doc.Path)
	rewrite := pipeline.RelativeTo(srcDir, r.outDir(doc))
	if r.FileURLs {
		rewrite = pipeline.FileURLsFrom(srcDir)
	}
	body, err := pipeline.RewriteImagePaths(frag.Content, rewrite)
	if err != nil {
		return nil, err
	}

	page := htmlPage{
		Lang:        r.lang(),
		Meta:        doc.Metadata,
		Theme:       th.Tokens,
		Body:        template.HTML(body), // #nosec G203 -- goldmark output, raw HTML disabled
		Footer:      footerText(doc, th),
		GeneratedAt: r.GeneratedAt,
	}
	if r.TOC {
		title := r.TOCTitle
		if title == "" {
			title = DefaultTOCTitle
		}
		page.TOC = template.HTML(pipeline.BuildTOC(body, pipeline.TOCOptions{Title: title})) // #nosec G203 -- escaped by BuildTOC
	}

	css, err := r.stylesheet(th)
	if err != nil {
		return nil, err
	}
	page.Stylesheet = template.CSS(css) // #nosec G203 -- sanitized theme and asset CSS

	if logo := th.Tokens.Brand.LogoPath; logo != "" {
		src, sidecar, err := r.logo(logo, art.Path)
		if err != nil {
			return nil, err
		}
		page.LogoSrc = src
		if sidecar != nil {
			art.Sidecars = append(art.Sidecars, *sidecar)
		}
	}

	tmpl, err := loadTemplate(r.Templates, assets.PolicyTemplate, assets.HTML)
	if err != nil {
		return nil, err
	}
	out, err := executeHTML(tmpl, page)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(tmpl.Source, ".Stylesheet") {
		out = pipeline.InjectStylesheet(out, css)
	}
	art.Data = []byte(out)

	logger.Debug("rendered html", zap.String("source", doc.Path), zap.String("output", art.Path))
	return art, nil
}

func (r *HTMLRenderer) lang() string {
	if r.Lang != "" {
		return r.Lang
	}
	return "en"
}

// stylesheet joins theme variables, the base stylesheet and the code
// highlighting rules.
func (r *HTMLRenderer) stylesheet(th *theme.Theme) (string, error) {
	base, err := loadStyle(r.Templates, assets.BaseStyle)
	if err != nil {
		return "", err
	}
	chroma, err := th.ChromaCSS()
	if err != nil {
		return "", err
	}
	return pipeline.SanitizeCSS(th.Stylesheet() + "\n" + base + "\n" + chroma), nil
}

// logo returns the src attribute for the theme logo and, for regular
// output, the copy to place under assets/ next to the page.
func (r *HTMLRenderer) logo(path, outPath string) (template.URL, *Sidecar, error) {
	if !fileutil.FileExists(path) {
		return "", nil, &AssetNotFoundError{Path: path, Kind: "logo"}
	}
	if r.FileURLs {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", nil, err
		}
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
		return template.URL(u.String()), nil, nil // #nosec G203 -- local file URL built here
	}
	name := filepath.Base(path)
	dst := filepath.Join(filepath.Dir(outPath), assetsDir, name)
	return template.URL(assetsDir + "/" + url.PathEscape(name)), &Sidecar{Path: dst, From: path}, nil // #nosec G203 -- relative path built here
}

func executeHTML(t assets.Template, data any) (string, error) {
	return executeHTMLTemplate(t, data, true)
}

func executeHTMLTemplate(t assets.Template, data any, requireBody bool) (string, error) {
	label := templateLabel(t)
	tmpl, err := template.New(t.Name).Funcs(templateFuncs).Parse(t.Source)
	if err != nil {
		return "", &TemplateError{Template: label, Reason: "parse failed", Err: err}
	}
	if requireBody {
		if err := checkBody(label, htmlTrees(tmpl)); err != nil {
			return "", err
		}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &TemplateError{Template: label, Reason: "execution failed", Err: err}
	}
	return buf.String(), nil
}

func htmlTrees(t *template.Template) []*parse.Tree {
	var trees []*parse.Tree
	for _, tt := range t.Templates() {
		trees = append(trees, tt.Tree)
	}
	return trees
}

// checkBody requires exactly one reference to .Body.
func checkBody(label string, trees []*parse.Tree) error {
	if n := countFieldRefs(trees, "Body"); n != 1 {
		return &TemplateError{Template: label, Reason: "must reference .Body exactly once, found " + strconv.Itoa(n)}
	}
	return nil
}

// footerText is the metadata footer, or the brand name when unset.
func footerText(doc *document.Document, th *theme.Theme) string {
	if doc.Metadata.Footer != "" {
		return doc.Metadata.Footer
	}
	return th.Tokens.Brand.Name
}

// reportWarnings maps warning lines back to the source file, logs each one
// and returns them as errors.
func reportWarnings(logger *zap.Logger, doc *document.Document, warnings []*pipeline.ConversionError) []error {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]error, 0, len(warnings))
	for _, w := range warnings {
		shifted := *w
		shifted.Line = doc.SourceLine(w.Line)
		logger.Warn("construct skipped",
			zap.String("source", shifted.Source),
			zap.Int("line", shifted.Line),
			zap.String("construct", shifted.Construct),
			zap.String("target", shifted.Target),
			zap.String("detail", shifted.Detail))
		out = append(out, &shifted)
	}
	return out
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
