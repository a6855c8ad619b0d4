package render

import (
	"html/template"
	"strings"

	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/pipeline"
	"github.com/alnah/go-trustforge/internal/theme"
)

// ReportHeader holds the fields every report template receives. Report
// data types embed it.
type ReportHeader struct {
	Lang        string
	Title       string
	Brand       string
	GeneratedAt string
	Stylesheet  template.CSS
}

// Report renders single-page HTML reports (control maps, risk registers)
// with the same stylesheet as policy pages.
type Report struct {
	Templates   assets.Loader
	Theme       *theme.Theme
	Lang        string
	GeneratedAt string
}

// Header builds the shared header for a report titled title.
func (r *Report) Header(title string) (ReportHeader, error) {
	th := r.Theme
	if th == nil {
		th = theme.Default()
	}
	css, err := (&HTMLRenderer{Templates: r.Templates}).stylesheet(th)
	if err != nil {
		return ReportHeader{}, err
	}
	lang := r.Lang
	if lang == "" {
		lang = "en"
	}
	return ReportHeader{
		Lang:        lang,
		Title:       title,
		Brand:       th.Tokens.Brand.Name,
		GeneratedAt: r.GeneratedAt,
		Stylesheet:  template.CSS(css), // #nosec G203 -- sanitized theme and asset CSS
	}, nil
}

// Execute renders the report template name with data. h must be the header
// embedded in data; its stylesheet is injected when the template does not
// place it.
func (r *Report) Execute(name string, h ReportHeader, data any) ([]byte, error) {
	tmpl, err := loadTemplate(r.Templates, name, assets.HTML)
	if err != nil {
		return nil, err
	}
	out, err := executeHTMLTemplate(tmpl, data, false)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(tmpl.Source, ".Stylesheet") {
		out = pipeline.InjectStylesheet(out, string(h.Stylesheet))
	}
	return []byte(out), nil
}
