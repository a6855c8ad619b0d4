package theme

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// CSSVar is one custom property declaration.
type CSSVar struct {
	Name  string
	Value string
}

// CSSVariables returns the --tf-* custom properties for the theme, sorted
// by name. Optional colours are only emitted when set.
func (t *Theme) CSSVariables() []CSSVar {
	tk := t.Tokens
	vars := []CSSVar{
		{"--tf-primary", tk.Color.Primary},
		{"--tf-text", tk.Color.Text},
		{"--tf-muted", tk.Color.Muted},
		{"--tf-border", tk.Color.Border},
		{"--tf-bg", tk.Color.Background},
		{"--tf-link", tk.PDF.LinkColor},
		{"--tf-heading", tk.PDF.HeadingColor},
		{"--tf-font-body", cssFont(tk.Typography.FontBody)},
		{"--tf-font-heading", cssFont(tk.Typography.FontHeading)},
		{"--tf-font-logo", cssFont(tk.Typography.FontLogo)},
		{"--tf-font-mono", cssFont(tk.Typography.FontMono)},
		{"--tf-scale", formatNumber(tk.Typography.Scale)},
		{"--tf-line-height", formatNumber(tk.Typography.LineHeight)},
		{"--tf-logo-height", formatNumber(tk.Brand.LogoHeightMM) + "mm"},
		{"--tf-page-margin", formatNumber(tk.Layout.PageMarginsMM) + "mm"},
		{"--tf-max-width", strconv.Itoa(tk.HTML.MaxWidthPX) + "px"},
		{"--tf-heading-weight", strconv.Itoa(tk.HTML.HeadingWeight)},
	}
	optional := []CSSVar{
		{"--tf-primary-light", tk.Color.PrimaryLight},
		{"--tf-primary-dark", tk.Color.PrimaryDark},
		{"--tf-secondary", tk.Color.Secondary},
		{"--tf-accent", tk.Color.Accent},
	}
	for _, v := range optional {
		if v.Value != "" {
			vars = append(vars, v)
		}
	}
	slices.SortFunc(vars, func(a, b CSSVar) int { return strings.Compare(a.Name, b.Name) })
	return vars
}

// Stylesheet renders the custom properties as a :root rule.
func (t *Theme) Stylesheet() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range t.CSSVariables() {
		fmt.Fprintf(&b, "  %s: %s;\n", v.Name, v.Value)
	}
	b.WriteString("}\n")
	return b.String()
}

// CodeStyle returns the chroma style name in effect. Unknown names fall
// back to DefaultCodeStyle.
func (t *Theme) CodeStyle() string {
	name := t.Tokens.Code.Style
	if _, ok := styles.Registry[name]; ok {
		return name
	}
	return DefaultCodeStyle
}

// ChromaCSS renders the class-based highlighting stylesheet for the
// theme's code style.
func (t *Theme) ChromaCSS() (string, error) {
	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, styles.Get(t.CodeStyle())); err != nil {
		return "", fmt.Errorf("chroma css: %w", err)
	}
	return b.String(), nil
}

// LaTeXColors holds colours in xcolor HTML model form (RRGGBB, no hash).
type LaTeXColors struct {
	Primary string
	Text    string
	Muted   string
	Border  string
	Link    string
	Heading string
}

func (t *Theme) LaTeXColors() LaTeXColors {
	c := t.Tokens.Color
	return LaTeXColors{
		Primary: latexHex(c.Primary),
		Text:    latexHex(c.Text),
		Muted:   latexHex(c.Muted),
		Border:  latexHex(c.Border),
		Link:    latexHex(t.Tokens.PDF.LinkColor),
		Heading: latexHex(t.Tokens.PDF.HeadingColor),
	}
}

func latexHex(s string) string {
	return strings.ToUpper(strings.TrimPrefix(s, "#"))
}

// cssFont quotes a font family name for use in a font-family list.
func cssFont(name string) string {
	return strconv.Quote(name)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
