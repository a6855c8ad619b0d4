package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-trustforge/internal/fileutil"
)

// Inline highlight markup; the color is defined by the document template.
const (
	latexMarkStart = `\colorbox{tfhighlight}{`
	latexMarkEnd   = `}`
)

var sectionCommands = [...]string{
	1: `\section`,
	2: `\subsection`,
	3: `\subsubsection`,
	4: `\paragraph`,
	5: `\subparagraph`,
	6: `\subparagraph`,
}

var enumCounters = [...]string{"enumi", "enumii", "enumiii", "enumiv"}

// LaTeXConverter converts Markdown to a LaTeX body by walking the goldmark
// AST. The output is meant to be placed inside a document template.
type LaTeXConverter struct {
	md goldmark.Markdown
}

// NewLaTeXConverter creates a converter using the same parser options as the
// HTML converter.
func NewLaTeXConverter() *LaTeXConverter {
	return &LaTeXConverter{md: newMarkdown(false)}
}

// ToLaTeX converts preprocessed Markdown. source locates relative images and
// is reported in warnings.
func (c *LaTeXConverter) ToLaTeX(ctx context.Context, source, content string) (Fragment, error) {
	return withContext(ctx, func() (Fragment, error) {
		src := []byte(content)
		doc := c.md.Parser().Parse(text.NewReader(src))

		w := &latexWriter{
			src:       src,
			source:    source,
			baseDir:   filepath.Dir(source),
			footnotes: collectFootnotes(doc),
		}
		w.children(doc)
		return Fragment{Content: w.String(), Warnings: w.warnings}, nil
	})
}

type latexWriter struct {
	strings.Builder
	src       []byte
	source    string
	baseDir   string
	footnotes map[int]*extast.Footnote
	warnings  []*ConversionError
	enumDepth int
}

func (w *latexWriter) warn(n ast.Node, construct, detail string) {
	w.warnings = append(w.warnings, &ConversionError{
		Source: w.source, Line: lineOf(n, w.src), Construct: construct, Target: TargetLaTeX, Detail: detail,
	})
}

func (w *latexWriter) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.node(c)
	}
}

// inline renders n's children into a separate buffer.
func (w *latexWriter) inline(n ast.Node) string {
	sub := &latexWriter{src: w.src, source: w.source, baseDir: w.baseDir, footnotes: w.footnotes, enumDepth: w.enumDepth}
	sub.children(n)
	w.warnings = append(w.warnings, sub.warnings...)
	return sub.String()
}

func (w *latexWriter) node(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		w.heading(n)
	case *ast.Paragraph:
		w.children(n)
		w.WriteString("\n\n")
	case *ast.TextBlock:
		w.children(n)
		w.WriteString("\n")
	case *ast.Text:
		w.text(n)
	case *ast.String:
		w.WriteString(markup(EscapeLaTeX(string(n.Value))))
	case *ast.Emphasis:
		cmd := `\emph{`
		if n.Level >= 2 {
			cmd = `\textbf{`
		}
		w.WriteString(cmd + w.inline(n) + "}")
	case *ast.CodeSpan:
		w.WriteString(`\texttt{` + EscapeLaTeX(restoreMarkPlaceholders(w.rawText(n))) + "}")
	case *ast.FencedCodeBlock:
		if lang := n.Language(w.src); len(lang) > 0 {
			w.WriteString(`\noindent\textit{` + EscapeLaTeX(string(lang)) + "}\n")
		}
		w.verbatim(n)
	case *ast.CodeBlock:
		w.verbatim(n)
	case *ast.List:
		w.list(n)
	case *ast.ListItem:
		w.WriteString(`\item `)
		w.children(n)
	case *extast.TaskCheckBox:
		if n.IsChecked {
			w.WriteString(`$\boxtimes$ `)
		} else {
			w.WriteString(`$\square$ `)
		}
	case *ast.Blockquote:
		w.WriteString("\\begin{quote}\n")
		w.children(n)
		w.WriteString("\\end{quote}\n\n")
	case *ast.ThematicBreak:
		w.WriteString("\\noindent\\hrulefill\n\n")
	case *ast.Link:
		w.link(n)
	case *ast.AutoLink:
		url := string(n.URL(w.src))
		if n.AutoLinkType == ast.AutoLinkEmail {
			w.WriteString(`\href{mailto:` + escapeURL(url) + `}{\nolinkurl{` + escapeURL(url) + "}}")
			return
		}
		w.WriteString(`\url{` + escapeURL(url) + "}")
	case *ast.Image:
		w.image(n)
	case *ast.RawHTML:
		w.warn(n, "inline raw HTML", "skipped")
	case *ast.HTMLBlock:
		w.warn(n, "raw HTML block", "skipped")
	case *extast.Table:
		w.table(n)
	case *extast.Strikethrough:
		w.WriteString(`\sout{` + w.inline(n) + "}")
	case *extast.FootnoteLink:
		w.footnote(n)
	case *extast.FootnoteList, *extast.FootnoteBacklink:
		// Footnote bodies are emitted at their reference.
	default:
		w.children(n)
	}
}

func (w *latexWriter) heading(n *ast.Heading) {
	level := min(max(n.Level, 1), 6)
	w.WriteString(sectionCommands[level] + "{" + w.inline(n) + "}")
	if id, ok := n.AttributeString("id"); ok {
		if b, ok := id.([]byte); ok && len(b) > 0 {
			w.WriteString(`\label{sec:` + string(b) + "}")
		}
	}
	w.WriteString("\n\n")
}

func (w *latexWriter) text(n *ast.Text) {
	value := n.Segment.Value(w.src)
	if !n.IsRaw() {
		value = util.UnescapePunctuations(value)
		value = util.ResolveNumericReferences(value)
		value = util.ResolveEntityNames(value)
	}
	w.WriteString(markup(EscapeLaTeX(string(value))))

	switch {
	case n.HardLineBreak():
		w.WriteString("\\\\\n")
	case n.SoftLineBreak():
		w.WriteString("\n")
	}
}

// markup converts highlight placeholders in escaped text.
func markup(s string) string {
	if !strings.ContainsAny(s, MarkStartPlaceholder+MarkEndPlaceholder) {
		return s
	}
	return strings.NewReplacer(MarkStartPlaceholder, latexMarkStart, MarkEndPlaceholder, latexMarkEnd).Replace(s)
}

func (w *latexWriter) rawText(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(w.src))
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return b.String()
}

func (w *latexWriter) verbatim(n ast.Node) {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.src))
	}
	body := escapeVerbatim(b.String())
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	w.WriteString("\\begin{verbatim}\n" + body + "\\end{verbatim}\n\n")
}

func (w *latexWriter) list(n *ast.List) {
	if !n.IsOrdered() {
		w.WriteString("\\begin{itemize}\n")
		w.children(n)
		w.WriteString("\\end{itemize}\n\n")
		return
	}

	w.WriteString("\\begin{enumerate}\n")
	if n.Start > 1 && w.enumDepth < len(enumCounters) {
		fmt.Fprintf(w, "\\setcounter{%s}{%d}\n", enumCounters[w.enumDepth], n.Start-1)
	}
	w.enumDepth++
	w.children(n)
	w.enumDepth--
	w.WriteString("\\end{enumerate}\n\n")
}

func (w *latexWriter) link(n *ast.Link) {
	label := w.inline(n)
	dest := string(n.Destination)
	if anchor, ok := strings.CutPrefix(dest, "#"); ok && anchor != "" {
		w.WriteString(`\hyperref[sec:` + anchor + "]{" + label + "}")
		return
	}
	w.WriteString(`\href{` + escapeURL(dest) + "}{" + label + "}")
}

func (w *latexWriter) image(n *ast.Image) {
	alt := w.inline(n)
	dest := string(n.Destination)

	if !fileutil.IsURL(dest) && dest != "" {
		path := dest
		if !filepath.IsAbs(path) {
			path = filepath.Join(w.baseDir, path)
		}
		if fileutil.FileExists(path) {
			abs, err := filepath.Abs(path)
			if err == nil {
				path = abs
			}
			w.WriteString(`\includegraphics[width=\linewidth,keepaspectratio]{` + filepath.ToSlash(path) + "}")
			return
		}
		w.warn(n, "image", "file not found: "+dest)
	} else {
		w.warn(n, "image", "remote images are not embedded")
	}

	if alt != "" {
		w.WriteString(`\emph{` + alt + "}")
	}
}

func (w *latexWriter) table(n *extast.Table) {
	var header *extast.TableHeader
	var rows []*extast.TableRow
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch r := c.(type) {
		case *extast.TableHeader:
			header = r
		case *extast.TableRow:
			rows = append(rows, r)
		}
	}
	if header == nil {
		return
	}

	var colSpec strings.Builder
	for c := header.FirstChild(); c != nil; c = c.NextSibling() {
		cell, ok := c.(*extast.TableCell)
		if !ok {
			continue
		}
		switch cell.Alignment {
		case extast.AlignCenter:
			colSpec.WriteByte('c')
		case extast.AlignRight:
			colSpec.WriteByte('r')
		default:
			colSpec.WriteByte('l')
		}
	}

	w.WriteString("\\begin{center}\n\\begin{tabular}{" + colSpec.String() + "}\n\\hline\n")
	w.WriteString(w.row(header, true) + "\\hline\n")
	for _, r := range rows {
		w.WriteString(w.row(r, false))
	}
	w.WriteString("\\hline\n\\end{tabular}\n\\end{center}\n\n")
}

func (w *latexWriter) row(n ast.Node, bold bool) string {
	var cells []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		content := strings.TrimSpace(w.inline(c))
		if bold && content != "" {
			content = `\textbf{` + content + "}"
		}
		cells = append(cells, content)
	}
	return strings.Join(cells, " & ") + ` \\` + "\n"
}

func (w *latexWriter) footnote(n *extast.FootnoteLink) {
	fn, ok := w.footnotes[n.Index]
	if !ok {
		return
	}
	var parts []string
	for c := fn.FirstChild(); c != nil; c = c.NextSibling() {
		if s := strings.TrimSpace(w.inline(c)); s != "" {
			parts = append(parts, s)
		}
	}
	w.WriteString(`\footnote{` + strings.Join(parts, " ") + "}")
}

func collectFootnotes(doc ast.Node) map[int]*extast.Footnote {
	out := make(map[int]*extast.Footnote)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fn, ok := n.(*extast.Footnote); ok && entering {
			out[fn.Index] = fn
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}
