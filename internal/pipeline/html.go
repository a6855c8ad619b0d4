package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// newMarkdown builds the goldmark instance shared by both targets so HTML
// anchors and LaTeX labels come from the same heading IDs.
func newMarkdown(highlight bool) goldmark.Markdown {
	exts := []goldmark.Extender{
		extension.GFM,      // tables, strikethrough, autolinks, task lists
		extension.Footnote, // [^1]
	}
	if highlight {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			// No html.WithUnsafe: raw HTML is omitted and reported.
		),
	)
}

// GoldmarkConverter converts Markdown to an HTML fragment.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a converter with GFM, footnotes, heading IDs
// and class-based syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{md: newMarkdown(true)}
}

// ToHTML converts preprocessed Markdown to an HTML fragment. Highlight
// placeholders become <mark> elements. Goldmark has no context support, so
// conversion runs in a goroutine raced against ctx.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, source, content string) (Fragment, error) {
	return withContext(ctx, func() (Fragment, error) {
		src := []byte(content)
		doc := c.md.Parser().Parse(text.NewReader(src))

		warnings := rawHTMLWarnings(doc, src, source, TargetHTML)

		var buf bytes.Buffer
		if err := c.md.Renderer().Render(&buf, src, doc); err != nil {
			return Fragment{}, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
		}
		return Fragment{Content: ConvertMarkPlaceholders(buf.String()), Warnings: warnings}, nil
	})
}

func rawHTMLWarnings(doc ast.Node, src []byte, source, target string) []*ConversionError {
	var out []*ConversionError
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.RawHTML:
			out = append(out, &ConversionError{Source: source, Line: lineOf(n, src), Construct: "inline raw HTML", Target: target})
		case *ast.HTMLBlock:
			out = append(out, &ConversionError{Source: source, Line: lineOf(n, src), Construct: "raw HTML block", Target: target})
		}
		return ast.WalkContinue, nil
	})
	return out
}

func withContext(ctx context.Context, fn func() (Fragment, error)) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return Fragment{}, err
	}

	type result struct {
		frag Fragment
		err  error
	}
	done := make(chan result, 1)

	go func() {
		frag, err := fn()
		done <- result{frag: frag, err: err}
	}()

	select {
	case <-ctx.Done():
		return Fragment{}, ctx.Err()
	case r := <-done:
		return r.frag, r.err
	}
}
