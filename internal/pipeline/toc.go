package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// TOCOptions controls the generated HTML table of contents.
type TOCOptions struct {
	Title    string
	MinDepth int  // default 2: the H1 usually repeats the document title
	MaxDepth int  // default 3
	Numbered bool // prefix entries with 1., 1.1., ...
}

func (o TOCOptions) bounds() (lo, hi int) {
	lo, hi = o.MinDepth, o.MaxDepth
	if lo < 1 {
		lo = 2
	}
	if hi < 1 || hi > 6 {
		hi = 3
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

type tocEntry struct {
	Level int
	ID    string
	Text  string
}

// headingPattern matches h1-h6 tags with an id attribute.
// Captures: 1=level, 2=id, 3=inner HTML.
var headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// headingText strips tags and decodes entities so the text is not escaped
// twice when written back out.
func headingText(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}

func tocEntries(fragment string, lo, hi int) []tocEntry {
	var out []tocEntry
	for _, m := range headingPattern.FindAllStringSubmatch(fragment, -1) {
		level, _ := strconv.Atoi(m[1])
		if level < lo || level > hi {
			continue
		}
		out = append(out, tocEntry{Level: level, ID: m[2], Text: headingText(m[3])})
	}
	return out
}

// numbering tracks hierarchical counters. The shallowest level seen first
// becomes depth 1 and skipped levels collapse (H2 -> H4 nests one deep).
type numbering struct {
	counters  [6]int
	minLevel  int
	lastDepth int
}

func (n *numbering) next(level int) (label string, depth int) {
	if n.minLevel == 0 {
		n.minLevel = level
	}
	depth = max(level-n.minLevel+1, 1)
	if n.lastDepth > 0 && depth > n.lastDepth+1 {
		depth = n.lastDepth + 1
	}

	for i := depth; i < len(n.counters); i++ {
		n.counters[i] = 0
	}
	n.counters[depth-1]++
	n.lastDepth = depth

	parts := make([]string, depth)
	for i := range depth {
		parts[i] = strconv.Itoa(n.counters[i])
	}
	return strings.Join(parts, ".") + ".", depth
}

// BuildTOC renders a <nav class="toc"> for the headings of an HTML fragment.
// It returns "" when no heading falls within the configured depths.
func BuildTOC(fragment string, opts TOCOptions) string {
	lo, hi := opts.bounds()
	entries := tocEntries(fragment, lo, hi)
	if len(entries) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc" aria-label="Table of contents">`)
	if opts.Title != "" {
		buf.WriteString(`<h2 class="toc-title">` + html.EscapeString(opts.Title) + `</h2>`)
	}
	buf.WriteString(`<div class="toc-list">`)

	var num numbering
	for _, e := range entries {
		label, depth := num.next(e.Level)

		buf.WriteString(`<div class="toc-item toc-depth-` + strconv.Itoa(depth) + `"`)
		if depth > 1 {
			fmt.Fprintf(&buf, ` style="padding-left:%.1fem"`, float64(depth-1)*1.5)
		}
		buf.WriteString(`><a href="#` + html.EscapeString(e.ID) + `">`)
		if opts.Numbered {
			buf.WriteString(label + " ")
		}
		buf.WriteString(html.EscapeString(e.Text) + `</a></div>`)
	}

	buf.WriteString(`</div></nav>`)
	return buf.String()
}
