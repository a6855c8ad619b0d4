package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters. They pass
// through goldmark unchanged and are turned into target markup afterwards.
const (
	MarkStartPlaceholder = "\uE000" // U+E000
	MarkEndPlaceholder   = "\uE001" // U+E001
)

var (
	crlfOrCR         = regexp.MustCompile(`\r\n?`)
	highlightPattern = regexp.MustCompile(`==(.*?)==`)

	anyHeadingLine = regexp.MustCompile(`^\s{0,3}#{1,6}\s+`)
	manualTOCLine  = regexp.MustCompile(`(?i)^\s{0,3}#{1,6}\s+(table of contents|contents)\s*#*\s*$`)
	fenceLine      = regexp.MustCompile("^\\s{0,3}(```|~~~)")
)

// Preprocessor prepares Markdown before conversion.
type Preprocessor struct {
	// StripManualTOC drops a hand-written "Table of Contents" section, from
	// its heading up to the next heading. Used when a TOC is generated.
	StripManualTOC bool
}

// Process applies all transformations. A cancelled context returns content
// unchanged.
func (p *Preprocessor) Process(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	if p.StripManualTOC {
		content = stripManualTOC(content)
	}
	return convertHighlights(content)
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// convertHighlights transforms ==text== to placeholder markers, leaving
// fenced code untouched.
func convertHighlights(content string) string {
	lines := strings.Split(content, "\n")
	inFence := false
	for i, ln := range lines {
		if fenceLine.MatchString(ln) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		lines[i] = highlightPattern.ReplaceAllString(ln, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	}
	return strings.Join(lines, "\n")
}

// stripManualTOC blanks the section's lines so source line numbers stay
// stable for diagnostics.
func stripManualTOC(content string) string {
	lines := strings.Split(content, "\n")
	skipping, done, inFence := false, false, false

	for i, ln := range lines {
		if fenceLine.MatchString(ln) {
			inFence = !inFence
		}
		switch {
		case !done && !inFence && manualTOCLine.MatchString(ln):
			skipping, done = true, true
			lines[i] = ""
		case skipping && !inFence && anyHeadingLine.MatchString(ln):
			skipping = false
		case skipping:
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// ConvertMarkPlaceholders turns highlight placeholders into <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// restoreMarkPlaceholders turns placeholders back into the literal == syntax,
// for verbatim output.
func restoreMarkPlaceholders(content string) string {
	return strings.NewReplacer(MarkStartPlaceholder, "==", MarkEndPlaceholder, "==").Replace(content)
}
