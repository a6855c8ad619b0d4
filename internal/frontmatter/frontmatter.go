// Package frontmatter splits a Markdown source into its YAML metadata block and
// its body, and decodes the block.
//
// A block opens with a first line of exactly "---" (trailing whitespace and
// CRLF tolerated) and closes with the next such line. A source without an
// opening delimiter has no block: the whole text is body. An opening delimiter
// without a closing one is malformed.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/yamlutil"
)

// ErrMalformed is matched by every *MalformedFrontmatterError.
var ErrMalformed = errors.New("malformed frontmatter")

// MalformedFrontmatterError reports a frontmatter block that is unclosed or
// does not decode to a mapping.
type MalformedFrontmatterError struct {
	Source string
	Line   int // 1-based line of the opening delimiter, 0 when unknown
	Reason string
	Err    error
}

func (e *MalformedFrontmatterError) Error() string {
	msg := "[frontmatter] " + e.Source
	if e.Line > 0 {
		msg += fmt.Sprintf(":%d", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedFrontmatterError) Unwrap() error { return e.Err }

func (e *MalformedFrontmatterError) Is(target error) bool { return target == ErrMalformed }

const delimiter = "---"

// Split separates the metadata block from the body. found reports whether an
// opening delimiter was present. The body keeps its original line endings.
func Split(source string, src []byte) (block []byte, body string, found bool, err error) {
	src = fileutil.StripBOM(src)

	first, rest, ok := cutLine(src)
	if !isDelimiter(first) {
		return nil, string(src), false, nil
	}
	if !ok {
		return nil, "", true, &MalformedFrontmatterError{
			Source: source, Line: 1, Reason: "missing closing delimiter",
		}
	}

	start := len(src) - len(rest)
	offset := start
	for len(rest) > 0 {
		line, next, hasNext := cutLine(rest)
		if isDelimiter(line) {
			block = src[start:offset]
			if hasNext {
				return block, string(next), true, nil
			}
			return block, "", true, nil
		}
		offset += len(rest) - len(next)
		if !hasNext {
			break
		}
		rest = next
	}

	return nil, "", true, &MalformedFrontmatterError{
		Source: source, Line: 1, Reason: "missing closing delimiter",
	}
}

// Parse splits src and decodes the block into a mapping. A source without a
// block yields an empty mapping.
func Parse(source string, src []byte) (map[string]any, string, error) {
	block, body, found, err := Split(source, src)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return map[string]any{}, body, nil
	}

	fields, err := yamlutil.DecodeMapping(block)
	if err != nil {
		reason := "invalid YAML"
		if errors.Is(err, yamlutil.ErrNotMapping) {
			reason = "block is not a mapping"
		}
		return nil, "", &MalformedFrontmatterError{Source: source, Line: 1, Reason: reason, Err: err}
	}
	if err := keepNumberText(block, fields); err != nil {
		return nil, "", &MalformedFrontmatterError{Source: source, Line: 1, Reason: "invalid YAML", Err: err}
	}
	return fields, body, nil
}

// keepNumberText replaces top-level numbers whose decoded value prints
// differently from the source ("version: 1.10") with the source text.
func keepNumberText(block []byte, fields map[string]any) error {
	literals, err := yamlutil.NumberLiterals(block)
	if err != nil {
		return err
	}
	for key, text := range literals {
		v, ok := fields[key]
		if !ok {
			continue
		}
		var printed string
		switch n := v.(type) {
		case float64:
			printed = strconv.FormatFloat(n, 'f', -1, 64)
		case int, int64, uint64:
			printed = fmt.Sprint(n)
		default:
			continue
		}
		if printed != text {
			fields[key] = text
		}
	}
	return nil
}

// Format wraps a YAML block in delimiters and appends body.
func Format(block []byte, body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	buf.Write(block)
	if len(block) > 0 && !bytes.HasSuffix(block, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	return buf.Bytes()
}

// cutLine returns the first line without its terminator, the remainder after
// it, and whether a terminator was found.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == delimiter
}
