package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark/ast"
)

// ErrConversion is matched by every *ConversionError.
var ErrConversion = errors.New("conversion failed")

// Target formats.
const (
	TargetHTML  = "html"
	TargetLaTeX = "latex"
)

// ConversionError reports a Markdown construct that the target format cannot
// represent. The construct is skipped; the error is a warning.
type ConversionError struct {
	Source    string
	Line      int
	Construct string
	Target    string
	Detail    string
}

func (e *ConversionError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	msg := fmt.Sprintf("[convert] %s: %s not supported in %s output", loc, e.Construct, e.Target)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// Fragment is converted body markup plus the constructs that were dropped.
type Fragment struct {
	Content  string
	Warnings []*ConversionError
}

// lineOf returns the 1-based source line of n, using the nearest block
// ancestor that carries line segments.
func lineOf(n ast.Node, src []byte) int {
	if raw, ok := n.(*ast.RawHTML); ok && raw.Segments.Len() > 0 {
		return lineAt(src, raw.Segments.At(0).Start)
	}
	for p := n; p != nil; p = p.Parent() {
		if p.Type() == ast.TypeBlock && p.Lines().Len() > 0 {
			return lineAt(src, p.Lines().At(0).Start)
		}
	}
	return 0
}

func lineAt(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return 1 + bytes.Count(src[:offset], []byte("\n"))
}
