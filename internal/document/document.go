// Package document turns a Markdown source into a Document: typed metadata
// plus the body that follows the frontmatter block.
package document

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/frontmatter"
)

// Document is a parsed source file. It is not modified after parsing.
type Document struct {
	Path     string
	Metadata Metadata
	Body     string
	BodyLine int // 1-based source line where Body starts
}

// Parse builds a Document from raw source bytes. path is used for error
// messages and output naming only.
func Parse(path string, src []byte, logger *zap.Logger) (*Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	raw, body, err := frontmatter.Parse(path, src)
	if err != nil {
		return nil, err
	}

	meta, err := NewMetadata(path, raw)
	if err != nil {
		return nil, err
	}
	if !meta.HasConventionalVersion() {
		logger.Warn("version does not look like a semantic version",
			zap.String("source", path),
			zap.String("version", meta.Version))
	}

	return &Document{Path: path, Metadata: meta, Body: body, BodyLine: bodyLine(src, body)}, nil
}

// bodyLine locates body, a suffix of the BOM-stripped source, by line.
func bodyLine(src []byte, body string) int {
	src = fileutil.StripBOM(src)
	if len(body) > len(src) {
		return 1
	}
	return bytes.Count(src[:len(src)-len(body)], []byte("\n")) + 1
}

// SourceLine maps a 1-based line within Body to its line in the source file.
func (d *Document) SourceLine(bodyLine int) int {
	if bodyLine <= 0 {
		return bodyLine
	}
	return bodyLine + max(d.BodyLine, 1) - 1
}

// Read loads and parses a source file from disk.
func Read(path string, logger *zap.Logger) (*Document, error) {
	src, err := fileutil.ReadSource(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, src, logger)
}

// Source re-serializes the document, frontmatter block first.
func (d *Document) Source() ([]byte, error) {
	block, err := d.Metadata.Marshal()
	if err != nil {
		return nil, err
	}
	return frontmatter.Format(block, d.Body), nil
}
