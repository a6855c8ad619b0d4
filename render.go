package trustforge

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-trustforge/internal/document"
	"github.com/alnah/go-trustforge/internal/index"
	"github.com/alnah/go-trustforge/internal/render"
	"github.com/alnah/go-trustforge/internal/toolchain"
)

// OutputFormat selects what a render produces.
type OutputFormat string

const (
	FormatHTML OutputFormat = "html"
	FormatPDF  OutputFormat = "pdf"
)

// BatchResult is the outcome of RenderTree. Artifacts and Failed are in
// source order.
type BatchResult struct {
	Artifacts []*Artifact
	Failed    []*SkipError
}

// ReadDocument parses a source file.
func (p *Pipeline) ReadDocument(path string) (*Document, error) {
	return document.Read(path, p.logger)
}

// ParseDocument parses in-memory source. path names the document in
// errors and output paths.
func (p *Pipeline) ParseDocument(path string, src []byte) (*Document, error) {
	return document.Parse(path, src, p.logger)
}

// RenderHTML renders doc to a standalone HTML page. Nothing is written.
func (p *Pipeline) RenderHTML(ctx context.Context, doc *Document) (*Artifact, error) {
	return p.renderTo(ctx, doc, FormatHTML, p.cfg.outDir)
}

// RenderPDF renders doc to PDF with the configured toolchain. Nothing is
// written.
func (p *Pipeline) RenderPDF(ctx context.Context, doc *Document) (*Artifact, error) {
	return p.renderTo(ctx, doc, FormatPDF, p.cfg.outDir)
}

// LaTeXSource returns the LaTeX document the xelatex toolchain would
// compile for doc.
func (p *Pipeline) LaTeXSource(ctx context.Context, doc *Document) ([]byte, error) {
	return p.pdfRenderer(p.cfg.outDir).LaTeXSource(ctx, doc, p.theme)
}

// RenderFile reads, renders and writes one source file.
func (p *Pipeline) RenderFile(ctx context.Context, path string, format OutputFormat) (*Artifact, error) {
	return p.renderFile(ctx, path, format, p.cfg.outDir)
}

// RenderTree renders every source under root that matches the configured
// include and exclude patterns. Output paths mirror the tree below root.
// Failing files are logged and reported in the result; only an unusable
// root, a cancelled context or, for PDF, a missing toolchain stops the
// batch.
func (p *Pipeline) RenderTree(ctx context.Context, root string, format OutputFormat) (*BatchResult, error) {
	agg := &index.Aggregator{Include: p.cfg.include, Exclude: p.cfg.exclude, Logger: p.logger}
	rels, err := agg.Discover(root)
	if err != nil {
		return nil, err
	}

	srcFormat := toolchain.FormatHTML
	if format == FormatPDF {
		srcFormat = p.compiler.Format()
	}

	artifacts := make([]*Artifact, len(rels))
	failures := make([]*SkipError, len(rels))

	var (
		mu    sync.Mutex
		fatal error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers(srcFormat))
	for i, rel := range rels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src := filepath.Join(root, filepath.FromSlash(rel))
			art, err := p.renderFile(gctx, src, format, p.mirrorDir(root, rel))
			if err == nil {
				artifacts[i] = art
				return nil
			}
			if isFatal(err) {
				mu.Lock()
				if fatal == nil {
					fatal = err
				}
				mu.Unlock()
				return err
			}
			failures[i] = &SkipError{Path: rel, Err: err}
			p.logger.Warn("render failed, skipping",
				zap.String("source", rel),
				zap.String("format", string(format)),
				zap.Error(err))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if fatal != nil {
			return nil, fatal
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &BatchResult{}
	for i := range rels {
		switch {
		case artifacts[i] != nil:
			out.Artifacts = append(out.Artifacts, artifacts[i])
		case failures[i] != nil:
			out.Failed = append(out.Failed, failures[i])
		}
	}
	return out, nil
}

// RenderTreeFile renders one source below root to the place RenderTree
// would write it.
func (p *Pipeline) RenderTreeFile(ctx context.Context, root, file string, format OutputFormat) (*Artifact, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absFile, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(absRoot, absFile)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s is outside %s", file, root)
	}
	return p.renderFile(ctx, file, format, p.mirrorDir(root, filepath.ToSlash(rel)))
}

// isFatal reports errors that would fail every remaining file too.
func isFatal(err error) bool {
	var te *ToolchainError
	return errors.As(err, &te) && te.Missing
}

// mirrorDir is the output directory for rel. Without an output directory
// artifacts stay next to their sources.
func (p *Pipeline) mirrorDir(root, rel string) string {
	if p.cfg.outDir == "" {
		return filepath.Join(root, filepath.FromSlash(path.Dir(rel)))
	}
	return filepath.Join(p.cfg.outDir, filepath.FromSlash(path.Dir(rel)))
}

func (p *Pipeline) renderFile(ctx context.Context, path string, format OutputFormat, outDir string) (*Artifact, error) {
	doc, err := p.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	art, err := p.renderTo(ctx, doc, format, outDir)
	if err != nil {
		return nil, err
	}
	if err := render.Write(art); err != nil {
		return nil, err
	}
	p.logger.Info("wrote artifact",
		zap.String("source", path),
		zap.String("output", art.Path),
		zap.Int("warnings", len(art.Warnings)))
	return art, nil
}

// renderTo dispatches on format. Panics inside a renderer are turned into
// errors so one bad document cannot take a batch down.
func (p *Pipeline) renderTo(ctx context.Context, doc *Document, format OutputFormat, outDir string) (art *Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error rendering %s: %v", doc.Path, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch format {
	case FormatHTML:
		return p.htmlRenderer(outDir).Render(ctx, doc, p.theme)
	case FormatPDF:
		return p.pdfRenderer(outDir).Render(ctx, doc, p.theme)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
