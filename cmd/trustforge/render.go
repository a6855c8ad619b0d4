package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alnah/go-trustforge"
)

// runRender implements render-html and render-pdf. Each path is a file or
// a directory; without paths the configured sources directory is used.
func runRender(ctx context.Context, name string, args []string, env *Environment) error {
	pdf := name == "render-pdf"
	f := &renderFlags{}
	fs := newRenderFlagSet(name, f, pdf)
	paths, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeRenderFlags(fs, f, cfg)
	if len(paths) == 0 {
		paths = []string{cfg.Sources.Dir}
	}

	p, err := setup(&f.common, cfg, env, pdf)
	if err != nil {
		return err
	}
	defer p.Close()

	format := trustforge.FormatHTML
	if pdf {
		format = trustforge.FormatPDF
	}

	for _, path := range paths {
		if err := renderPath(ctx, p, path, format, f.common.quiet, env); err != nil {
			return err
		}
	}
	return nil
}

// renderPath renders a single file or a whole tree. A tree where every
// source failed returns the first failure.
func renderPath(ctx context.Context, p *trustforge.Pipeline, path string, format trustforge.OutputFormat, quiet bool, env *Environment) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		art, err := p.RenderFile(ctx, path, format)
		if err != nil {
			return err
		}
		if !quiet {
			printCreated(env.Stdout, art.Path, warningDetail(art))
		}
		return nil
	}

	res, err := p.RenderTree(ctx, path, format)
	if err != nil {
		return err
	}
	for _, art := range res.Artifacts {
		if !quiet {
			printCreated(env.Stdout, art.Path, warningDetail(art))
		}
	}
	for _, fail := range res.Failed {
		printFailure(env.Stderr, fail.Path, fail.Err)
	}
	if !quiet && len(res.Artifacts)+len(res.Failed) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(res.Artifacts), len(res.Failed))
	}
	if len(res.Artifacts) == 0 && len(res.Failed) > 0 {
		return res.Failed[0]
	}
	return nil
}

func warningDetail(art *trustforge.Artifact) string {
	switch n := len(art.Warnings); n {
	case 0:
		return ""
	case 1:
		return "1 construct skipped"
	default:
		return fmt.Sprintf("%d constructs skipped", n)
	}
}
