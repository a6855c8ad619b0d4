package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-trustforge"
	"github.com/alnah/go-trustforge/internal/watch"
)

// runWatch renders the tree to HTML once, then re-renders changed sources
// until interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	f := &watchFlags{}
	fs := newWatchFlagSet(f)
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return fmt.Errorf("%w: watch takes at most one directory", ErrUsage)
	}

	cfg, err := loadConfig(&f.render.common, env)
	if err != nil {
		return err
	}
	mergeRenderFlags(fs, &f.render, cfg)
	root := cfg.Sources.Dir
	if len(rest) == 1 {
		root = rest[0]
	}

	p, err := setup(&f.render.common, cfg, env, false)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := renderPath(ctx, p, root, trustforge.FormatHTML, f.render.common.quiet, env); err != nil {
		return err
	}
	if !f.render.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", root)
	}

	w := &watch.Watcher{Root: root, Debounce: f.debounce, Logger: p.Logger()}
	return w.Run(ctx, func(ctx context.Context, paths []string) error {
		var errs []error
		for _, path := range paths {
			art, err := p.RenderTreeFile(ctx, root, path, trustforge.FormatHTML)
			if err != nil {
				printFailure(env.Stderr, path, err)
				errs = append(errs, err)
				continue
			}
			if !f.render.common.quiet {
				printCreated(env.Stdout, art.Path, warningDetail(art))
			}
		}
		return errors.Join(errs...)
	})
}
