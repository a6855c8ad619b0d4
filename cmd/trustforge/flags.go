package main

import (
	"io"
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-trustforge/internal/config"
	"github.com/alnah/go-trustforge/internal/watch"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logFormat string
}

// sourceFlags select which documents a directory run picks up.
type sourceFlags struct {
	include []string
	exclude []string
}

// renderFlags holds flags of render-html, render-pdf and watch.
type renderFlags struct {
	common      commonFlags
	sources     sourceFlags
	out         string
	theme       string
	themeDirs   []string
	assetPath   string
	toc         bool
	tocTitle    string
	generatedAt string
	lang        string
	workers     int
	pdf         pdfFlags
}

// pdfFlags holds PDF toolchain flags.
type pdfFlags struct {
	engine    string
	timeout   string
	keepTeX   bool
	xelatex   string
	passes    int
	chromeBin string
	noSandbox bool
}

// indexFlags holds build-index flags.
type indexFlags struct {
	common  commonFlags
	sources sourceFlags
	dir     string
	out     string
}

// exportFlags holds control-map and risk-export flags.
type exportFlags struct {
	common    commonFlags
	out       string
	format    string
	catalog   string
	framework string
	strict    bool
}

// watchFlags holds watch flags.
type watchFlags struct {
	render   renderFlags
	debounce time.Duration
}

// doctorFlags holds doctor flags.
type doctorFlags struct {
	common commonFlags
	json   bool
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false
	return fs
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print debug logs")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
}

func addSourceFlags(fs *flag.FlagSet, f *sourceFlags) {
	fs.StringSliceVar(&f.include, "include", nil, "include pattern (doublestar, repeatable)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "exclude pattern (doublestar, repeatable)")
}

func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.out, "out", "o", "", "output directory")
	fs.StringVarP(&f.theme, "theme", "t", "", "theme name or file")
	fs.StringSliceVar(&f.themeDirs, "themes-dir", nil, "directory searched for themes (repeatable)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding templates and styles")
	fs.BoolVar(&f.toc, "toc", false, "generate a table of contents")
	fs.StringVar(&f.tocTitle, "toc-title", "", "table of contents heading")
	fs.StringVar(&f.generatedAt, "generated-at", "", `footer date: literal, "auto" or "auto:FORMAT"`)
	fs.StringVar(&f.lang, "lang", "", "HTML lang attribute")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addSourceFlags(fs, &f.sources)
}

func addPDFFlags(fs *flag.FlagSet, f *pdfFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "PDF engine: xelatex, chrome")
	fs.StringVar(&f.timeout, "timeout", "", "per-document timeout (e.g. 90s, 3m)")
	fs.BoolVar(&f.keepTeX, "keep-tex", false, "keep the intermediate .tex or .html next to the PDF")
	fs.StringVar(&f.xelatex, "xelatex", "", "xelatex binary")
	fs.IntVar(&f.passes, "passes", 0, "xelatex passes (1-5)")
	fs.StringVar(&f.chromeBin, "chrome-bin", "", "Chrome binary")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "run Chrome without sandbox (containers)")
}

func newRenderFlagSet(name string, f *renderFlags, pdf bool) *flag.FlagSet {
	fs := newFlagSet(name)
	addRenderFlags(fs, f)
	if pdf {
		addPDFFlags(fs, &f.pdf)
	}
	addCommonFlags(fs, &f.common)
	return fs
}

func newIndexFlagSet(f *indexFlags) *flag.FlagSet {
	fs := newFlagSet("build-index")
	fs.StringVarP(&f.dir, "dir", "d", "", "policy directory")
	fs.StringVarP(&f.out, "out", "o", "", "output CSV file")
	addSourceFlags(fs, &f.sources)
	addCommonFlags(fs, &f.common)
	return fs
}

func newExportFlagSet(name string, f *exportFlags) *flag.FlagSet {
	fs := newFlagSet(name)
	fs.StringVarP(&f.out, "out", "o", "", "output file")
	fs.StringVarP(&f.format, "format", "f", "", "output format: csv, html (default from --out)")
	fs.StringVar(&f.catalog, "catalog", "", "control catalog file (YAML)")
	if name == "risk-export" {
		fs.StringVar(&f.framework, "framework", "", "framework whose control IDs the register references")
	}
	fs.BoolVar(&f.strict, "strict", false, "fail on the first invalid record")
	addCommonFlags(fs, &f.common)
	return fs
}

func newWatchFlagSet(f *watchFlags) *flag.FlagSet {
	fs := newRenderFlagSet("watch", &f.render, false)
	fs.DurationVar(&f.debounce, "debounce", watch.DefaultDebounce, "quiet period before re-rendering")
	return fs
}

func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := newFlagSet("doctor")
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	addCommonFlags(fs, &f.common)
	return fs
}

// mergeSourceFlags applies set source flags to cfg.
func mergeSourceFlags(fs *flag.FlagSet, f *sourceFlags, cfg *config.Config) {
	if fs.Changed("include") {
		cfg.Sources.Include = f.include
	}
	if fs.Changed("exclude") {
		cfg.Sources.Exclude = f.exclude
	}
}

// mergeRenderFlags applies explicitly set flags on top of cfg.
func mergeRenderFlags(fs *flag.FlagSet, f *renderFlags, cfg *config.Config) {
	if fs.Changed("out") {
		moveOutDir(cfg, f.out)
	}
	if fs.Changed("theme") {
		cfg.Theme.Name = f.theme
	}
	if fs.Changed("themes-dir") {
		cfg.Theme.Dirs = slices.Concat(f.themeDirs, cfg.Theme.Dirs)
	}
	if fs.Changed("asset-path") {
		cfg.Assets.BasePath = f.assetPath
	}
	if fs.Changed("toc") {
		cfg.Render.TOC = f.toc
	}
	if fs.Changed("toc-title") {
		cfg.Render.TOCTitle = f.tocTitle
		cfg.Render.TOC = true
	}
	if fs.Changed("generated-at") {
		cfg.Render.GeneratedAt = f.generatedAt
	}
	if fs.Changed("lang") {
		cfg.Render.Lang = f.lang
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	mergeSourceFlags(fs, &f.sources, cfg)

	if fs.Lookup("engine") == nil {
		return
	}
	if fs.Changed("engine") {
		cfg.PDF.Engine = strings.ToLower(f.pdf.engine)
	}
	if fs.Changed("timeout") {
		cfg.PDF.Timeout = f.pdf.timeout
	}
	if fs.Changed("keep-tex") {
		cfg.PDF.KeepSource = f.pdf.keepTeX
	}
	if fs.Changed("xelatex") {
		cfg.PDF.XeLaTeX = f.pdf.xelatex
	}
	if fs.Changed("passes") {
		cfg.PDF.Passes = f.pdf.passes
	}
	if fs.Changed("chrome-bin") {
		cfg.PDF.ChromeBin = f.pdf.chromeBin
	}
	if fs.Changed("no-sandbox") {
		cfg.PDF.NoSandbox = f.pdf.noSandbox
	}
}
