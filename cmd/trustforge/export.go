package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-trustforge"
	"github.com/alnah/go-trustforge/internal/config"
	"github.com/alnah/go-trustforge/internal/tabular"
)

// runBuildIndex implements build-index.
func runBuildIndex(ctx context.Context, args []string, env *Environment) error {
	f := &indexFlags{}
	fs := newIndexFlagSet(f)
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return fmt.Errorf("%w: build-index takes at most one directory", ErrUsage)
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeSourceFlags(fs, &f.sources, cfg)
	dir := cfg.Sources.Dir
	switch {
	case fs.Changed("dir"):
		dir = f.dir
	case len(rest) == 1:
		dir = rest[0]
	}
	if fs.Changed("out") {
		cfg.Index.Out = f.out
	}

	p, err := setup(&f.common, cfg, env, false)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.WriteIndex(ctx, dir, cfg.Index.Out)
	if err != nil {
		return err
	}
	for _, skip := range res.Skipped {
		printFailure(env.Stderr, skip.Path, skip.Err)
	}
	if !f.common.quiet {
		printCreated(env.Stdout, cfg.Index.Out, fmt.Sprintf("%d policies, %d skipped", len(res.Records), len(res.Skipped)))
	}
	return nil
}

// runControlMap implements control-map.
func runControlMap(_ context.Context, args []string, env *Environment) error {
	f := &exportFlags{}
	fs := newExportFlagSet("control-map", f)
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: control-map takes exactly one framework name", ErrUsage)
	}
	framework := rest[0]

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeExportFlags(fs, f, cfg)
	format, out, err := exportTarget(fs, f, cfg, slug(framework))
	if err != nil {
		return err
	}

	p, err := setup(&f.common, cfg, env, false)
	if err != nil {
		return err
	}
	defer p.Close()

	exp, err := p.ControlMap(framework, catalogFor(f.catalog, framework, cfg))
	if err != nil {
		return err
	}
	if err := p.WriteControlMap(exp, out, format); err != nil {
		return err
	}
	for _, skip := range exp.Skipped {
		printFailure(env.Stderr, framework, skip)
	}
	if !f.common.quiet {
		printCreated(env.Stdout, out, fmt.Sprintf("%d controls, %d skipped", len(exp.Catalog.Entries), len(exp.Skipped)))
	}
	return nil
}

// runRiskExport implements risk-export. With --framework the register's
// control refs are checked against that catalog.
func runRiskExport(_ context.Context, args []string, env *Environment) error {
	f := &exportFlags{}
	fs := newExportFlagSet("risk-export", f)
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: risk-export takes exactly one register file", ErrUsage)
	}
	register := rest[0]

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeExportFlags(fs, f, cfg)
	format, out, err := exportTarget(fs, f, cfg, "risk-register")
	if err != nil {
		return err
	}

	p, err := setup(&f.common, cfg, env, false)
	if err != nil {
		return err
	}
	defer p.Close()

	if f.framework != "" {
		if catalog := catalogFor(f.catalog, f.framework, cfg); catalog != "" {
			if _, err := p.ControlMap(f.framework, catalog); err != nil {
				return err
			}
		}
	} else if f.catalog != "" {
		return fmt.Errorf("%w: --catalog needs --framework", ErrUsage)
	}

	exp, err := p.RiskRegister(register, f.framework)
	if err != nil {
		return err
	}
	if err := p.WriteRiskRegister(exp, out, format); err != nil {
		return err
	}
	for _, skip := range exp.Skipped {
		printFailure(env.Stderr, register, skip)
	}
	if !f.common.quiet {
		printCreated(env.Stdout, out, fmt.Sprintf("%d risks, %d skipped", len(exp.Entries), len(exp.Skipped)))
	}
	return nil
}

func mergeExportFlags(fs *flag.FlagSet, f *exportFlags, cfg *config.Config) {
	if fs.Changed("strict") {
		cfg.Export.Strict = f.strict
	}
}

// exportTarget resolves the output format and path. An explicit --format
// wins; otherwise the --out extension decides. Without --out the file goes
// to the output directory under base.
func exportTarget(fs *flag.FlagSet, f *exportFlags, cfg *config.Config, base string) (tabular.Format, string, error) {
	var format tabular.Format
	switch {
	case fs.Changed("format"):
		parsed, err := tabular.ParseFormat(f.format)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrUsage, err)
		}
		format = parsed
	case f.out != "":
		format = tabular.FormatFromPath(f.out)
	default:
		format = trustforge.ExportCSV
	}

	out := f.out
	if out == "" {
		out = filepath.Join(cfg.Output.Dir, base+format.Ext())
	}
	return format, out, nil
}

// catalogFor returns the catalog file for framework: the flag, then the
// config mapping.
func catalogFor(flagValue, framework string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if path, ok := cfg.Export.Catalogs[framework]; ok {
		return path
	}
	for name, path := range cfg.Export.Catalogs {
		if strings.EqualFold(name, framework) {
			return path
		}
	}
	return ""
}

// slug turns a framework name into a file name.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') || r == '.' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
