package main

import (
	"fmt"
	"io"
	"strings"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: trustforge <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-12s %s\n", c.Name, c.Desc)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings come from flags, then TRUSTFORGE_* variables, then trustforge.yaml.")
	fmt.Fprintln(w, "Run 'trustforge help <command>' for details on a specific command.")
}

// printCommandUsage prints usage for one command from its flag set.
func printCommandUsage(w io.Writer, c command) {
	usage := "Usage: trustforge " + c.Name
	if c.Args != "" {
		usage += " " + c.Args
	}
	if c.FlagSet != nil {
		usage += " [flags]"
	}
	fmt.Fprintln(w, usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.Desc+".")
	if extra := commandNotes[c.Name]; extra != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimSpace(extra))
	}
	if c.FlagSet != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprint(w, c.FlagSet().FlagUsages())
	}
}

// commandNotes adds details that flag descriptions cannot carry.
var commandNotes = map[string]string{
	"render-html": `
Paths are Markdown files or directories. Without paths the configured
sources directory (default "policies") is rendered. Directory output
mirrors the source tree below the output directory.`,
	"render-pdf": `
Paths are Markdown files or directories. The xelatex engine needs a TeX
distribution; the chrome engine uses an installed Chrome or downloads
Chromium. Dates for --generated-at: "auto", "auto:FORMAT" or a literal.
Format tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D; [text] is literal.`,
	"build-index": `
Writes one CSV row per policy: file, title, version, owner,
last_reviewed, applies_to, refs. Files without a valid frontmatter are
skipped and reported.`,
	"control-map": `
Built-in frameworks: nist-csf-2.0 (aliases csf, nist-csf, csf2). Other
frameworks need a catalog file, from --catalog or export.catalogs in the
config. Invalid records are skipped unless --strict.`,
	"risk-export": `
Exports a YAML risk register. Severity and likelihood are normalized;
owner, status and treatment get defaults. With --framework, control refs
missing from that catalog are reported.`,
	"completion": `
Supported shells: bash, zsh, fish.

  Bash:  eval "$(trustforge completion bash)"
  Zsh:   eval "$(trustforge completion zsh)"
  Fish:  trustforge completion fish > ~/.config/fish/completions/trustforge.fish`,
}

// runHelp handles the help command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}
	c, ok := findCommand(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	printCommandUsage(env.Stdout, c)
	return nil
}
