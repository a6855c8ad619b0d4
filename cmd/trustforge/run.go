package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// command describes a subcommand for dispatch, help and completion.
type command struct {
	Name        string
	Args        string
	Desc        string
	FlagSet     func() *flag.FlagSet // fresh set, for help and completion
	TakesFiles  bool
	FilePattern string
	Run         func(ctx context.Context, args []string, env *Environment) error
}

// commands lists subcommands in help order.
func commands() []command {
	return []command{
		{
			Name: "render-html", Args: "[path...]", Desc: "Render policies to HTML",
			FlagSet:    func() *flag.FlagSet { return newRenderFlagSet("render-html", &renderFlags{}, false) },
			TakesFiles: true, FilePattern: "*.md,*.markdown",
			Run: func(ctx context.Context, args []string, env *Environment) error {
				return runRender(ctx, "render-html", args, env)
			},
		},
		{
			Name: "render-pdf", Args: "[path...]", Desc: "Render policies to PDF",
			FlagSet:    func() *flag.FlagSet { return newRenderFlagSet("render-pdf", &renderFlags{}, true) },
			TakesFiles: true, FilePattern: "*.md,*.markdown",
			Run: func(ctx context.Context, args []string, env *Environment) error {
				return runRender(ctx, "render-pdf", args, env)
			},
		},
		{
			Name: "build-index", Args: "[dir]", Desc: "Write the policy index CSV",
			FlagSet: func() *flag.FlagSet { return newIndexFlagSet(&indexFlags{}) },
			Run:     runBuildIndex,
		},
		{
			Name: "control-map", Args: "<framework>", Desc: "Export a control catalog",
			FlagSet: func() *flag.FlagSet { return newExportFlagSet("control-map", &exportFlags{}) },
			Run:     runControlMap,
		},
		{
			Name: "risk-export", Args: "<register>", Desc: "Export a risk register",
			FlagSet:    func() *flag.FlagSet { return newExportFlagSet("risk-export", &exportFlags{}) },
			TakesFiles: true, FilePattern: "*.yaml,*.yml",
			Run: runRiskExport,
		},
		{
			Name: "watch", Args: "[dir]", Desc: "Re-render HTML when sources change",
			FlagSet: func() *flag.FlagSet { return newWatchFlagSet(&watchFlags{}) },
			Run:     runWatch,
		},
		{
			Name: "doctor", Desc: "Check toolchains, themes and configuration",
			FlagSet: func() *flag.FlagSet { return newDoctorFlagSet(&doctorFlags{}) },
			Run:     runDoctorCmd,
		},
		{
			Name: "version", Desc: "Show version information",
			Run: func(_ context.Context, _ []string, env *Environment) error {
				fmt.Fprintf(env.Stdout, "trustforge %s\n", Version)
				return nil
			},
		},
		{
			Name: "help", Args: "[command]", Desc: "Show help for a command",
			Run: func(_ context.Context, args []string, env *Environment) error {
				return runHelp(args, env)
			},
		},
		{
			Name: "completion", Args: "<shell>", Desc: "Generate shell completion script",
			Run: func(_ context.Context, args []string, env *Environment) error {
				return runCompletion(args, env)
			},
		},
	}
}

// findCommand returns the command named name.
func findCommand(name string) (command, bool) {
	for _, c := range commands() {
		if c.Name == name {
			return c, true
		}
	}
	return command{}, false
}

// run executes one CLI invocation and returns its exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	name := args[0]
	switch name {
	case "-h", "--help":
		printUsage(env.Stdout)
		return ExitSuccess
	case "-V", "--version":
		name = "version"
	}

	cmd, ok := findCommand(name)
	if !ok {
		printError(env.Stderr, fmt.Errorf("%w: unknown command %q", ErrUsage, name))
		printUsage(env.Stderr)
		return ExitUsage
	}

	err := cmd.Run(ctx, args[1:], env)
	if errors.Is(err, flag.ErrHelp) {
		printCommandUsage(env.Stdout, cmd)
		return ExitSuccess
	}
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// parseFlags parses args with fs and wraps flag errors as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return fs.Args(), nil
}
