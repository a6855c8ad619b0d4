package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed argument values (completion shells)
	TakesFiles  bool
	FilePattern string
}

// completionMeta holds completion-specific metadata for flags. Names,
// types and descriptions come from the FlagSets.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"engine":     {Values: []string{"xelatex", "chrome"}},
	"format":     {Values: []string{"csv", "html"}},
	"log-format": {Values: []string{"console", "json"}},

	"config":  {FileGlob: "*.yaml,*.yml"},
	"catalog": {FileGlob: "*.yaml,*.yml"},
	"theme":   {FileGlob: "*.yaml,*.yml,*.toml"},

	"dir":        {IsDir: true},
	"themes-dir": {IsDir: true},
	"asset-path": {IsDir: true},
}

// extractFlagsFromFlagSet turns a FlagSet into completion definitions.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	var defs []commandDef
	for _, c := range commands() {
		def := commandDef{
			Name:        c.Name,
			Desc:        c.Desc,
			TakesFiles:  c.TakesFiles,
			FilePattern: c.FilePattern,
		}
		if c.FlagSet != nil {
			def.Flags = extractFlagsFromFlagSet(c.FlagSet())
		}
		switch c.Name {
		case "completion":
			def.Args = []string{string(ShellBash), string(ShellZsh), string(ShellFish)}
		case "help":
			for _, other := range commands() {
				def.Args = append(def.Args, other.Name)
			}
		case "build-index", "watch":
			def.TakesFiles = true // directories
		}
		defs = append(defs, def)
	}
	return defs
}

// GenerateCompletion writes shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w, getCommands())
	case ShellZsh:
		return generateZsh(w, getCommands())
	case ShellFish:
		return generateFish(w, getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		c, _ := findCommand("completion")
		printCommandUsage(env.Stdout, c)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// valueFlags collects flags with special value completion across commands,
// keyed by long name.
func valueFlags(cmds []commandDef) []flagDef {
	seen := map[string]flagDef{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type == flagEnum || f.Type == flagFile || f.Type == flagDir {
				seen[f.Long] = f
			}
		}
	}
	out := make([]flagDef, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Long < out[j].Long })
	return out
}

func flagNames(f flagDef) []string {
	names := []string{"--" + f.Long}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# bash completion for trustforge\n")
	b.WriteString("_trustforge() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(names, " "))
	b.WriteString("        return\n    fi\n\n")

	b.WriteString("    case \"$prev\" in\n")
	for _, f := range valueFlags(cmds) {
		fmt.Fprintf(&b, "        %s)\n", strings.Join(flagNames(f), "|"))
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(f.Values, " "))
		case flagDir:
			b.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\"))\n")
		default:
			b.WriteString("            COMPREPLY=($(compgen -f -- \"$cur\"))\n")
		}
		b.WriteString("            return\n            ;;\n")
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		var words []string
		for _, f := range c.Flags {
			words = append(words, flagNames(f)...)
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(words, " "))
		switch {
		case len(c.Args) > 0:
			b.WriteString("            else\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(c.Args, " "))
		case c.TakesFiles:
			b.WriteString("            else\n")
			b.WriteString("                COMPREPLY=($(compgen -f -- \"$cur\"))\n")
		}
		b.WriteString("            fi\n            ;;\n")
	}
	b.WriteString("    esac\n}\n")
	b.WriteString("complete -F _trustforge trustforge\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshEscape makes s safe inside a single-quoted _arguments entry.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", "(", "]", ")", ":", `\:`)
	return r.Replace(s)
}

func zshGlob(glob string) string {
	return strings.ReplaceAll(glob, ",", " ")
}

func zshFlagSpec(f flagDef) string {
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		action = fmt.Sprintf(`:file:_files -g "%s"`, zshGlob(f.FileGlob))
	case flagDir:
		action = ":dir:_files -/"
	default:
		action = ":value: "
	}
	desc := "[" + zshEscape(f.Desc) + "]"
	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s%s%s'", f.Long, desc, action)
}

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("#compdef trustforge\n\n")
	b.WriteString("_trustforge() {\n")
	b.WriteString("    local -a commands\n    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n        return\n    fi\n\n")
	b.WriteString("    case \"$words[2]\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		specs := make([]string, 0, len(c.Flags)+1)
		for _, f := range c.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case len(c.Args) > 0:
			specs = append(specs, fmt.Sprintf("'1:arg:(%s)'", strings.Join(c.Args, " ")))
		case c.TakesFiles && c.FilePattern != "":
			specs = append(specs, fmt.Sprintf(`'*:file:_files -g "%s"'`, zshGlob(c.FilePattern)))
		case c.TakesFiles:
			specs = append(specs, "'*:dir:_files -/'")
		}
		if len(specs) == 0 {
			b.WriteString("            ;;\n")
			continue
		}
		b.WriteString("            _arguments \\\n")
		for i, s := range specs {
			sep := " \\\n"
			if i == len(specs)-1 {
				sep = "\n"
			}
			b.WriteString("                " + s + sep)
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n}\n\n")
	b.WriteString("compdef _trustforge trustforge\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# fish completion for trustforge\n")
	b.WriteString("complete -c trustforge -f\n\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c trustforge -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	for _, c := range cmds {
		b.WriteString("\n")
		cond := fmt.Sprintf("-n '__fish_seen_subcommand_from %s'", c.Name)
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c trustforge %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += fmt.Sprintf(" -d '%s'", fishEscape(f.Desc))
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -r"
			}
			b.WriteString(line + "\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "complete -c trustforge %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		case c.TakesFiles:
			fmt.Fprintf(&b, "complete -c trustforge %s -F\n", cond)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
