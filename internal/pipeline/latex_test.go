package pipeline_test

// Notes:
// - Assertions check for LaTeX fragments rather than whole documents so the
//   exact whitespace between blocks is free to change.

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-trustforge/internal/pipeline"
)

// ---------------------------------------------------------------------------
// TestLaTeXConverter_ToLaTeX - Supported constructs
// ---------------------------------------------------------------------------

func TestLaTeXConverter_ToLaTeX(t *testing.T) {
	t.Parallel()

	conv := pipeline.NewLaTeXConverter()

	tests := []struct {
		name         string
		in           string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "headings with labels",
			in:           "# Purpose\n\n## Scope and Roles\n\n### Details\n",
			wantContains: []string{`\section{Purpose}\label{sec:purpose}`, `\subsection{Scope and Roles}\label{sec:scope-and-roles}`, `\subsubsection{Details}`},
		},
		{
			name:         "duplicate headings get unique labels",
			in:           "## Notes\n\n## Notes\n",
			wantContains: []string{`\label{sec:notes}`, `\label{sec:notes-1}`},
		},
		{
			name:         "emphasis and code",
			in:           "*a* **b** `c_d`\n",
			wantContains: []string{`\emph{a}`, `\textbf{b}`, `\texttt{c\_d}`},
		},
		{
			name:         "special characters escaped",
			in:           "50% of $cost & #1_a {x} ~ ^\n",
			wantContains: []string{`50\% of \$cost \& \#1\_a \{x\} \textasciitilde{} \textasciicircum{}`},
		},
		{
			name:         "backslash escapes resolved",
			in:           `a \*literal\* star` + "\n",
			wantContains: []string{`a *literal* star`},
		},
		{
			name:         "unordered and nested ordered lists",
			in:           "- one\n- two\n  1. inner\n  2. inner2\n",
			wantContains: []string{`\begin{itemize}`, `\item one`, `\begin{enumerate}`, `\item inner2`, `\end{itemize}`},
		},
		{
			name:         "ordered list start",
			in:           "3. three\n4. four\n",
			wantContains: []string{`\setcounter{enumi}{2}`},
		},
		{
			name:         "fenced code with language",
			in:           "```yaml\nkey: 50%\n```\n",
			wantContains: []string{`\textit{yaml}`, "\\begin{verbatim}\nkey: 50%\n\\end{verbatim}"},
		},
		{
			name:         "block quote and rule",
			in:           "> quoted\n\n---\n",
			wantContains: []string{`\begin{quote}`, `quoted`, `\noindent\hrulefill`},
		},
		{
			name:         "links",
			in:           "[site](https://example.com/a#b) <https://x.io/%20> [scope](#scope)\n",
			wantContains: []string{`\href{https://example.com/a\#b}{site}`, `\url{https://x.io/\%20}`, `\hyperref[sec:scope]{scope}`},
		},
		{
			name: "table with alignment",
			in:   "| L | C | R |\n|:--|:-:|--:|\n| 1 | 2 | 3 |\n",
			wantContains: []string{
				`\begin{tabular}{lcr}`,
				`\textbf{L} & \textbf{C} & \textbf{R} \\`,
				`1 & 2 & 3 \\`,
			},
		},
		{
			name:         "strikethrough and tasks",
			in:           "- [x] done ~~old~~\n- [ ] open\n",
			wantContains: []string{`$\boxtimes$`, `$\square$`, `\sout{old}`},
		},
		{
			name:         "footnote inlined",
			in:           "Claim[^1].\n\n[^1]: Source text.\n",
			wantContains: []string{`Claim\footnote{Source text.}.`},
		},
		{
			name:         "highlight",
			in:           "a " + pipeline.MarkStartPlaceholder + "b" + pipeline.MarkEndPlaceholder,
			wantContains: []string{`\colorbox{tfhighlight}{b}`},
		},
		{
			name:         "dashes",
			in:           "a \u2013 b \u2014 c\n",
			wantContains: []string{"a -- b --- c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frag, err := conv.ToLaTeX(context.Background(), "p.md", tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(frag.Content, want) {
					t.Errorf("output missing %q:\n%s", want, frag.Content)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(frag.Content, bad) {
					t.Errorf("output contains %q:\n%s", bad, frag.Content)
				}
			}
			if len(frag.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", frag.Warnings)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLaTeXConverter_Unsupported - Skipped constructs become warnings
// ---------------------------------------------------------------------------

func TestLaTeXConverter_Unsupported(t *testing.T) {
	t.Parallel()

	in := "Intro\n\n<div class=\"x\">raw</div>\n\nSee <b>bold</b> here.\n\n![diagram](https://example.com/d.png)\n\nEnd\n"
	frag, err := pipeline.NewLaTeXConverter().ToLaTeX(context.Background(), "p.md", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// HTML block, two inline tags, remote image.
	if len(frag.Warnings) != 4 {
		t.Fatalf("warnings = %d, want 4: %v", len(frag.Warnings), frag.Warnings)
	}
	if frag.Warnings[0].Line != 3 || frag.Warnings[0].Construct != "raw HTML block" {
		t.Errorf("first warning = %+v", frag.Warnings[0])
	}
	for _, want := range []string{"Intro", "See bold here.", `\emph{diagram}`, "End"} {
		if !strings.Contains(frag.Content, want) {
			t.Errorf("output missing %q:\n%s", want, frag.Content)
		}
	}
	if strings.Contains(frag.Content, "<div") || strings.Contains(frag.Content, "raw</div>") {
		t.Errorf("raw HTML leaked:\n%s", frag.Content)
	}
}

func TestLaTeXConverter_LocalImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(dir, "p.md")

	frag, err := pipeline.NewLaTeXConverter().ToLaTeX(context.Background(), source, "![logo](logo.png) ![gone](missing.png)\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(frag.Content, `\includegraphics[width=\linewidth,keepaspectratio]{`+filepath.ToSlash(filepath.Join(dir, "logo.png"))+"}") {
		t.Errorf("local image not included:\n%s", frag.Content)
	}
	if len(frag.Warnings) != 1 || frag.Warnings[0].Construct != "image" {
		t.Errorf("warnings = %v, want one image warning", frag.Warnings)
	}
}

func TestEscapeLaTeX(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{in: `C:\path`, want: `C:\textbackslash{}path`},
		{in: "R&D", want: `R\&D`},
		{in: "plain", want: "plain"},
	}
	for _, tt := range tests {
		if got := pipeline.EscapeLaTeX(tt.in); got != tt.want {
			t.Errorf("EscapeLaTeX(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
