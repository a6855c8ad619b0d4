package pipeline

import "strings"

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
	"\u2013", "--",
	"\u2014", "---",
)

// EscapeLaTeX escapes LaTeX special characters in plain text. Highlight
// placeholders are kept; the LaTeX writer converts them afterwards.
func EscapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

var urlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`#`, `\#`,
	`%`, `\%`,
	`{`, `\{`,
	`}`, `\}`,
)

// escapeURL escapes a URL for \href and \url arguments.
func escapeURL(s string) string {
	return urlEscaper.Replace(s)
}

// verbatimEnd would terminate a verbatim environment early.
const verbatimEnd = `\end{verbatim}`

func escapeVerbatim(s string) string {
	return strings.ReplaceAll(restoreMarkPlaceholders(s), verbatimEnd, `\end {verbatim}`)
}
