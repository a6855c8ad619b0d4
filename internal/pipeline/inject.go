package pipeline

import "strings"

// InjectStylesheet inserts css as a <style> block into an HTML document:
// before </head>, else right after <body>, else at the very start.
func InjectStylesheet(document, css string) string {
	if css == "" {
		return document
	}

	block := "<style>" + SanitizeCSS(css) + "</style>"
	lower := strings.ToLower(document)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return document[:idx] + block + document[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.Index(document[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return document[:pos] + block + document[pos:]
		}
	}
	return block + document
}

// SanitizeCSS escapes sequences that could close a <style> block early.
func SanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
