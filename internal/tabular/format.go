package tabular

import (
	"fmt"
	"strings"
)

// Format is an export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat accepts "csv" or "html" in any case. An empty string means
// CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or html)", s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	return "." + string(f)
}

// FormatFromPath infers the format from an output file name, defaulting to
// CSV.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".html") || strings.HasSuffix(strings.ToLower(path), ".htm") {
		return FormatHTML
	}
	return FormatCSV
}
