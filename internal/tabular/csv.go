package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RefDelimiter joins multi-valued cells such as control references.
const RefDelimiter = ";"

// JoinRefs joins refs into a single cell. Blank entries are dropped.
func JoinRefs(refs []string) string {
	kept := make([]string, 0, len(refs))
	for _, r := range refs {
		if r = strings.TrimSpace(r); r != "" {
			kept = append(kept, r)
		}
	}
	return strings.Join(kept, RefDelimiter)
}

// SplitRefs is the inverse of JoinRefs.
func SplitRefs(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	var refs []string
	for _, r := range strings.Split(cell, RefDelimiter) {
		if r = strings.TrimSpace(r); r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// Table is a header plus rows of the same width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Append adds a row. It panics when the width does not match the header.
func (t *Table) Append(row ...string) {
	if len(row) != len(t.Header) {
		panic(fmt.Sprintf("tabular: row has %d cells, header has %d", len(row), len(t.Header)))
	}
	t.Rows = append(t.Rows, row)
}

// WriteCSV writes t as UTF-8 CSV with one header row and \n line endings.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// CSV returns t encoded as CSV.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
