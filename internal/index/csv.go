package index

import (
	"io"

	"github.com/alnah/go-trustforge/internal/tabular"
)

// Columns is the fixed column order of the index CSV.
var Columns = []string{"file", "title", "version", "owner", "last_reviewed", "applies_to", "refs"}

// Table lays records out in Columns order. List fields are joined with
// tabular.RefDelimiter.
func Table(records []Record) *tabular.Table {
	t := &tabular.Table{Header: Columns}
	for _, r := range records {
		m := r.Metadata
		t.Append(
			r.File,
			m.Title,
			m.Version,
			m.Owner,
			m.LastReviewed,
			tabular.JoinRefs(m.AppliesTo),
			tabular.JoinRefs(m.Refs),
		)
	}
	return t
}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	return Table(records).WriteCSV(w)
}
