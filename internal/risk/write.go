package risk

import (
	"io"

	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/render"
	"github.com/alnah/go-trustforge/internal/tabular"
)

// Columns is the fixed column order of the risk register CSV.
var Columns = []string{
	"id", "title", "description", "severity", "likelihood",
	"owner", "status", "treatment", "target_date", "control_refs",
}

// Table lays entries out in Columns order.
func Table(entries []Entry) *tabular.Table {
	t := &tabular.Table{Header: Columns}
	for _, e := range entries {
		t.Append(e.ID, e.Title, e.Description, e.Severity, e.Likelihood,
			e.Owner, e.Status, e.Treatment, e.TargetDate, tabular.JoinRefs(e.ControlRefs))
	}
	return t
}

// WriteCSV writes entries as a risk register CSV.
func WriteCSV(w io.Writer, entries []Entry) error {
	return Table(entries).WriteCSV(w)
}

type registerRow struct {
	Entry
	Score int
}

type registerPage struct {
	render.ReportHeader
	Rows []registerRow
}

// DefaultTitle heads the HTML register.
const DefaultTitle = "Risk register"

// WriteHTML writes entries as a register page with an ordinal score column.
func WriteHTML(w io.Writer, entries []Entry, r *render.Report) error {
	if r == nil {
		r = &render.Report{}
	}
	h, err := r.Header(DefaultTitle)
	if err != nil {
		return err
	}
	page := registerPage{ReportHeader: h}
	for _, e := range entries {
		page.Rows = append(page.Rows, registerRow{Entry: e, Score: e.Score()})
	}
	out, err := r.Execute(assets.RisksTemplate, h, page)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
