package controls

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/render"
	"github.com/alnah/go-trustforge/internal/tabular"
)

// Columns is the fixed column order of the control map CSV.
var Columns = []string{"framework", "function", "category", "control_id", "title", "description"}

// Table lays entries out in Columns order.
func Table(entries []Entry) *tabular.Table {
	t := &tabular.Table{Header: Columns}
	for _, e := range entries {
		t.Append(e.Framework, e.Function, e.Category, e.ControlID, e.Title, e.Description)
	}
	return t
}

// WriteCSV writes entries as a control map CSV.
func WriteCSV(w io.Writer, entries []Entry) error {
	return Table(entries).WriteCSV(w)
}

// Group is the set of controls sharing a function, in catalog order.
type Group struct {
	ID   string
	Name string
	Rows []Entry
}

// GroupByFunction groups entries by function, keeping the order in which
// functions first appear.
func GroupByFunction(entries []Entry) []Group {
	var groups []Group
	pos := make(map[string]int)
	for _, e := range entries {
		i, ok := pos[e.Function]
		if !ok {
			i = len(groups)
			pos[e.Function] = i
			groups = append(groups, Group{ID: "fn-" + slug(e.Function), Name: e.Function})
		}
		groups[i].Rows = append(groups[i].Rows, e)
	}
	return groups
}

type crosswalkPage struct {
	render.ReportHeader
	Framework string
	Rows      []Entry
	Groups    []Group
}

// WriteHTML writes c as a crosswalk page grouped by function.
func WriteHTML(w io.Writer, c *Catalog, r *render.Report) error {
	if r == nil {
		r = &render.Report{}
	}
	h, err := r.Header(fmt.Sprintf("%s control map", c.Framework))
	if err != nil {
		return err
	}
	page := crosswalkPage{
		ReportHeader: h,
		Framework:    c.Framework,
		Rows:         c.Entries,
		Groups:       GroupByFunction(c.Entries),
	}
	out, err := r.Execute(assets.ControlsTemplate, h, page)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
