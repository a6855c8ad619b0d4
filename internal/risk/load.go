package risk

import (
	"fmt"

	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/tabular"
)

// Raw is an undecoded risk record with its position in the register.
type Raw struct {
	Index  int
	Fields any
}

// Register is a risk file read from disk before validation.
type Register struct {
	Source  string
	Records []Raw
}

// Load reads a risk register from path.
func Load(path string) (*Register, error) {
	data, err := fileutil.ReadSource(path)
	if err != nil {
		return nil, fmt.Errorf("reading risk register %s: %w", path, err)
	}
	return Decode(path, data)
}

// Decode is Load over in-memory data.
func Decode(source string, data []byte) (*Register, error) {
	f, err := tabular.Decode(source, data, "risks")
	if err != nil {
		return nil, err
	}
	reg := &Register{Source: source}
	for i, rec := range f.Records {
		reg.Records = append(reg.Records, Raw{Index: i, Fields: rec})
	}
	return reg, nil
}

// Validate turns one raw record into an Entry, applying defaults and
// canonical vocabulary casing. Failures are *tabular.InvalidRecordError.
func Validate(source string, raw Raw) (Entry, error) {
	fields, err := tabular.AsFields(raw.Fields)
	if err != nil {
		return Entry{}, &tabular.InvalidRecordError{Source: source, Index: raw.Index, Field: "-", Reason: err.Error()}
	}

	var e Entry
	id, _ := fields.String("id")
	targets := []struct {
		key string
		dst *string
	}{
		{"id", &e.ID},
		{"title", &e.Title},
		{"description", &e.Description},
		{"severity", &e.Severity},
		{"likelihood", &e.Likelihood},
		{"owner", &e.Owner},
		{"status", &e.Status},
		{"treatment", &e.Treatment},
		{"target_date", &e.TargetDate},
	}
	for _, t := range targets {
		s, ok := fields.String(t.key)
		if !ok {
			return Entry{}, &tabular.InvalidRecordError{Source: source, Index: raw.Index, ID: id, Field: t.key, Reason: "must be a scalar"}
		}
		*t.dst = s
	}
	e.ControlRefs = fields.List("control_refs")
	e.normalize()

	if err := tabular.RecordError(source, raw.Index, e.ID, e.Validate()); err != nil {
		return Entry{}, err
	}
	return e, nil
}
