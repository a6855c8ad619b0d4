package controls

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/tabular"
)

// Raw is an undecoded catalog record with its position in the file.
type Raw struct {
	Index  int
	Fields any
}

// CatalogFile is a catalog read from disk before validation.
type CatalogFile struct {
	Name      string
	Framework string
	Source    string
	Records   []Raw
}

// LoadCatalog reads an external catalog. Entries without a framework get
// the file's framework key, or name when the file has none. name defaults
// to the file's base name without extension.
func LoadCatalog(path, name string) (*CatalogFile, error) {
	data, err := fileutil.ReadSource(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return DecodeCatalog(path, name, data)
}

// DecodeCatalog is LoadCatalog over in-memory data.
func DecodeCatalog(source, name string, data []byte) (*CatalogFile, error) {
	f, err := tabular.Decode(source, data, "controls")
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	framework := f.HeaderString("framework")
	if framework == "" {
		framework = name
	}
	cf := &CatalogFile{Name: name, Framework: framework, Source: source}
	for i, rec := range f.Records {
		cf.Records = append(cf.Records, Raw{Index: i, Fields: rec})
	}
	return cf, nil
}

// FromCatalog wraps an in-memory catalog so it goes through the same
// validation as a loaded file.
func FromCatalog(c *Catalog) *CatalogFile {
	cf := &CatalogFile{Name: c.Name, Framework: c.Framework, Source: c.Source}
	for i, e := range c.Entries {
		cf.Records = append(cf.Records, Raw{Index: i, Fields: map[string]any{
			"framework":   e.Framework,
			"function":    e.Function,
			"category":    e.Category,
			"control_id":  e.ControlID,
			"title":       e.Title,
			"description": e.Description,
		}})
	}
	return cf
}

// decode builds an Entry from a raw record. Non-scalar values are reported
// as invalid fields.
func (cf *CatalogFile) decode(raw Raw) (Entry, error) {
	fields, err := tabular.AsFields(raw.Fields)
	if err != nil {
		return Entry{}, &tabular.InvalidRecordError{Source: cf.Source, Index: raw.Index, Field: "-", Reason: err.Error()}
	}
	var e Entry
	targets := []struct {
		key string
		dst *string
	}{
		{"framework", &e.Framework},
		{"function", &e.Function},
		{"category", &e.Category},
		{"control_id", &e.ControlID},
		{"title", &e.Title},
		{"description", &e.Description},
	}
	for _, t := range targets {
		s, ok := fields.String(t.key)
		if !ok {
			id, _ := fields.String("control_id")
			return Entry{}, &tabular.InvalidRecordError{Source: cf.Source, Index: raw.Index, ID: id, Field: t.key, Reason: "must be a scalar"}
		}
		*t.dst = s
	}
	if e.Framework == "" {
		e.Framework = cf.Framework
	}
	return e, nil
}
